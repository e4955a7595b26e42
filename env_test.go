// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package storefront_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/MainfluxLabs/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnv(t *testing.T) {
	t.Setenv("SF_TEST_SET", "value")

	cases := []struct {
		desc     string
		key      string
		fallback string
		expected string
	}{
		{desc: "read set variable", key: "SF_TEST_SET", fallback: "def", expected: "value"},
		{desc: "read unset variable", key: "SF_TEST_UNSET", fallback: "def", expected: "def"},
	}

	for _, tc := range cases {
		val := storefront.Env(tc.key, tc.fallback)
		assert.Equal(t, tc.expected, val, fmt.Sprintf("%s: expected %s got %s\n", tc.desc, tc.expected, val))
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	err := os.WriteFile(file, []byte("SF_TEST_DOTENV=loaded\n"), 0o600)
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	t.Cleanup(func() { os.Unsetenv("SF_TEST_DOTENV") })

	err = storefront.LoadEnvFile(filepath.Join(dir, "missing.env"), file)
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	assert.Equal(t, "loaded", os.Getenv("SF_TEST_DOTENV"))
}
