// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package uuid_test

import (
	"fmt"
	"testing"

	"github.com/MainfluxLabs/storefront/pkg/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsV4(t *testing.T) {
	generated, err := uuid.New().ID()
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	mocked, err := uuid.NewMock().ID()
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))

	cases := []struct {
		desc  string
		id    string
		valid bool
	}{
		{desc: "generated uuid", id: generated, valid: true},
		{desc: "mocked uuid", id: mocked, valid: true},
		{desc: "upper case uuid", id: "9B2E6C1A-4F3D-4A8B-9C7D-1E2F3A4B5C6D", valid: true},
		{desc: "version 1 uuid", id: "123e4567-e89b-12d3-a456-426614174000", valid: false},
		{desc: "bad variant", id: "123e4567-e89b-42d3-c456-426614174000", valid: false},
		{desc: "missing dashes", id: "123e4567e89b42d3a456426614174000", valid: false},
		{desc: "empty string", id: "", valid: false},
		{desc: "garbage", id: "not-a-uuid", valid: false},
	}

	for _, tc := range cases {
		valid := uuid.IsV4(tc.id)
		assert.Equal(t, tc.valid, valid, fmt.Sprintf("%s: expected %v got %v\n", tc.desc, tc.valid, valid))
	}
}
