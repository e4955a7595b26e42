// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/MainfluxLabs/storefront/identity"
	"github.com/MainfluxLabs/storefront/identity/sqlite"
	"github.com/MainfluxLabs/storefront/logger"
	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/MainfluxLabs/storefront/pkg/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, path string) *sqlx.DB {
	db, err := sqlite.Connect(sqlite.Config{Path: path, BusyTimeout: 5000})
	require.Nil(t, err, fmt.Sprintf("failed to open identity file: %s", err))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStorage(t *testing.T) {
	storage := sqlite.NewStorage(connect(t, filepath.Join(t.TempDir(), "identity.db")))

	_, err := storage.Get(context.Background(), identity.DeviceKey)
	assert.True(t, errors.Contains(err, identity.ErrNotFound), fmt.Sprintf("get missing key: expected %s got %s\n", identity.ErrNotFound, err))

	cases := []struct {
		desc  string
		key   string
		value string
	}{
		{desc: "set device id", key: identity.DeviceKey, value: "9b2e6c1a-4f3d-4a8b-9c7d-1e2f3a4b5c6d"},
		{desc: "set session id", key: identity.SessionKey, value: "guest-0f8fad5b-d9cb-469f-a165-70867728950e"},
		{desc: "overwrite session id", key: identity.SessionKey, value: "user-42-0f8fad5b-d9cb-469f-a165-70867728950e"},
	}

	for _, tc := range cases {
		err := storage.Set(context.Background(), tc.key, tc.value)
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))

		value, err := storage.Get(context.Background(), tc.key)
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		assert.Equal(t, tc.value, value, fmt.Sprintf("%s: expected %s got %s\n", tc.desc, tc.value, value))
	}

	err = storage.Remove(context.Background(), identity.SessionKey)
	require.Nil(t, err, fmt.Sprintf("remove session id: unexpected error %s", err))
	_, err = storage.Get(context.Background(), identity.SessionKey)
	assert.True(t, errors.Contains(err, identity.ErrNotFound), fmt.Sprintf("get removed key: expected %s got %s\n", identity.ErrNotFound, err))

	err = storage.Remove(context.Background(), identity.SessionKey)
	assert.Nil(t, err, fmt.Sprintf("remove absent key: unexpected error %s", err))
}

func TestDeviceIDSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.db")

	first := identity.New(sqlite.NewStorage(connect(t, path)), uuid.New(), logger.NewMock())
	id, err := first.GetOrCreateDeviceID(context.Background())
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))

	second := identity.New(sqlite.NewStorage(connect(t, path)), uuid.New(), logger.NewMock())
	again, err := second.GetOrCreateDeviceID(context.Background())
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	assert.Equal(t, id, again, fmt.Sprintf("expected device id %s to survive restart got %s", id, again))
}

func TestClosedStorage(t *testing.T) {
	db, err := sqlite.Connect(sqlite.Config{Path: filepath.Join(t.TempDir(), "identity.db"), BusyTimeout: 5000})
	require.Nil(t, err, fmt.Sprintf("failed to open identity file: %s", err))
	storage := sqlite.NewStorage(db)
	db.Close()

	_, err = storage.Get(context.Background(), identity.DeviceKey)
	assert.True(t, errors.Contains(err, errors.ErrStorage), fmt.Sprintf("get: expected %s got %s\n", errors.ErrStorage, err))

	err = storage.Set(context.Background(), identity.DeviceKey, "value")
	assert.True(t, errors.Contains(err, errors.ErrStorage), fmt.Sprintf("set: expected %s got %s\n", errors.ErrStorage, err))

	err = storage.Remove(context.Background(), identity.DeviceKey)
	assert.True(t, errors.Contains(err, errors.ErrStorage), fmt.Sprintf("remove: expected %s got %s\n", errors.ErrStorage, err))
}
