// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package identity_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/MainfluxLabs/storefront/identity"
	"github.com/MainfluxLabs/storefront/identity/mocks"
	"github.com/MainfluxLabs/storefront/logger"
	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/MainfluxLabs/storefront/pkg/uuid"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userID   = "42"
	deviceID = "9b2e6c1a-4f3d-4a8b-9c7d-1e2f3a4b5c6d"
	nonce    = "0f8fad5b-d9cb-469f-a165-70867728950e"
)

func newService(values map[string]string) (identity.Service, mocks.Storage) {
	storage := mocks.NewStorage(values)
	return identity.New(storage, uuid.NewMock(), logger.NewMock()), storage
}

func signedToken(t *testing.T, exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.Nil(t, err, fmt.Sprintf("unexpected error signing token: %s", err))
	return signed
}

func TestGetOrCreateDeviceID(t *testing.T) {
	cases := []struct {
		desc     string
		stored   map[string]string
		fail     bool
		expected identity.DeviceID
		persist  bool
	}{
		{
			desc:     "get existing device id",
			stored:   map[string]string{identity.DeviceKey: deviceID},
			expected: deviceID,
			persist:  true,
		},
		{
			desc:     "create missing device id",
			stored:   map[string]string{},
			expected: identity.DeviceID(uuid.Prefix + "000000000001"),
			persist:  true,
		},
		{
			desc:     "replace malformed device id",
			stored:   map[string]string{identity.DeviceKey: "not-a-uuid"},
			expected: identity.DeviceID(uuid.Prefix + "000000000001"),
			persist:  true,
		},
		{
			desc:     "create device id with unavailable storage",
			stored:   map[string]string{identity.DeviceKey: deviceID},
			fail:     true,
			expected: identity.DeviceID(uuid.Prefix + "000000000001"),
			persist:  false,
		},
	}

	for _, tc := range cases {
		svc, storage := newService(tc.stored)
		storage.SetFail(tc.fail)

		id, err := svc.GetOrCreateDeviceID(context.Background())
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		assert.Equal(t, tc.expected, id, fmt.Sprintf("%s: expected %s got %s\n", tc.desc, tc.expected, id))

		again, err := svc.GetOrCreateDeviceID(context.Background())
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		assert.Equal(t, id, again, fmt.Sprintf("%s: expected stable device id %s got %s\n", tc.desc, id, again))

		storage.SetFail(false)
		if tc.persist {
			assert.Equal(t, string(id), storage.Values()[identity.DeviceKey], fmt.Sprintf("%s: expected device id to be persisted", tc.desc))
		}
	}
}

func TestGetOrCreateSessionID(t *testing.T) {
	valid := signedToken(t, time.Now().Add(time.Hour))
	expired := signedToken(t, time.Now().Add(-time.Hour))
	bound := string(identity.UserSession(userID, nonce))

	cases := []struct {
		desc   string
		stored map[string]string
		guest  bool
		token  string
	}{
		{
			desc:   "create guest session when none is stored",
			stored: map[string]string{},
			guest:  true,
		},
		{
			desc:   "keep stored guest session",
			stored: map[string]string{identity.SessionKey: string(identity.GuestSession(nonce))},
			guest:  true,
		},
		{
			desc:   "keep user session with valid token",
			stored: map[string]string{identity.SessionKey: bound, identity.TokenKey: valid},
			guest:  false,
			token:  valid,
		},
		{
			desc:   "keep user session with opaque token",
			stored: map[string]string{identity.SessionKey: bound, identity.TokenKey: "opaque"},
			guest:  false,
			token:  "opaque",
		},
		{
			desc:   "expire user session with expired token",
			stored: map[string]string{identity.SessionKey: bound, identity.TokenKey: expired},
			guest:  true,
		},
		{
			desc:   "expire user session without token",
			stored: map[string]string{identity.SessionKey: bound},
			guest:  true,
		},
		{
			desc:   "replace malformed session",
			stored: map[string]string{identity.SessionKey: "visitor-1"},
			guest:  true,
		},
	}

	for _, tc := range cases {
		svc, storage := newService(tc.stored)

		id, err := svc.GetOrCreateSessionID(context.Background())
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		assert.Equal(t, tc.guest, id.Guest(), fmt.Sprintf("%s: expected guest %v got session %s\n", tc.desc, tc.guest, id))
		assert.Equal(t, tc.token, svc.Token(context.Background()), fmt.Sprintf("%s: unexpected token", tc.desc))
		assert.Equal(t, string(id), storage.Values()[identity.SessionKey], fmt.Sprintf("%s: expected session to be persisted", tc.desc))

		if tc.guest {
			_, ok := storage.Values()[identity.TokenKey]
			assert.False(t, ok, fmt.Sprintf("%s: expected token to be removed", tc.desc))
		}
	}
}

func TestBindToUser(t *testing.T) {
	svc, storage := newService(nil)

	guest, err := svc.GetOrCreateSessionID(context.Background())
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))

	cases := []struct {
		desc   string
		userID string
		token  string
		err    error
	}{
		{
			desc:   "bind guest session to user",
			userID: userID,
			token:  "token",
			err:    nil,
		},
		{
			desc:   "bind again to the same user",
			userID: userID,
			token:  "token",
			err:    nil,
		},
		{
			desc:   "bind to user id containing dashes",
			userID: deviceID,
			token:  "token",
			err:    nil,
		},
		{
			desc:   "bind with empty user id",
			userID: "",
			token:  "token",
			err:    identity.ErrMalformedEntity,
		},
	}

	seen := map[identity.SessionID]bool{guest: true}
	for _, tc := range cases {
		id, err := svc.BindToUser(context.Background(), tc.userID, tc.token)
		assert.True(t, errors.Contains(err, tc.err), fmt.Sprintf("%s: expected %s got %s\n", tc.desc, tc.err, err))
		if tc.err != nil {
			continue
		}

		s, err := identity.ParseSessionID(string(id))
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		assert.False(t, s.Guest, fmt.Sprintf("%s: expected user session got %s", tc.desc, id))
		assert.Equal(t, tc.userID, s.UserID, fmt.Sprintf("%s: expected user %s got %s", tc.desc, tc.userID, s.UserID))
		assert.False(t, seen[id], fmt.Sprintf("%s: session id %s reused", tc.desc, id))
		seen[id] = true

		vals := storage.Values()
		assert.Equal(t, string(id), vals[identity.SessionKey], fmt.Sprintf("%s: expected session to be persisted", tc.desc))
		assert.Equal(t, tc.token, vals[identity.TokenKey], fmt.Sprintf("%s: expected token to be persisted", tc.desc))
	}
}

func TestUnbind(t *testing.T) {
	svc, storage := newService(nil)

	user, err := svc.BindToUser(context.Background(), userID, "token")
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))

	guest, err := svc.Unbind(context.Background())
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	assert.True(t, guest.Guest(), fmt.Sprintf("expected guest session got %s", guest))
	assert.NotEqual(t, user, guest, "expected a new session id")
	assert.Empty(t, svc.Token(context.Background()), "expected token to be dropped")

	_, ok := storage.Values()[identity.TokenKey]
	assert.False(t, ok, "expected token to be removed from storage")

	next, err := svc.ExpireAuth(context.Background())
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	assert.True(t, next.Guest(), fmt.Sprintf("expected guest session got %s", next))
	assert.NotEqual(t, guest, next, "expected auth expiry to rotate the guest session")
}

func TestInMemoryFallback(t *testing.T) {
	svc, storage := newService(nil)
	storage.SetReadOnly(true)

	id, err := svc.BindToUser(context.Background(), userID, "token")
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))

	current, err := svc.GetOrCreateSessionID(context.Background())
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	assert.Equal(t, id, current, fmt.Sprintf("expected in-memory session %s got %s", id, current))
	assert.Equal(t, "token", svc.Token(context.Background()))
	assert.Empty(t, storage.Values(), "expected nothing persisted to read-only storage")

	storage.SetFail(true)
	hs, err := svc.Handshake(context.Background())
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	assert.Equal(t, id, hs.SessionID)
	require.NotNil(t, hs.Token, "expected handshake token")
	assert.Equal(t, "token", *hs.Token)
}

func TestHandshake(t *testing.T) {
	svc, _ := newService(nil)

	hs, err := svc.Handshake(context.Background())
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	assert.Nil(t, hs.Token, "expected nil token for guest handshake")
	assert.True(t, hs.SessionID.Guest(), fmt.Sprintf("expected guest session got %s", hs.SessionID))

	id, err := svc.BindToUser(context.Background(), userID, "token")
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))

	hs, err = svc.Handshake(context.Background())
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	require.NotNil(t, hs.Token, "expected token for user handshake")
	assert.Equal(t, "token", *hs.Token)
	assert.Equal(t, id, hs.SessionID)
}

func TestReadOnlyStorageKeepsRotation(t *testing.T) {
	bound := string(identity.UserSession(userID, nonce))

	cases := []struct {
		desc   string
		rotate func(svc identity.Service) (identity.SessionID, error)
		guest  bool
		token  string
	}{
		{
			desc:   "unbind does not restore stored user session",
			rotate: func(svc identity.Service) (identity.SessionID, error) { return svc.Unbind(context.Background()) },
			guest:  true,
		},
		{
			desc:   "auth expiry does not restore stored user session",
			rotate: func(svc identity.Service) (identity.SessionID, error) { return svc.ExpireAuth(context.Background()) },
			guest:  true,
		},
		{
			desc: "bind does not restore stored session",
			rotate: func(svc identity.Service) (identity.SessionID, error) {
				return svc.BindToUser(context.Background(), "7", "fresh-token")
			},
			guest: false,
			token: "fresh-token",
		},
	}

	for _, tc := range cases {
		svc, storage := newService(map[string]string{
			identity.SessionKey: bound,
			identity.TokenKey:   "opaque-token",
		})

		stored, err := svc.GetOrCreateSessionID(context.Background())
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		require.Equal(t, identity.SessionID(bound), stored, fmt.Sprintf("%s: expected stored session %s got %s\n", tc.desc, bound, stored))

		storage.SetReadOnly(true)
		id, err := tc.rotate(svc)
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		assert.Equal(t, tc.guest, id.Guest(), fmt.Sprintf("%s: expected guest %v got session %s\n", tc.desc, tc.guest, id))

		hs, err := svc.Handshake(context.Background())
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		assert.Equal(t, id, hs.SessionID, fmt.Sprintf("%s: expected handshake session %s got %s\n", tc.desc, id, hs.SessionID))
		if tc.token == "" {
			assert.Nil(t, hs.Token, fmt.Sprintf("%s: expected no handshake token", tc.desc))
		} else {
			require.NotNil(t, hs.Token, fmt.Sprintf("%s: expected handshake token", tc.desc))
			assert.Equal(t, tc.token, *hs.Token, fmt.Sprintf("%s: expected token %s got %s\n", tc.desc, tc.token, *hs.Token))
		}

		h, err := identity.Headers(context.Background(), svc)
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		assert.Equal(t, string(id), h.Get(identity.SessionHeader), fmt.Sprintf("%s: unexpected session header", tc.desc))
		if tc.token == "" {
			assert.Empty(t, h.Get(identity.AuthorizationHeader), fmt.Sprintf("%s: expected no authorization header", tc.desc))
		}

		current, err := svc.GetOrCreateSessionID(context.Background())
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))
		assert.Equal(t, id, current, fmt.Sprintf("%s: expected session %s got %s\n", tc.desc, id, current))
		assert.Equal(t, tc.token, svc.Token(context.Background()), fmt.Sprintf("%s: unexpected token", tc.desc))
		assert.Equal(t, bound, storage.Values()[identity.SessionKey], fmt.Sprintf("%s: expected read-only storage to keep its value", tc.desc))
	}
}
