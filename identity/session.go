// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"strings"

	"github.com/MainfluxLabs/storefront/pkg/uuid"
)

const (
	guestPrefix = "guest-"
	userPrefix  = "user-"
	nonceLen    = 36
)

// DeviceID identifies a client installation. It is a canonical UUID-v4.
type DeviceID string

// Valid reports whether the device id is a canonical UUID-v4.
func (id DeviceID) Valid() bool {
	return uuid.IsV4(string(id))
}

// SessionID identifies a logical visit, either guest-<uuid> or
// user-<userId>-<uuid>.
type SessionID string

// Session is a parsed SessionID.
type Session struct {
	Guest  bool
	UserID string
	Nonce  string
}

// GuestSession formats a guest session id around nonce.
func GuestSession(nonce string) SessionID {
	return SessionID(guestPrefix + nonce)
}

// UserSession formats a user-bound session id around nonce.
func UserSession(userID, nonce string) SessionID {
	return SessionID(userPrefix + userID + "-" + nonce)
}

// Guest reports whether the session is unauthenticated.
func (id SessionID) Guest() bool {
	s, err := ParseSessionID(string(id))
	return err == nil && s.Guest
}

// ParseSessionID splits a session id into its variant, bound user and nonce.
// The user id may itself contain dashes, the nonce is always the trailing UUID.
func ParseSessionID(raw string) (Session, error) {
	switch {
	case strings.HasPrefix(raw, guestPrefix):
		nonce := strings.TrimPrefix(raw, guestPrefix)
		if !uuid.IsV4(nonce) {
			return Session{}, ErrMalformedSession
		}
		return Session{Guest: true, Nonce: nonce}, nil
	case strings.HasPrefix(raw, userPrefix):
		rest := strings.TrimPrefix(raw, userPrefix)
		// <userId>-<uuid> with a non-empty user id
		if len(rest) < nonceLen+2 || rest[len(rest)-nonceLen-1] != '-' {
			return Session{}, ErrMalformedSession
		}
		userID := rest[:len(rest)-nonceLen-1]
		nonce := rest[len(rest)-nonceLen:]
		if !uuid.IsV4(nonce) {
			return Session{}, ErrMalformedSession
		}
		return Session{UserID: userID, Nonce: nonce}, nil
	default:
		return Session{}, ErrMalformedSession
	}
}
