// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenExpired reports whether a bearer token is past its expiry at now.
// The signature is not verified, the server remains the authority. Tokens
// that are not JWTs or carry no exp claim never expire client side.
func TokenExpired(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}

	return !now.Before(claims.ExpiresAt.Time)
}
