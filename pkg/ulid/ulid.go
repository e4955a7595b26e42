// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

// Package ulid provides a ULID identity provider.
package ulid

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/MainfluxLabs/storefront/pkg/uuid"
	"github.com/oklog/ulid/v2"
)

// ErrGeneratingID indicates error in generating ULID
var ErrGeneratingID = errors.New("failed to generate ulid")

var _ uuid.IDProvider = (*ulidProvider)(nil)

type ulidProvider struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New instantiates a ULID provider. Identifiers produced by a single
// provider sort in generation order.
func New() uuid.IDProvider {
	return &ulidProvider{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (up *ulidProvider) ID() (string, error) {
	up.mu.Lock()
	defer up.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now()), up.entropy)
	if err != nil {
		return "", errors.Wrap(ErrGeneratingID, err)
	}

	return id.String(), nil
}
