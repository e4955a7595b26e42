// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync"

	"github.com/MainfluxLabs/storefront/identity"
	"github.com/MainfluxLabs/storefront/pkg/errors"
)

// ErrUnavailable is returned by a failing storage mock.
var ErrUnavailable = errors.New("storage unavailable")

var _ identity.Storage = (*storageMock)(nil)

// Storage is an in-memory identity.Storage whose reads and writes can be
// switched to fail.
type Storage interface {
	identity.Storage

	// SetFail makes every subsequent operation fail.
	SetFail(fail bool)

	// SetReadOnly makes writes fail while reads keep working.
	SetReadOnly(readOnly bool)

	// Values returns a copy of the stored values.
	Values() map[string]string
}

type storageMock struct {
	mu       sync.Mutex
	values   map[string]string
	fail     bool
	readOnly bool
}

// NewStorage returns the storage mock seeded with values.
func NewStorage(values map[string]string) Storage {
	vals := make(map[string]string)
	for k, v := range values {
		vals[k] = v
	}

	return &storageMock{values: vals}
}

func (sm *storageMock) Get(_ context.Context, key string) (string, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.fail {
		return "", ErrUnavailable
	}
	v, ok := sm.values[key]
	if !ok {
		return "", identity.ErrNotFound
	}

	return v, nil
}

func (sm *storageMock) Set(_ context.Context, key, value string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.fail || sm.readOnly {
		return ErrUnavailable
	}
	sm.values[key] = value

	return nil
}

func (sm *storageMock) Remove(_ context.Context, key string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.fail || sm.readOnly {
		return ErrUnavailable
	}
	delete(sm.values, key)

	return nil
}

func (sm *storageMock) SetFail(fail bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.fail = fail
}

func (sm *storageMock) SetReadOnly(readOnly bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.readOnly = readOnly
}

func (sm *storageMock) Values() map[string]string {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	vals := make(map[string]string, len(sm.values))
	for k, v := range sm.values {
		vals[k] = v
	}

	return vals
}
