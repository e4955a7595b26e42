// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"sync"
)

var _ Storage = (*memoryStorage)(nil)

type memoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage returns a storage that keeps client state for the
// lifetime of the process only.
func NewMemoryStorage() Storage {
	return &memoryStorage{values: make(map[string]string)}
}

func (ms *memoryStorage) Get(_ context.Context, key string) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	v, ok := ms.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (ms *memoryStorage) Set(_ context.Context, key, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.values[key] = value
	return nil
}

func (ms *memoryStorage) Remove(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.values, key)
	return nil
}
