// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package uuid

import (
	"fmt"
	"sync"
)

// Prefix represents the prefix used by the mock UUID provider.
const Prefix = "123e4567-e89b-42d3-a456-"

var _ IDProvider = (*uuidProviderMock)(nil)

type uuidProviderMock struct {
	mu      sync.Mutex
	counter int
}

// NewMock creates "mirror" uuid provider, i.e. generated
// token will hold value provided by the caller.
func NewMock() IDProvider {
	return &uuidProviderMock{}
}

func (up *uuidProviderMock) ID() (string, error) {
	up.mu.Lock()
	defer up.mu.Unlock()

	up.counter++
	return fmt.Sprintf("%s%012d", Prefix, up.counter), nil
}
