// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package realtime

import (
	"context"
	"encoding/json"
)

// Listener receives transport lifecycle callbacks and inbound frames.
// Transports call it from a single goroutine.
type Listener interface {
	// OnConnect is called once the first connection is established.
	OnConnect()

	// OnDisconnect is called when an established connection drops.
	OnDisconnect(err error)

	// OnReconnect is called when a connection is established again after
	// a drop. The meaning of attempt is transport specific.
	OnReconnect(attempt int)

	// OnEvent is called for every inbound frame.
	OnEvent(kind EventKind, payload json.RawMessage)
}

// Transport is a realtime channel that retries connecting on its own.
type Transport interface {
	// Open starts connecting and returns without waiting for the connection.
	Open(ctx context.Context, l Listener) error

	// Emit sends a frame on the current connection.
	Emit(kind EventKind, payload interface{}) error

	// Close stops the retry loop and closes the connection. It is idempotent.
	Close() error
}

// TransportFactory creates a fresh transport for each connection lifetime.
type TransportFactory func() (Transport, error)
