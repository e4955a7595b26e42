// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/MainfluxLabs/storefront/realtime"
)

var _ realtime.Transport = (*Transport)(nil)

// Frame is an outbound frame recorded by the mock transport.
type Frame struct {
	Kind    realtime.EventKind
	Payload interface{}
}

// Transport is a realtime transport driven by the test through Connect,
// Disconnect, Reconnect and Send.
type Transport struct {
	mu       sync.Mutex
	listener realtime.Listener
	frames   []Frame
	opens    int
	closes   int
	emitErr  error
}

// NewTransport returns an unopened mock transport.
func NewTransport() *Transport {
	return &Transport{}
}

func (t *Transport) Open(_ context.Context, l realtime.Listener) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.listener = l
	t.opens++
	return nil
}

func (t *Transport) Emit(kind realtime.EventKind, payload interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.emitErr != nil {
		return t.emitErr
	}
	t.frames = append(t.frames, Frame{Kind: kind, Payload: payload})
	return nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closes++
	return nil
}

// FailEmit makes subsequent Emit calls return err.
func (t *Transport) FailEmit(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.emitErr = err
}

// Connect simulates the first connection.
func (t *Transport) Connect() {
	t.get().OnConnect()
}

// Disconnect simulates a dropped connection.
func (t *Transport) Disconnect(err error) {
	t.get().OnDisconnect(err)
}

// Reconnect simulates a connection re-established after attempt retries.
func (t *Transport) Reconnect(attempt int) {
	t.get().OnReconnect(attempt)
}

// Send simulates an inbound frame. Payload is marshalled to JSON.
func (t *Transport) Send(kind realtime.EventKind, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	t.get().OnEvent(kind, raw)
}

// SendRaw simulates an inbound frame with a raw payload.
func (t *Transport) SendRaw(kind realtime.EventKind, raw json.RawMessage) {
	t.get().OnEvent(kind, raw)
}

// Frames returns the emitted frames.
func (t *Transport) Frames() []Frame {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]Frame(nil), t.frames...)
}

// Opens returns the number of Open calls.
func (t *Transport) Opens() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.opens
}

// Closes returns the number of Close calls.
func (t *Transport) Closes() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.closes
}

func (t *Transport) get() realtime.Listener {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.listener
}

// Factory creates mock transports and keeps track of them.
type Factory struct {
	mu         sync.Mutex
	transports []*Transport
}

// New creates a transport. It matches realtime.TransportFactory.
func (f *Factory) New() (realtime.Transport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := NewTransport()
	f.transports = append(f.transports, t)
	return t, nil
}

// Transports returns every transport created so far.
func (f *Factory) Transports() []*Transport {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*Transport(nil), f.transports...)
}

// Last returns the most recently created transport.
func (f *Factory) Last() *Transport {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.transports) == 0 {
		return nil
	}
	return f.transports[len(f.transports)-1]
}
