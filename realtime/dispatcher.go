// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/MainfluxLabs/storefront/logger"
)

// Handler consumes a validated event. A returned error is logged and does
// not affect other handlers. Each handler gets its own copy of Data.
type Handler func(Event) error

// Subscription identifies a registered handler.
type Subscription struct {
	Kind EventKind
	ID   uint64
}

type entry struct {
	id      uint64
	handler Handler
}

// Dispatcher validates inbound payloads and routes them to the handlers
// registered for their kind.
type Dispatcher struct {
	mu       sync.RWMutex
	next     uint64
	handlers map[EventKind][]entry
	logger   logger.Logger
}

// NewDispatcher returns a dispatcher without subscriptions.
func NewDispatcher(logger logger.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[EventKind][]entry),
		logger:   logger,
	}
}

// Subscribe registers h for kind. Handlers of one kind run in registration order.
func (d *Dispatcher) Subscribe(kind EventKind, h Handler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.next++
	d.handlers[kind] = append(d.handlers[kind], entry{id: d.next, handler: h})

	return Subscription{Kind: kind, ID: d.next}
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (d *Dispatcher) Unsubscribe(sub Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.handlers[sub.Kind]
	for i, e := range entries {
		if e.id != sub.ID {
			continue
		}
		rest := make([]entry, 0, len(entries)-1)
		rest = append(rest, entries[:i]...)
		rest = append(rest, entries[i+1:]...)
		if len(rest) == 0 {
			delete(d.handlers, sub.Kind)
		} else {
			d.handlers[sub.Kind] = rest
		}
		return
	}
}

// Handlers returns the number of handlers registered for kind.
func (d *Dispatcher) Handlers(kind EventKind) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.handlers[kind])
}

// Deliver validates payload and invokes every handler of kind. Invalid
// payloads reach no handler.
func (d *Dispatcher) Deliver(kind EventKind, payload map[string]interface{}) Result {
	res := Validate(kind, payload)
	if !res.OK {
		d.logger.Warn(fmt.Sprintf("Dropping event: %s", res.Reason))
		return res
	}

	d.mu.RLock()
	entries := append([]entry(nil), d.handlers[kind]...)
	d.mu.RUnlock()

	for _, e := range entries {
		d.invoke(e, Event{Kind: kind, Data: cloneMap(payload)})
	}

	return res
}

// DeliverRaw parses a raw frame payload and delivers it.
func (d *Dispatcher) DeliverRaw(kind EventKind, raw json.RawMessage) Result {
	payload, err := Parse(raw)
	if err != nil {
		d.logger.Warn(fmt.Sprintf("Dropping event %s: %s", kind, err))
		return drop("%s: %s", kind, err)
	}

	return d.Deliver(kind, payload)
}

func (d *Dispatcher) invoke(e entry, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error(fmt.Sprintf("Handler %d for %s panicked: %v", e.id, ev.Kind, r))
		}
	}()

	if err := e.handler(ev); err != nil {
		d.logger.Warn(fmt.Sprintf("Handler %d for %s failed: %s", e.id, ev.Kind, err))
	}
}

// cloneMap deep copies a decoded JSON object.
func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return cloneMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
