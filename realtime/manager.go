// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

// Package realtime maintains the single live channel of a storefront client
// to the realtime service and fans out its events to subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/MainfluxLabs/storefront/identity"
	"github.com/MainfluxLabs/storefront/logger"
	"github.com/MainfluxLabs/storefront/pkg/errors"
)

// Connection states.
const (
	Uninitialized State = "uninitialized"
	Connecting    State = "connecting"
	Connected     State = "connected"
	Reconnecting  State = "reconnecting"
	Closed        State = "closed"
)

var (
	// ErrAuthRejected indicates that the server refused the session handshake.
	ErrAuthRejected = errors.New("session handshake rejected")

	// ErrTransport indicates a transport that could not be created or opened.
	ErrTransport = errors.New("realtime transport failure")
)

// State is the connection lifecycle state.
type State string

// Status is a point-in-time view of the connection.
type Status struct {
	State      State  `json:"state"`
	Connected  bool   `json:"connected"`
	AuthError  bool   `json:"authError"`
	LastError  string `json:"lastError,omitempty"`
	Reconnects int    `json:"reconnects"`
}

// Teardown releases a connection. Calling it more than once has no effect.
type Teardown func()

// StateObserver is notified after every status change.
type StateObserver func(Status)

// Options tune the handshake.
type Options struct {
	// ConflateJoin marks the connection ready right after join-session is
	// sent, for servers that do not confirm the join.
	ConflateJoin bool
}

// Service specifies the realtime connection API.
type Service interface {
	// Initialize opens the connection and registers handlers. While a
	// connection is live it logs a warning and returns a no-op teardown.
	Initialize(ctx context.Context, handlers map[EventKind][]Handler) Teardown

	// Subscribe registers a handler outside of Initialize. The caller owns
	// the subscription and must unsubscribe it.
	Subscribe(kind EventKind, h Handler) Subscription

	// Unsubscribe removes a handler.
	Unsubscribe(sub Subscription)

	// Status returns the current connection status.
	Status() Status

	// Observe registers an observer and returns a func that removes it.
	Observe(o StateObserver) func()
}

var _ Service = (*Manager)(nil)

// Manager owns at most one live transport at a time.
type Manager struct {
	mu           sync.Mutex
	ids          identity.Service
	newTransport TransportFactory
	dispatcher   *Dispatcher
	logger       logger.Logger
	opts         Options

	live       bool
	gen        uint64
	transport  Transport
	state      State
	authErr    bool
	lastErr    error
	reconnects int

	nextObserver uint64
	observers    map[uint64]StateObserver
}

// NewManager returns an uninitialized connection manager.
func NewManager(ids identity.Service, newTransport TransportFactory, logger logger.Logger, opts Options) *Manager {
	return &Manager{
		ids:          ids,
		newTransport: newTransport,
		dispatcher:   NewDispatcher(logger),
		logger:       logger,
		opts:         opts,
		state:        Uninitialized,
		observers:    make(map[uint64]StateObserver),
	}
}

func (m *Manager) Initialize(ctx context.Context, handlers map[EventKind][]Handler) Teardown {
	m.mu.Lock()
	if m.live {
		m.mu.Unlock()
		m.logger.Warn("Realtime connection already initialized, ignoring second initialization")
		return func() {}
	}

	t, err := m.newTransport()
	if err != nil {
		m.lastErr = errors.Wrap(ErrTransport, err)
		m.mu.Unlock()
		m.logger.Error(fmt.Sprintf("Failed to create realtime transport: %s", err))
		return func() {}
	}

	m.live = true
	m.gen++
	gen := m.gen
	m.transport = t
	m.authErr = false
	m.lastErr = nil
	m.reconnects = 0
	notify := m.setState(Connecting)
	m.mu.Unlock()
	notify()

	var subs []Subscription
	for _, kind := range Kinds() {
		for _, h := range handlers[kind] {
			subs = append(subs, m.dispatcher.Subscribe(kind, h))
		}
	}
	for kind := range handlers {
		if _, ok := schema[kind]; !ok {
			m.logger.Warn(fmt.Sprintf("Ignoring handlers for unknown event kind %q", kind))
		}
	}

	var once sync.Once
	teardown := func() {
		once.Do(func() { m.teardown(gen, subs) })
	}

	if err := t.Open(ctx, &listener{m: m, gen: gen, ctx: ctx}); err != nil {
		m.logger.Error(fmt.Sprintf("Failed to open realtime transport: %s", err))
		teardown()
		m.mu.Lock()
		m.lastErr = errors.Wrap(ErrTransport, err)
		m.mu.Unlock()
	}

	return teardown
}

func (m *Manager) Subscribe(kind EventKind, h Handler) Subscription {
	return m.dispatcher.Subscribe(kind, h)
}

func (m *Manager) Unsubscribe(sub Subscription) {
	m.dispatcher.Unsubscribe(sub)
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.status()
}

// State returns the connection lifecycle state.
func (m *Manager) State() State {
	return m.Status().State
}

// Connected reports whether the handshake completed on the live connection.
func (m *Manager) Connected() bool {
	return m.Status().Connected
}

// LastError returns the most recent transport or handshake failure.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastErr
}

func (m *Manager) Observe(o StateObserver) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextObserver++
	id := m.nextObserver
	m.observers[id] = o

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.observers, id)
	}
}

func (m *Manager) teardown(gen uint64, subs []Subscription) {
	for _, sub := range subs {
		m.dispatcher.Unsubscribe(sub)
	}

	m.mu.Lock()
	if !m.live || m.gen != gen {
		m.mu.Unlock()
		return
	}
	t := m.transport
	m.transport = nil
	m.live = false
	// Callbacks still in flight from the old transport carry a stale generation.
	m.gen++
	m.authErr = false
	notify := m.setState(Closed)
	m.mu.Unlock()

	if err := t.Close(); err != nil {
		m.logger.Warn(fmt.Sprintf("Failed to close realtime transport: %s", err))
	}
	notify()
}

// current returns the live transport when gen is still the live generation.
func (m *Manager) current(gen uint64) (Transport, bool) {
	if !m.live || m.gen != gen {
		return nil, false
	}
	return m.transport, true
}

func (m *Manager) join(ctx context.Context, gen uint64) {
	m.mu.Lock()
	t, ok := m.current(gen)
	m.mu.Unlock()
	if !ok {
		return
	}

	hs, err := m.ids.Handshake(ctx)
	if err != nil {
		m.fail(gen, errors.Wrap(ErrTransport, err))
		m.logger.Error(fmt.Sprintf("Failed to build session handshake: %s", err))
		return
	}
	if err := t.Emit(EventJoinSession, hs); err != nil {
		m.fail(gen, errors.Wrap(ErrTransport, err))
		m.logger.Warn(fmt.Sprintf("Failed to send join-session: %s", err))
		return
	}
	m.logger.Debug(fmt.Sprintf("Sent join-session for session %s", hs.SessionID))

	if m.opts.ConflateJoin {
		m.confirm(gen)
	}
}

func (m *Manager) confirm(gen uint64) {
	m.mu.Lock()
	if _, ok := m.current(gen); !ok {
		m.mu.Unlock()
		return
	}
	m.authErr = false
	notify := m.setState(Connected)
	m.mu.Unlock()

	m.logger.Info("Realtime session joined")
	notify()
}

func (m *Manager) rejected(gen uint64, raw json.RawMessage) {
	var ae AuthError
	if err := json.Unmarshal(raw, &ae); err != nil || ae.Message == "" {
		ae.Message = "no reason given"
	}

	m.mu.Lock()
	if _, ok := m.current(gen); !ok {
		m.mu.Unlock()
		return
	}
	m.authErr = true
	m.lastErr = errors.Wrap(ErrAuthRejected, errors.New(ae.Message))
	state := m.state
	if state == Connected {
		state = Connecting
	}
	notify := m.setState(state)
	m.mu.Unlock()

	m.logger.Error(fmt.Sprintf("Realtime session rejected: %s", ae.Message))
	notify()
}

func (m *Manager) disconnected(gen uint64, err error) {
	m.mu.Lock()
	if _, ok := m.current(gen); !ok {
		m.mu.Unlock()
		return
	}
	if err != nil {
		m.lastErr = errors.Wrap(ErrTransport, err)
	}
	notify := m.setState(Reconnecting)
	m.mu.Unlock()

	m.logger.Warn(fmt.Sprintf("Realtime connection lost: %v", err))
	notify()
}

func (m *Manager) fail(gen uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.current(gen); ok {
		m.lastErr = err
	}
}

func (m *Manager) deliver(gen uint64, kind EventKind, raw json.RawMessage) {
	m.mu.Lock()
	_, ok := m.current(gen)
	m.mu.Unlock()
	if !ok {
		return
	}

	m.dispatcher.DeliverRaw(kind, raw)
}

// setState must be called with the lock held. The returned func notifies
// the observers and must be called after the lock is released.
func (m *Manager) setState(s State) func() {
	m.state = s
	return m.changed()
}

func (m *Manager) changed() func() {
	st := m.status()
	observers := make([]StateObserver, 0, len(m.observers))
	for _, o := range m.observers {
		observers = append(observers, o)
	}

	return func() {
		for _, o := range observers {
			o(st)
		}
	}
}

func (m *Manager) status() Status {
	st := Status{
		State:      m.state,
		Connected:  m.state == Connected && !m.authErr,
		AuthError:  m.authErr,
		Reconnects: m.reconnects,
	}
	if m.lastErr != nil {
		st.LastError = m.lastErr.Error()
	}

	return st
}

type listener struct {
	m   *Manager
	gen uint64
	ctx context.Context
}

func (l *listener) OnConnect() {
	l.m.logger.Info("Realtime connection established")
	l.m.join(l.ctx, l.gen)
}

func (l *listener) OnDisconnect(err error) {
	l.m.disconnected(l.gen, err)
}

func (l *listener) OnReconnect(attempt int) {
	l.m.mu.Lock()
	if _, ok := l.m.current(l.gen); ok {
		l.m.reconnects++
	}
	l.m.mu.Unlock()

	l.m.logger.Info(fmt.Sprintf("Realtime connection re-established after %d attempts", attempt))
	l.m.join(l.ctx, l.gen)
}

func (l *listener) OnEvent(kind EventKind, payload json.RawMessage) {
	switch kind {
	case EventJoinConfirmation:
		l.m.confirm(l.gen)
	case EventAuthError:
		l.m.rejected(l.gen, payload)
	case EventJoinSession:
		l.m.logger.Debug("Ignoring inbound join-session frame")
	default:
		l.m.deliver(l.gen, kind, payload)
	}
}
