// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

// Package nats contains the realtime transport used by in-venue terminals
// connected to the venue NATS broker.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MainfluxLabs/storefront/identity"
	"github.com/MainfluxLabs/storefront/logger"
	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/MainfluxLabs/storefront/realtime"
	"github.com/cenkalti/backoff/v4"
	broker "github.com/nats-io/nats.go"
)

// EventHeader names the header carrying the kind of a handshake reply.
// Replies without it confirm the join.
const EventHeader = "Storefront-Event"

const (
	defReconnectWait   = 2 * time.Second
	defJitter          = time.Second
	defInitialInterval = 500 * time.Millisecond
	defMaxInterval     = 30 * time.Second
	callQueue          = 64
)

var (
	// ErrNotConnected indicates an emit while the broker is unreachable.
	ErrNotConnected = errors.New("nats not connected")

	// ErrAlreadyOpen indicates a second Open of the same transport.
	ErrAlreadyOpen = errors.New("nats transport already open")

	errClosed     = errors.New("nats transport closed")
	errMissingURL = errors.New("missing nats url")
)

var _ realtime.Transport = (*transport)(nil)

// Config contains the NATS transport settings. Zero values take defaults.
type Config struct {
	URL             string
	Prefix          string
	ReconnectWait   time.Duration
	Jitter          time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type transport struct {
	cfg    Config
	ids    identity.Service
	logger logger.Logger
	calls  chan func()

	mu         sync.Mutex
	conn       *broker.Conn
	inbox      string
	opened     bool
	closed     bool
	reconnects int
	cancel     context.CancelFunc
}

// New returns a NATS transport. The broker client reconnects forever, the
// first connection is retried with capped exponential backoff.
func New(cfg Config, ids identity.Service, logger logger.Logger) realtime.Transport {
	if cfg.Prefix == "" {
		cfg.Prefix = DefPrefix
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = defReconnectWait
	}
	if cfg.Jitter <= 0 {
		cfg.Jitter = defJitter
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = defInitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = defMaxInterval
	}

	return &transport{
		cfg:    cfg,
		ids:    ids,
		logger: logger,
		calls:  make(chan func(), callQueue),
	}
}

// NewFactory returns a factory creating NATS transports with cfg.
func NewFactory(cfg Config, ids identity.Service, logger logger.Logger) realtime.TransportFactory {
	return func() (realtime.Transport, error) {
		if cfg.URL == "" {
			return nil, errors.Wrap(realtime.ErrTransport, errMissingURL)
		}
		return New(cfg, ids, logger), nil
	}
}

func (t *transport) Open(ctx context.Context, l realtime.Listener) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return errClosed
	}
	if t.opened {
		return ErrAlreadyOpen
	}
	t.opened = true

	ctx, t.cancel = context.WithCancel(ctx)
	go t.dispatch(ctx)
	go t.connect(ctx, l)

	return nil
}

func (t *transport) Emit(kind realtime.EventKind, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	t.mu.Lock()
	conn, inbox := t.conn, t.inbox
	t.mu.Unlock()

	if conn == nil || !conn.IsConnected() {
		return ErrNotConnected
	}
	if kind == realtime.EventJoinSession {
		return conn.PublishRequest(JoinSubject(t.cfg.Prefix), inbox, data)
	}

	return conn.Publish(ClientSubject(t.cfg.Prefix, kind), data)
}

func (t *transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if t.cancel != nil {
		t.cancel()
	}
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}

	return nil
}

func (t *transport) connect(ctx context.Context, l realtime.Listener) {
	name := "storefront"
	if device, err := t.ids.GetOrCreateDeviceID(ctx); err == nil {
		name = fmt.Sprintf("storefront-%s", device)
	}

	var conn *broker.Conn
	op := func() error {
		c, err := broker.Connect(t.cfg.URL, t.options(ctx, l, name)...)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		conn = c
		return nil
	}
	notify := func(err error, wait time.Duration) {
		t.logger.Warn(fmt.Sprintf("Failed to connect to NATS at %s, retrying in %s: %s", t.cfg.URL, wait, err))
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.cfg.InitialInterval
	b.MaxInterval = t.cfg.MaxInterval
	b.MaxElapsedTime = 0
	b.Reset()
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return
	}

	inbox := broker.NewInbox()
	if _, err := conn.Subscribe(EventsSubject(t.cfg.Prefix), t.eventHandler(ctx, l)); err != nil {
		t.logger.Error(fmt.Sprintf("Failed to subscribe to %s: %s", EventsSubject(t.cfg.Prefix), err))
		conn.Close()
		return
	}
	if _, err := conn.Subscribe(inbox, t.replyHandler(ctx, l)); err != nil {
		t.logger.Error(fmt.Sprintf("Failed to subscribe to handshake replies: %s", err))
		conn.Close()
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		conn.Close()
		return
	}
	t.conn = conn
	t.inbox = inbox
	t.mu.Unlock()

	t.enqueue(ctx, l.OnConnect)
}

func (t *transport) options(ctx context.Context, l realtime.Listener, name string) []broker.Option {
	return []broker.Option{
		broker.Name(name),
		broker.MaxReconnects(-1),
		broker.ReconnectWait(t.cfg.ReconnectWait),
		broker.ReconnectJitter(t.cfg.Jitter, t.cfg.Jitter),
		broker.DisconnectErrHandler(func(_ *broker.Conn, err error) {
			t.enqueue(ctx, func() { l.OnDisconnect(err) })
		}),
		broker.ReconnectHandler(func(_ *broker.Conn) {
			t.mu.Lock()
			t.reconnects++
			n := t.reconnects
			t.mu.Unlock()
			t.enqueue(ctx, func() { l.OnReconnect(n) })
		}),
	}
}

func (t *transport) eventHandler(ctx context.Context, l realtime.Listener) broker.MsgHandler {
	return func(m *broker.Msg) {
		kind, ok := KindOf(t.cfg.Prefix, m.Subject)
		if !ok {
			t.logger.Warn(fmt.Sprintf("Dropping message on unexpected subject %s", m.Subject))
			return
		}
		data := append([]byte(nil), m.Data...)
		t.enqueue(ctx, func() { l.OnEvent(kind, data) })
	}
}

func (t *transport) replyHandler(ctx context.Context, l realtime.Listener) broker.MsgHandler {
	return func(m *broker.Msg) {
		kind := realtime.EventJoinConfirmation
		if m.Header != nil {
			if h := m.Header.Get(EventHeader); h != "" {
				kind = realtime.EventKind(h)
			}
		}
		if kind != realtime.EventJoinConfirmation && kind != realtime.EventAuthError {
			t.logger.Warn(fmt.Sprintf("Dropping handshake reply of kind %s", kind))
			return
		}
		data := append([]byte(nil), m.Data...)
		t.enqueue(ctx, func() { l.OnEvent(kind, data) })
	}
}

// dispatch runs listener callbacks one at a time in arrival order.
func (t *transport) dispatch(ctx context.Context) {
	for {
		select {
		case fn := <-t.calls:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

func (t *transport) enqueue(ctx context.Context, fn func()) {
	select {
	case t.calls <- fn:
	case <-ctx.Done():
	}
}
