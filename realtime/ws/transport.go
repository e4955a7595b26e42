// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

// Package ws contains the websocket realtime transport.
package ws

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/MainfluxLabs/storefront/identity"
	"github.com/MainfluxLabs/storefront/logger"
	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/MainfluxLabs/storefront/realtime"
	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

const (
	defInitialInterval  = 500 * time.Millisecond
	defMaxInterval      = 30 * time.Second
	defHandshakeTimeout = 10 * time.Second
	defWriteTimeout     = 5 * time.Second
	jitter              = 0.5

	deviceParam  = "deviceId"
	sessionParam = "sessionId"
)

var (
	// ErrNotConnected indicates an emit while no connection is established.
	ErrNotConnected = errors.New("websocket not connected")

	// ErrAlreadyOpen indicates a second Open of the same transport.
	ErrAlreadyOpen = errors.New("websocket transport already open")

	errClosed = errors.New("websocket transport closed")
)

var _ realtime.Transport = (*transport)(nil)

// Config contains websocket transport settings. Zero durations take defaults.
type Config struct {
	URL              string
	InitialInterval  time.Duration
	MaxInterval      time.Duration
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

type transport struct {
	cfg    Config
	ids    identity.Service
	dialer *websocket.Dialer
	logger logger.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	opened bool
	closed bool
	cancel context.CancelFunc
}

// New returns a websocket transport that dials cfg.URL and redials forever
// with capped, jittered exponential backoff.
func New(cfg Config, ids identity.Service, logger logger.Logger) realtime.Transport {
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = defInitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = defMaxInterval
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defHandshakeTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defWriteTimeout
	}

	return &transport{
		cfg: cfg,
		ids: ids,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		logger: logger,
	}
}

// NewFactory returns a factory creating websocket transports with cfg.
func NewFactory(cfg Config, ids identity.Service, logger logger.Logger) realtime.TransportFactory {
	return func() (realtime.Transport, error) {
		if _, err := url.Parse(cfg.URL); err != nil || cfg.URL == "" {
			return nil, errors.Wrap(realtime.ErrTransport, fmt.Errorf("invalid websocket url %q", cfg.URL))
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
	go t.run(ctx, l)

	return nil
}

func (t *transport) Emit(kind realtime.EventKind, payload interface{}) error {
	msg, err := Encode(kind, payload)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return ErrNotConnected
	}
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.cfg.WriteTimeout)); err != nil {
		return err
	}

	return t.conn.WriteMessage(websocket.TextMessage, msg)
}

// Close does not wait for the run loop to exit.
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
	if t.conn == nil {
		return nil
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(t.cfg.WriteTimeout))
	err := t.conn.Close()
	t.conn = nil

	return err
}

func (t *transport) run(ctx context.Context, l realtime.Listener) {
	established := false
	for {
		attempt := 0
		var conn *websocket.Conn
		dial := func() error {
			attempt++
			c, err := t.dial(ctx)
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
			t.logger.Warn(fmt.Sprintf("Failed to connect to %s, retrying in %s: %s", t.cfg.URL, wait, err))
		}
		if err := backoff.RetryNotify(dial, t.backoff(ctx), notify); err != nil {
			if ctx.Err() == nil {
				t.logger.Error(fmt.Sprintf("Giving up connecting to %s: %s", t.cfg.URL, err))
			}
			return
		}

		if !t.attach(conn) {
			conn.Close()
			return
		}
		if established {
			l.OnReconnect(attempt)
		} else {
			established = true
			l.OnConnect()
		}

		err := t.read(conn, l)
		if !t.detach(conn) {
			return
		}
		conn.Close()
		l.OnDisconnect(err)
	}
}

func (t *transport) dial(ctx context.Context) (*websocket.Conn, error) {
	id, err := t.ids.Identity(ctx)
	if err != nil {
		return nil, err
	}
	header, err := identity.Headers(ctx, t.ids)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(t.cfg.URL)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	q := u.Query()
	q.Set(deviceParam, string(id.DeviceID))
	q.Set(sessionParam, string(id.SessionID))
	u.RawQuery = q.Encode()

	conn, res, err := t.dialer.DialContext(ctx, u.String(), header)
	if res != nil && res.Body != nil {
		res.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	return conn, nil
}

func (t *transport) read(conn *websocket.Conn, l realtime.Listener) error {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		f, err := Decode(msg)
		if err != nil {
			t.logger.Warn(fmt.Sprintf("Dropping websocket frame: %s", err))
			continue
		}
		l.OnEvent(f.Event, f.Data)
	}
}

// attach publishes conn for Emit unless the transport was closed meanwhile.
func (t *transport) attach(conn *websocket.Conn) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false
	}
	t.conn = conn
	return true
}

// detach reports false when the connection ended because of Close.
func (t *transport) detach(conn *websocket.Conn) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false
	}
	if t.conn == conn {
		t.conn = nil
	}
	return true
}

func (t *transport) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.cfg.InitialInterval
	b.MaxInterval = t.cfg.MaxInterval
	b.RandomizationFactor = jitter
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(b, ctx)
}
