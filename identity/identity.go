// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

// Package identity resolves and persists the device and session identifiers
// that bind a storefront client to the realtime service and outbound calls.
package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MainfluxLabs/storefront/logger"
	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/MainfluxLabs/storefront/pkg/uuid"
)

// Keys under which client state is persisted.
const (
	DeviceKey  = "deviceId"
	SessionKey = "sessionId"
	TokenKey   = "authToken"
)

var (
	// ErrNotFound indicates that a key is absent from storage.
	ErrNotFound = errors.New("identity value not found")

	// ErrMalformedSession indicates a session id in neither the guest nor the user form.
	ErrMalformedSession = errors.New("malformed session id")

	// ErrMalformedEntity indicates a malformed identity request.
	ErrMalformedEntity = errors.New("malformed identity specification")
)

// Storage is the durable key-value store holding client state.
type Storage interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Identity is a snapshot of the active client identity.
type Identity struct {
	DeviceID  DeviceID
	SessionID SessionID
	Token     string
}

// Handshake is the join-session payload. Token is nil for guests.
type Handshake struct {
	Token     *string   `json:"token"`
	SessionID SessionID `json:"sessionId"`
}

// Service specifies the identity store API. Storage failures are never
// returned: they are logged and the in-memory value is used instead. The
// only error source is identifier generation.
type Service interface {
	// GetOrCreateDeviceID returns the persisted device id, creating one when
	// missing or malformed.
	GetOrCreateDeviceID(ctx context.Context) (DeviceID, error)

	// GetOrCreateSessionID returns the active session id. A guest session is
	// created when none is stored, and when a stored user session lost its
	// token or the token expired.
	GetOrCreateSessionID(ctx context.Context) (SessionID, error)

	// BindToUser issues a new user-bound session and stores token with it.
	BindToUser(ctx context.Context, userID, token string) (SessionID, error)

	// Unbind issues a new guest session and drops the stored token.
	Unbind(ctx context.Context) (SessionID, error)

	// ExpireAuth is Unbind triggered by an authentication failure.
	ExpireAuth(ctx context.Context) (SessionID, error)

	// Token returns the bearer token of the active session, empty for guests.
	Token(ctx context.Context) string

	// Handshake builds the join-session payload from the active session.
	Handshake(ctx context.Context) (Handshake, error)

	// Identity returns device, session and token in one snapshot.
	Identity(ctx context.Context) (Identity, error)
}

var _ Service = (*identityService)(nil)

type identityService struct {
	mu      sync.Mutex
	storage Storage
	ids     uuid.IDProvider
	logger  logger.Logger
	now     func() time.Time

	loaded  bool
	device  DeviceID
	session SessionID
	token   string
}

// New instantiates the identity store on top of the given storage.
func New(storage Storage, ids uuid.IDProvider, logger logger.Logger) Service {
	return &identityService{
		storage: storage,
		ids:     ids,
		logger:  logger,
		now:     time.Now,
	}
}

func (svc *identityService) GetOrCreateDeviceID(ctx context.Context) (DeviceID, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	return svc.deviceID(ctx)
}

func (svc *identityService) GetOrCreateSessionID(ctx context.Context) (SessionID, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	return svc.sessionID(ctx)
}

func (svc *identityService) BindToUser(ctx context.Context, userID, token string) (SessionID, error) {
	if userID == "" {
		return "", ErrMalformedEntity
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	nonce, err := svc.ids.ID()
	if err != nil {
		return "", err
	}

	svc.loaded = true
	svc.session = UserSession(userID, nonce)
	svc.token = token
	svc.persist(ctx, SessionKey, string(svc.session))
	if token == "" {
		svc.remove(ctx, TokenKey)
	} else {
		svc.persist(ctx, TokenKey, token)
	}

	return svc.session, nil
}

func (svc *identityService) Unbind(ctx context.Context) (SessionID, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	return svc.guest(ctx)
}

func (svc *identityService) ExpireAuth(ctx context.Context) (SessionID, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.logger.Info(fmt.Sprintf("Authentication expired for session %s", svc.session))
	return svc.guest(ctx)
}

func (svc *identityService) Token(ctx context.Context) string {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if _, err := svc.sessionID(ctx); err != nil {
		return ""
	}

	return svc.token
}

func (svc *identityService) Handshake(ctx context.Context) (Handshake, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	session, err := svc.sessionID(ctx)
	if err != nil {
		return Handshake{}, err
	}

	hs := Handshake{SessionID: session}
	if svc.token != "" {
		token := svc.token
		hs.Token = &token
	}

	return hs, nil
}

func (svc *identityService) Identity(ctx context.Context) (Identity, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	device, err := svc.deviceID(ctx)
	if err != nil {
		return Identity{}, err
	}
	session, err := svc.sessionID(ctx)
	if err != nil {
		return Identity{}, err
	}

	return Identity{DeviceID: device, SessionID: session, Token: svc.token}, nil
}

func (svc *identityService) deviceID(ctx context.Context) (DeviceID, error) {
	if svc.device != "" {
		return svc.device, nil
	}

	if v, ok := svc.read(ctx, DeviceKey); ok {
		if id := DeviceID(v); id.Valid() {
			svc.device = id
			return id, nil
		}
		svc.logger.Warn(fmt.Sprintf("Discarding malformed device id %q", v))
	}

	id, err := svc.ids.ID()
	if err != nil {
		return "", err
	}
	svc.device = DeviceID(id)
	svc.persist(ctx, DeviceKey, string(svc.device))

	return svc.device, nil
}

// sessionID loads the stored session once. Afterwards the in-memory session
// and token are authoritative.
func (svc *identityService) sessionID(ctx context.Context) (SessionID, error) {
	if !svc.loaded {
		svc.load(ctx)
	}

	if svc.session == "" {
		return svc.guest(ctx)
	}

	s, err := ParseSessionID(string(svc.session))
	if err != nil {
		return svc.guest(ctx)
	}
	if !s.Guest && (svc.token == "" || TokenExpired(svc.token, svc.now())) {
		svc.logger.Info(fmt.Sprintf("Authentication expired for session %s", svc.session))
		return svc.guest(ctx)
	}

	return svc.session, nil
}

func (svc *identityService) load(ctx context.Context) {
	svc.loaded = true
	if v, ok := svc.read(ctx, SessionKey); ok {
		if _, err := ParseSessionID(v); err == nil {
			svc.session = SessionID(v)
		} else {
			svc.logger.Warn(fmt.Sprintf("Discarding malformed session id %q", v))
		}
	}
	if t, ok := svc.read(ctx, TokenKey); ok {
		svc.token = t
	}
}

func (svc *identityService) guest(ctx context.Context) (SessionID, error) {
	nonce, err := svc.ids.ID()
	if err != nil {
		return "", err
	}

	svc.loaded = true
	svc.session = GuestSession(nonce)
	svc.token = ""
	svc.persist(ctx, SessionKey, string(svc.session))
	svc.remove(ctx, TokenKey)

	return svc.session, nil
}

// read reports ok only for values actually present in storage.
func (svc *identityService) read(ctx context.Context, key string) (string, bool) {
	v, err := svc.storage.Get(ctx, key)
	switch {
	case err == nil:
		return v, true
	case errors.Contains(err, ErrNotFound):
		return "", false
	default:
		svc.logger.Warn(fmt.Sprintf("Failed to read %s, using in-memory value: %s", key, err))
		return "", false
	}
}

func (svc *identityService) persist(ctx context.Context, key, value string) {
	if err := svc.storage.Set(ctx, key, value); err != nil {
		svc.logger.Warn(fmt.Sprintf("Failed to persist %s, continuing in memory: %s", key, err))
	}
}

func (svc *identityService) remove(ctx context.Context, key string) {
	if err := svc.storage.Remove(ctx, key); err != nil {
		svc.logger.Warn(fmt.Sprintf("Failed to remove %s: %s", key, err))
	}
}
