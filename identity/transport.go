// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MainfluxLabs/storefront/logger"
)

// Request metadata headers attached to every outbound call.
const (
	DeviceHeader        = "X-Device-Id"
	SessionHeader       = "X-Session-Id"
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)

// Headers returns the request metadata for the active identity.
func Headers(ctx context.Context, svc Service) (http.Header, error) {
	id, err := svc.Identity(ctx)
	if err != nil {
		return nil, err
	}

	h := http.Header{}
	h.Set(DeviceHeader, string(id.DeviceID))
	h.Set(SessionHeader, string(id.SessionID))
	if id.Token != "" {
		h.Set(AuthorizationHeader, BearerPrefix+id.Token)
	}

	return h, nil
}

var _ http.RoundTripper = (*transport)(nil)

type transport struct {
	svc    Service
	base   http.RoundTripper
	logger logger.Logger
}

// NewTransport wraps base so that every request carries the identity
// headers. A 401 answer to an authenticated request expires the session.
func NewTransport(svc Service, base http.RoundTripper, logger logger.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	return &transport{
		svc:    svc,
		base:   base,
		logger: logger,
	}
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	h, err := Headers(ctx, t.svc)
	if err != nil {
		return nil, err
	}

	r := req.Clone(ctx)
	for k, v := range h {
		r.Header[k] = v
	}

	res, err := t.base.RoundTrip(r)
	if err != nil {
		return nil, err
	}

	if res.StatusCode == http.StatusUnauthorized && h.Get(AuthorizationHeader) != "" {
		if _, err := t.svc.ExpireAuth(ctx); err != nil {
			t.logger.Warn(fmt.Sprintf("Failed to rotate session after %s %s: %s", req.Method, req.URL, err))
		}
	}

	return res, nil
}
