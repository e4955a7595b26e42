// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MainfluxLabs/storefront"
	"github.com/MainfluxLabs/storefront/identity"
	idmocks "github.com/MainfluxLabs/storefront/identity/mocks"
	"github.com/MainfluxLabs/storefront/logger"
	"github.com/MainfluxLabs/storefront/pkg/uuid"
	"github.com/MainfluxLabs/storefront/realtime"
	"github.com/MainfluxLabs/storefront/realtime/api"
	"github.com/MainfluxLabs/storefront/realtime/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(out *bytes.Buffer) (realtime.Service, *mocks.Factory) {
	ids := identity.New(idmocks.NewStorage(nil), uuid.NewMock(), logger.NewMock())
	factory := &mocks.Factory{}
	m := realtime.NewManager(ids, factory.New, logger.NewMock(), realtime.Options{})
	return api.LoggingMiddleware(m, logger.NewWriterMock(out)), factory
}

func getStatus(t *testing.T, ts *httptest.Server) realtime.Status {
	res, err := http.Get(ts.URL + "/connection")
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode, "expected status OK")
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"), "expected JSON content type")

	var st realtime.Status
	err = json.NewDecoder(res.Body).Decode(&st)
	require.Nil(t, err, fmt.Sprintf("unexpected decode error %s", err))
	return st
}

func TestConnection(t *testing.T) {
	buf := &bytes.Buffer{}
	svc, factory := newService(buf)
	ts := httptest.NewServer(api.MakeHandler(svc, logger.NewMock()))
	defer ts.Close()

	assert.Equal(t, realtime.Uninitialized, getStatus(t, ts).State, "expected uninitialized connection")

	td := svc.Initialize(context.Background(), nil)
	tr := factory.Last()
	tr.Connect()

	cases := []struct {
		desc      string
		send      realtime.EventKind
		payload   interface{}
		state     realtime.State
		connected bool
		authErr   bool
	}{
		{
			desc:  "connecting before confirmation",
			state: realtime.Connecting,
		},
		{
			desc:      "connected after confirmation",
			send:      realtime.EventJoinConfirmation,
			state:     realtime.Connected,
			connected: true,
		},
		{
			desc:    "rejected handshake",
			send:    realtime.EventAuthError,
			payload: realtime.AuthError{Message: "expired"},
			state:   realtime.Connecting,
			authErr: true,
		},
	}

	for _, tc := range cases {
		if tc.send != "" {
			tr.Send(tc.send, tc.payload)
		}
		st := getStatus(t, ts)
		assert.Equal(t, tc.state, st.State, fmt.Sprintf("%s: expected %s got %s\n", tc.desc, tc.state, st.State))
		assert.Equal(t, tc.connected, st.Connected, fmt.Sprintf("%s: expected connected %t got %t\n", tc.desc, tc.connected, st.Connected))
		assert.Equal(t, tc.authErr, st.AuthError, fmt.Sprintf("%s: expected auth error %t got %t\n", tc.desc, tc.authErr, st.AuthError))
	}

	td()
	assert.Equal(t, realtime.Closed, getStatus(t, ts).State, "expected closed connection")
	assert.Contains(t, buf.String(), "Method initialize", "expected initialize to be logged")
	assert.Contains(t, buf.String(), "Method teardown", "expected teardown to be logged")
}

func TestHealth(t *testing.T) {
	svc, _ := newService(&bytes.Buffer{})
	ts := httptest.NewServer(api.MakeHandler(svc, logger.NewMock()))
	defer ts.Close()

	res, err := http.Get(ts.URL + "/health")
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))
	defer res.Body.Close()

	var info storefront.HealthInfo
	err = json.NewDecoder(res.Body).Decode(&info)
	require.Nil(t, err, fmt.Sprintf("unexpected decode error %s", err))
	assert.Equal(t, "pass", info.Status, "expected passing health")
	assert.Equal(t, storefront.Version, info.Version, "expected client version")
}
