// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MainfluxLabs/storefront"
	"github.com/MainfluxLabs/storefront/logger"
	"github.com/MainfluxLabs/storefront/realtime"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/go-zoo/bone"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const contentType = "application/json"

type response interface {
	Code() int
	Headers() map[string]string
	Empty() bool
}

// MakeHandler returns a HTTP handler exposing the connection status,
// health and metrics of the storefront client.
func MakeHandler(svc realtime.Service, logger logger.Logger) http.Handler {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(encodeError(logger)),
	}

	r := bone.New()

	r.Get("/connection", kithttp.NewServer(
		connectionEndpoint(svc),
		kithttp.NopRequestDecoder,
		encodeResponse,
		opts...,
	))

	r.GetFunc("/health", storefront.Health("storefront"))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func encodeResponse(_ context.Context, w http.ResponseWriter, resp interface{}) error {
	w.Header().Set("Content-Type", contentType)

	if ar, ok := resp.(response); ok {
		for k, v := range ar.Headers() {
			w.Header().Set(k, v)
		}
		w.WriteHeader(ar.Code())

		if ar.Empty() {
			return nil
		}
	}

	return json.NewEncoder(w).Encode(resp)
}

func encodeError(logger logger.Logger) kithttp.ErrorEncoder {
	return func(_ context.Context, err error, w http.ResponseWriter) {
		logger.Warn("Failed to serve connection status: " + err.Error())
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
	}
}
