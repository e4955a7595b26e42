// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MainfluxLabs/storefront/cart"
	"github.com/MainfluxLabs/storefront/logger"
	"github.com/MainfluxLabs/storefront/pkg/errors"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/go-zoo/bone"
)

const (
	contentType = "application/json"
	idParam     = "id"
)

var (
	errUnsupportedContentType = errors.New("unsupported content type")
	errMalformedBody          = errors.New("malformed request body")
)

// MakeHandler returns a HTTP handler for the cart API.
func MakeHandler(svc cart.Service, logger logger.Logger) http.Handler {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(encodeError(logger)),
	}

	r := bone.New()

	r.Get("/cart", kithttp.NewServer(
		snapshotEndpoint(svc),
		kithttp.NopRequestDecoder,
		encodeResponse,
		opts...,
	))

	r.Delete("/cart", kithttp.NewServer(
		clearEndpoint(svc),
		kithttp.NopRequestDecoder,
		encodeResponse,
		opts...,
	))

	r.Post("/cart/items", kithttp.NewServer(
		addItemEndpoint(svc),
		decodeAddItem,
		encodeResponse,
		opts...,
	))

	r.Put("/cart/items/:id", kithttp.NewServer(
		updateQuantityEndpoint(svc),
		decodeUpdateQuantity,
		encodeResponse,
		opts...,
	))

	r.Delete("/cart/items/:id", kithttp.NewServer(
		removeItemEndpoint(svc),
		decodeItem,
		encodeResponse,
		opts...,
	))

	r.Put("/cart/order", kithttp.NewServer(
		updateOrderEndpoint(svc),
		decodeOrder,
		encodeResponse,
		opts...,
	))

	return r
}

func decodeAddItem(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), contentType) {
		return nil, errUnsupportedContentType
	}

	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(errMalformedBody, err)
	}

	return req, nil
}

func decodeUpdateQuantity(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), contentType) {
		return nil, errUnsupportedContentType
	}

	req := updateQuantityReq{id: bone.GetValue(r, idParam)}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(errMalformedBody, err)
	}

	return req, nil
}

func decodeItem(_ context.Context, r *http.Request) (interface{}, error) {
	return itemReq{id: bone.GetValue(r, idParam)}, nil
}

func decodeOrder(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), contentType) {
		return nil, errUnsupportedContentType
	}

	var req orderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(errMalformedBody, err)
	}

	return req, nil
}

func encodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", contentType)

	if ar, ok := response.(apiRes); ok {
		for k, v := range ar.Headers() {
			w.Header().Set(k, v)
		}
		w.WriteHeader(ar.Code())

		if ar.Empty() {
			return nil
		}
	}

	return json.NewEncoder(w).Encode(response)
}

type errorRes struct {
	Err string `json:"error"`
}

func encodeError(logger logger.Logger) kithttp.ErrorEncoder {
	return func(_ context.Context, err error, w http.ResponseWriter) {
		w.Header().Set("Content-Type", contentType)

		switch {
		case errors.Contains(err, cart.ErrMalformedEntity),
			errors.Contains(err, cart.ErrInvalidOrderType),
			errors.Contains(err, errMalformedBody):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Contains(err, errUnsupportedContentType):
			w.WriteHeader(http.StatusUnsupportedMediaType)
		default:
			logger.Error("Failed to serve cart request: " + err.Error())
			w.WriteHeader(http.StatusInternalServerError)
		}

		if errorVal, ok := err.(errors.Error); ok {
			json.NewEncoder(w).Encode(errorRes{Err: errorVal.Msg()})
			return
		}
		json.NewEncoder(w).Encode(errorRes{Err: err.Error()})
	}
}
