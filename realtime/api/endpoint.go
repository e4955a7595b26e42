// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"github.com/MainfluxLabs/storefront/realtime"
	"github.com/go-kit/kit/endpoint"
)

func connectionEndpoint(svc realtime.Service) endpoint.Endpoint {
	return func(_ context.Context, _ interface{}) (interface{}, error) {
		return connectionRes{Status: svc.Status()}, nil
	}
}
