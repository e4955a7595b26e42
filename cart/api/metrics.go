// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

//go:build !test

package api

import (
	"context"
	"time"

	"github.com/MainfluxLabs/storefront/cart"
	"github.com/go-kit/kit/metrics"
)

var _ cart.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     cart.Service
}

// MetricsMiddleware instruments the cart service by tracking request count and latency.
func MetricsMiddleware(svc cart.Service, counter metrics.Counter, latency metrics.Histogram) cart.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Add(ctx context.Context, item cart.LineItem) (cart.LineItem, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "add").Add(1)
		mm.latency.With("method", "add").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Add(ctx, item)
}

func (mm *metricsMiddleware) UpdateQuantity(ctx context.Context, id string, quantity int, change *cart.VariantChange) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "update_quantity").Add(1)
		mm.latency.With("method", "update_quantity").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.UpdateQuantity(ctx, id, quantity, change)
}

func (mm *metricsMiddleware) Remove(ctx context.Context, id string) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "remove").Add(1)
		mm.latency.With("method", "remove").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Remove(ctx, id)
}

func (mm *metricsMiddleware) Clear(ctx context.Context) {
	defer func(begin time.Time) {
		mm.counter.With("method", "clear").Add(1)
		mm.latency.With("method", "clear").Observe(time.Since(begin).Seconds())
	}(time.Now())

	mm.svc.Clear(ctx)
}

func (mm *metricsMiddleware) Items(ctx context.Context) []cart.LineItem {
	return mm.svc.Items(ctx)
}

func (mm *metricsMiddleware) SetOrderType(ctx context.Context, t cart.OrderType) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "set_order_type").Add(1)
		mm.latency.With("method", "set_order_type").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.SetOrderType(ctx, t)
}

func (mm *metricsMiddleware) SetDeliveryAddress(ctx context.Context, address string) {
	mm.svc.SetDeliveryAddress(ctx, address)
}

func (mm *metricsMiddleware) SelectPromotion(ctx context.Context, promotionID string) {
	defer func(begin time.Time) {
		mm.counter.With("method", "select_promotion").Add(1)
		mm.latency.With("method", "select_promotion").Observe(time.Since(begin).Seconds())
	}(time.Now())

	mm.svc.SelectPromotion(ctx, promotionID)
}

func (mm *metricsMiddleware) Snapshot(ctx context.Context) cart.Snapshot {
	return mm.svc.Snapshot(ctx)
}
