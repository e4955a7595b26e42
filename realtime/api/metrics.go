// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

//go:build !test

package api

import (
	"context"
	"time"

	"github.com/MainfluxLabs/storefront/realtime"
	"github.com/go-kit/kit/metrics"
)

var _ realtime.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     realtime.Service
}

// MetricsMiddleware instruments the realtime service by tracking request
// count and latency, and counts delivered events per kind.
func MetricsMiddleware(svc realtime.Service, counter metrics.Counter, latency metrics.Histogram) realtime.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Initialize(ctx context.Context, handlers map[realtime.EventKind][]realtime.Handler) realtime.Teardown {
	defer func(begin time.Time) {
		mm.counter.With("method", "initialize").Add(1)
		mm.latency.With("method", "initialize").Observe(time.Since(begin).Seconds())
	}(time.Now())

	counted := make(map[realtime.EventKind][]realtime.Handler, len(handlers))
	for kind, hs := range handlers {
		for _, h := range hs {
			counted[kind] = append(counted[kind], mm.count(kind, h))
		}
	}
	teardown := mm.svc.Initialize(ctx, counted)

	return func() {
		defer func(begin time.Time) {
			mm.counter.With("method", "teardown").Add(1)
			mm.latency.With("method", "teardown").Observe(time.Since(begin).Seconds())
		}(time.Now())

		teardown()
	}
}

func (mm *metricsMiddleware) Subscribe(kind realtime.EventKind, h realtime.Handler) realtime.Subscription {
	mm.counter.With("method", "subscribe").Add(1)
	return mm.svc.Subscribe(kind, mm.count(kind, h))
}

func (mm *metricsMiddleware) Unsubscribe(sub realtime.Subscription) {
	mm.counter.With("method", "unsubscribe").Add(1)
	mm.svc.Unsubscribe(sub)
}

func (mm *metricsMiddleware) Status() realtime.Status {
	return mm.svc.Status()
}

func (mm *metricsMiddleware) Observe(o realtime.StateObserver) func() {
	return mm.svc.Observe(o)
}

func (mm *metricsMiddleware) count(kind realtime.EventKind, h realtime.Handler) realtime.Handler {
	method := "handle_" + string(kind)
	return func(ev realtime.Event) error {
		defer func(begin time.Time) {
			mm.counter.With("method", method).Add(1)
			mm.latency.With("method", method).Observe(time.Since(begin).Seconds())
		}(time.Now())

		return h(ev)
	}
}
