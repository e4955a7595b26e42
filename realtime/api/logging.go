// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"time"

	log "github.com/MainfluxLabs/storefront/logger"
	"github.com/MainfluxLabs/storefront/realtime"
)

var _ realtime.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger log.Logger
	svc    realtime.Service
}

// LoggingMiddleware adds logging facilities to the realtime service.
func LoggingMiddleware(svc realtime.Service, logger log.Logger) realtime.Service {
	return &loggingMiddleware{logger, svc}
}

func (lm *loggingMiddleware) Initialize(ctx context.Context, handlers map[realtime.EventKind][]realtime.Handler) realtime.Teardown {
	begin := time.Now()
	teardown := lm.svc.Initialize(ctx, handlers)
	lm.logger.Info(fmt.Sprintf("Method initialize with %d event kinds took %s to complete, state %s.", len(handlers), time.Since(begin), lm.svc.Status().State))

	return func() {
		defer func(begin time.Time) {
			lm.logger.Info(fmt.Sprintf("Method teardown took %s to complete, state %s.", time.Since(begin), lm.svc.Status().State))
		}(time.Now())

		teardown()
	}
}

func (lm *loggingMiddleware) Subscribe(kind realtime.EventKind, h realtime.Handler) realtime.Subscription {
	sub := lm.svc.Subscribe(kind, h)
	lm.logger.Debug(fmt.Sprintf("Method subscribe for %s returned subscription %d.", kind, sub.ID))

	return sub
}

func (lm *loggingMiddleware) Unsubscribe(sub realtime.Subscription) {
	lm.svc.Unsubscribe(sub)
	lm.logger.Debug(fmt.Sprintf("Method unsubscribe for %s subscription %d.", sub.Kind, sub.ID))
}

func (lm *loggingMiddleware) Status() realtime.Status {
	return lm.svc.Status()
}

func (lm *loggingMiddleware) Observe(o realtime.StateObserver) func() {
	return lm.svc.Observe(o)
}
