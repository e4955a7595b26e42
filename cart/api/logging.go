// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"time"

	"github.com/MainfluxLabs/storefront/cart"
	log "github.com/MainfluxLabs/storefront/logger"
)

var _ cart.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger log.Logger
	svc    cart.Service
}

// LoggingMiddleware adds logging facilities to the cart service.
func LoggingMiddleware(svc cart.Service, logger log.Logger) cart.Service {
	return &loggingMiddleware{logger, svc}
}

func (lm *loggingMiddleware) Add(ctx context.Context, item cart.LineItem) (li cart.LineItem, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method add for key %s took %s to complete", item.Key(), time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Debug(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.Add(ctx, item)
}

func (lm *loggingMiddleware) UpdateQuantity(ctx context.Context, id string, quantity int, change *cart.VariantChange) (err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method update_quantity for item %s to %d took %s to complete", id, quantity, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Debug(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.UpdateQuantity(ctx, id, quantity, change)
}

func (lm *loggingMiddleware) Remove(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method remove for item %s took %s to complete", id, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Debug(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.Remove(ctx, id)
}

func (lm *loggingMiddleware) Clear(ctx context.Context) {
	defer func(begin time.Time) {
		lm.logger.Debug(fmt.Sprintf("Method clear took %s to complete without errors.", time.Since(begin)))
	}(time.Now())

	lm.svc.Clear(ctx)
}

func (lm *loggingMiddleware) Items(ctx context.Context) []cart.LineItem {
	return lm.svc.Items(ctx)
}

func (lm *loggingMiddleware) SetOrderType(ctx context.Context, t cart.OrderType) (err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method set_order_type to %s took %s to complete", t, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Debug(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.SetOrderType(ctx, t)
}

func (lm *loggingMiddleware) SetDeliveryAddress(ctx context.Context, address string) {
	lm.svc.SetDeliveryAddress(ctx, address)
}

func (lm *loggingMiddleware) SelectPromotion(ctx context.Context, promotionID string) {
	defer lm.logger.Debug(fmt.Sprintf("Method select_promotion %q completed without errors.", promotionID))

	lm.svc.SelectPromotion(ctx, promotionID)
}

func (lm *loggingMiddleware) Snapshot(ctx context.Context) cart.Snapshot {
	return lm.svc.Snapshot(ctx)
}
