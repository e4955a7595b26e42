// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"github.com/MainfluxLabs/storefront/cart"
	"github.com/go-kit/kit/endpoint"
)

func addItemEndpoint(svc cart.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(addItemReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		li, err := svc.Add(ctx, req.LineItem)
		if err != nil {
			return nil, err
		}

		return itemRes{li}, nil
	}
}

func updateQuantityEndpoint(svc cart.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(updateQuantityReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		if err := svc.UpdateQuantity(ctx, req.id, req.Quantity, req.change()); err != nil {
			return nil, err
		}

		return snapshotRes{svc.Snapshot(ctx)}, nil
	}
}

func removeItemEndpoint(svc cart.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(itemReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		if err := svc.Remove(ctx, req.id); err != nil {
			return nil, err
		}

		return emptyRes{}, nil
	}
}

func clearEndpoint(svc cart.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		svc.Clear(ctx)
		return emptyRes{}, nil
	}
}

func snapshotEndpoint(svc cart.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		return snapshotRes{svc.Snapshot(ctx)}, nil
	}
}

func updateOrderEndpoint(svc cart.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(orderReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		if req.OrderType != nil {
			if err := svc.SetOrderType(ctx, *req.OrderType); err != nil {
				return nil, err
			}
		}
		if req.DeliveryAddress != nil {
			svc.SetDeliveryAddress(ctx, *req.DeliveryAddress)
		}
		if req.PromotionID != nil {
			svc.SelectPromotion(ctx, *req.PromotionID)
		}

		return snapshotRes{svc.Snapshot(ctx)}, nil
	}
}
