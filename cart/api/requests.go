// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/MainfluxLabs/storefront/cart"
)

type apiReq interface {
	validate() error
}

type addItemReq struct {
	cart.LineItem
}

func (req addItemReq) validate() error {
	return req.LineItem.Validate()
}

type changeReq struct {
	VariantID   *string  `json:"variantId"`
	OptionIDs   []string `json:"optionIds"`
	UnitPrice   *float64 `json:"unitPrice"`
	DisplayName *string  `json:"displayName"`
}

type updateQuantityReq struct {
	id       string
	Quantity int        `json:"quantity"`
	Change   *changeReq `json:"change,omitempty"`
}

func (req updateQuantityReq) validate() error {
	if req.id == "" {
		return cart.ErrMalformedEntity
	}
	if req.Change != nil && req.Change.UnitPrice != nil && *req.Change.UnitPrice < 0 {
		return cart.ErrMalformedEntity
	}

	return nil
}

func (req updateQuantityReq) change() *cart.VariantChange {
	if req.Change == nil {
		return nil
	}

	return &cart.VariantChange{
		VariantID:   req.Change.VariantID,
		OptionIDs:   req.Change.OptionIDs,
		UnitPrice:   req.Change.UnitPrice,
		DisplayName: req.Change.DisplayName,
	}
}

type itemReq struct {
	id string
}

func (req itemReq) validate() error {
	if req.id == "" {
		return cart.ErrMalformedEntity
	}

	return nil
}

type orderReq struct {
	OrderType       *cart.OrderType `json:"orderType,omitempty"`
	DeliveryAddress *string         `json:"deliveryAddress,omitempty"`
	PromotionID     *string         `json:"promotionId,omitempty"`
}

func (req orderReq) validate() error {
	if req.OrderType == nil && req.DeliveryAddress == nil && req.PromotionID == nil {
		return cart.ErrMalformedEntity
	}

	return nil
}

type emptyReq struct{}

func (req emptyReq) validate() error {
	return nil
}
