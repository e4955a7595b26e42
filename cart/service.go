// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package cart

import (
	"context"
	"sync"

	"github.com/MainfluxLabs/storefront/pkg/errors"
)

// Order types supported by the venue.
const (
	DineIn   OrderType = "dine-in"
	Takeaway OrderType = "takeaway"
	Delivery OrderType = "delivery"
)

// ErrInvalidOrderType indicates an order type the venue does not serve.
var ErrInvalidOrderType = errors.New("invalid order type")

// OrderType is the fulfilment mode of the order being built.
type OrderType string

// Order is the order-scoped state built alongside the cart.
type Order struct {
	Type            OrderType `json:"orderType,omitempty"`
	DeliveryAddress string    `json:"deliveryAddress,omitempty"`
	PromotionID     string    `json:"promotionId,omitempty"`
}

// Snapshot is a consistent view of the cart and its order state.
type Snapshot struct {
	Items    []LineItem `json:"items"`
	Order    Order      `json:"order"`
	Subtotal float64    `json:"subtotal"`
	Count    int        `json:"count"`
}

// Service is the single owner of a session cart. All mutations are applied
// one at a time against the latest state.
type Service interface {
	// Add merges item into the cart and returns the resulting line.
	Add(ctx context.Context, item LineItem) (LineItem, error)

	// UpdateQuantity sets the quantity of a line, optionally changing its
	// variant. Unknown ids are ignored.
	UpdateQuantity(ctx context.Context, id string, quantity int, change *VariantChange) error

	// Remove drops a line.
	Remove(ctx context.Context, id string) error

	// Clear empties the cart and resets the order state.
	Clear(ctx context.Context)

	// Items returns the cart lines in insertion order.
	Items(ctx context.Context) []LineItem

	// SetOrderType selects how the order is fulfilled.
	SetOrderType(ctx context.Context, t OrderType) error

	// SetDeliveryAddress stores the delivery address of the order.
	SetDeliveryAddress(ctx context.Context, address string)

	// SelectPromotion stores the selected promotion, empty to deselect.
	SelectPromotion(ctx context.Context, promotionID string)

	// Snapshot returns lines, order state and totals read atomically.
	Snapshot(ctx context.Context) Snapshot
}

var _ Service = (*cartService)(nil)

type cartService struct {
	mu    sync.Mutex
	ids   IDProvider
	items []LineItem
	order Order
}

// New instantiates an empty cart.
func New(ids IDProvider) Service {
	return &cartService{
		ids:   ids,
		items: []LineItem{},
	}
}

func (cs *cartService) Add(_ context.Context, item LineItem) (LineItem, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	items, err := Add(cs.items, item, cs.ids)
	if err != nil {
		return LineItem{}, err
	}
	cs.items = items

	key := item.Key()
	for _, li := range cs.items {
		if li.Key() == key {
			return li.clone(), nil
		}
	}

	return LineItem{}, nil
}

func (cs *cartService) UpdateQuantity(_ context.Context, id string, quantity int, change *VariantChange) error {
	if id == "" {
		return ErrMalformedEntity
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.items = UpdateQuantity(cs.items, id, quantity, change)

	return nil
}

func (cs *cartService) Remove(_ context.Context, id string) error {
	if id == "" {
		return ErrMalformedEntity
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.items = Remove(cs.items, id)

	return nil
}

func (cs *cartService) Clear(_ context.Context) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.items = []LineItem{}
	cs.order = Order{}
}

func (cs *cartService) Items(_ context.Context) []LineItem {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return cloneItems(cs.items)
}

func (cs *cartService) SetOrderType(_ context.Context, t OrderType) error {
	switch t {
	case DineIn, Takeaway, Delivery:
	default:
		return ErrInvalidOrderType
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.order.Type = t
	if t != Delivery {
		cs.order.DeliveryAddress = ""
	}

	return nil
}

func (cs *cartService) SetDeliveryAddress(_ context.Context, address string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.order.DeliveryAddress = address
}

func (cs *cartService) SelectPromotion(_ context.Context, promotionID string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.order.PromotionID = promotionID
}

func (cs *cartService) Snapshot(_ context.Context) Snapshot {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return Snapshot{
		Items:    cloneItems(cs.items),
		Order:    cs.order,
		Subtotal: Subtotal(cs.items),
		Count:    Count(cs.items),
	}
}
