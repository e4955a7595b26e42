// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

// Package cart contains the line-item reconciliation engine of the
// storefront order and the single owner holding the cart of a session.
package cart

import (
	"sort"
	"strings"

	"github.com/MainfluxLabs/storefront/pkg/errors"
)

const (
	simplePrefix    = "s:"
	compositePrefix = "c:"
	keySeparator    = "|"
	optionSeparator = ","
	noVariant       = "none"
)

// keyEscaper escapes separators inside key components.
var keyEscaper = strings.NewReplacer(`\`, `\\`, keySeparator, `\`+keySeparator, optionSeparator, `\`+optionSeparator)

// ErrMalformedEntity indicates a malformed line item.
var ErrMalformedEntity = errors.New("malformed line item")

// IDProvider generates cart item handles.
type IDProvider interface {
	// ID generates the unique identifier.
	ID() (string, error)
}

// LineItem is one purchasable unit of the cart. It is a simple item when
// CompositeID is empty and a composite item otherwise.
type LineItem struct {
	ID          string   `json:"cartItemId"`
	Quantity    int      `json:"quantity"`
	UnitPrice   float64  `json:"unitPrice"`
	DisplayName string   `json:"displayName"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	ProductID   string   `json:"productId,omitempty"`
	VariantID   *string  `json:"variantId,omitempty"`
	CompositeID string   `json:"compositeId,omitempty"`
	OptionIDs   []string `json:"optionIds,omitempty"`
}

// Composite reports whether the item is a base product with an option set.
func (li LineItem) Composite() bool {
	return li.CompositeID != ""
}

// Key returns the identity key of the item. Two items with equal keys are
// the same purchasable unit. The cart item id never takes part in it.
// Simple and composite keys never collide, and separators inside ids are
// escaped.
func (li LineItem) Key() string {
	if li.Composite() {
		return compositePrefix + keyEscaper.Replace(li.CompositeID) + keySeparator + sortedJoin(li.OptionIDs)
	}

	variant := noVariant
	if li.VariantID != nil {
		variant = keyEscaper.Replace(*li.VariantID)
	}

	return simplePrefix + keyEscaper.Replace(li.ProductID) + keySeparator + variant
}

// Validate checks that the item identifies exactly one product shape.
func (li LineItem) Validate() error {
	if li.ProductID == "" && li.CompositeID == "" {
		return ErrMalformedEntity
	}
	if li.ProductID != "" && li.CompositeID != "" {
		return ErrMalformedEntity
	}
	if li.UnitPrice < 0 {
		return ErrMalformedEntity
	}

	return nil
}

// Total returns the price of the line.
func (li LineItem) Total() float64 {
	return li.UnitPrice * float64(li.Quantity)
}

// VariantChange describes a supplement or option change of an existing line.
// VariantID is assigned as given to simple items, so nil drops the
// supplement. OptionIDs replaces the option set of composite items when
// non-nil. UnitPrice and DisplayName override the line when set.
type VariantChange struct {
	VariantID   *string
	OptionIDs   []string
	UnitPrice   *float64
	DisplayName *string
}

func (vc VariantChange) apply(li LineItem) LineItem {
	if li.Composite() {
		if vc.OptionIDs != nil {
			li.OptionIDs = copyStrings(vc.OptionIDs)
		}
	} else {
		li.VariantID = copyString(vc.VariantID)
	}
	if vc.UnitPrice != nil {
		li.UnitPrice = *vc.UnitPrice
	}
	if vc.DisplayName != nil {
		li.DisplayName = *vc.DisplayName
	}

	return li
}

// sortedJoin joins the option set independently of the order of the ids.
func sortedJoin(ids []string) string {
	set := make(map[string]struct{}, len(ids))
	opts := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := set[id]; ok {
			continue
		}
		set[id] = struct{}{}
		opts = append(opts, keyEscaper.Replace(id))
	}
	sort.Strings(opts)

	return strings.Join(opts, optionSeparator)
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

func (li LineItem) clone() LineItem {
	li.VariantID = copyString(li.VariantID)
	li.OptionIDs = copyStrings(li.OptionIDs)
	return li
}
