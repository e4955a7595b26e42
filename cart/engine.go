// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package cart

// The functions below are pure: they never modify the slice they are given
// and always return a fresh collection in which no two lines share a key.

// Add merges item into items. A line with the same key absorbs the quantity
// and keeps its own metadata, otherwise the item is appended under a new
// cart item id. Quantities below 1 count as 1.
func Add(items []LineItem, item LineItem, ids IDProvider) ([]LineItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}

	out := cloneItems(items)
	key := item.Key()
	for i := range out {
		if out[i].Key() == key {
			out[i].Quantity += qty
			return out, nil
		}
	}

	id, err := ids.ID()
	if err != nil {
		return nil, err
	}

	li := item.clone()
	li.ID = id
	li.Quantity = qty

	return append(out, li), nil
}

// UpdateQuantity sets the quantity of the line with the given cart item id
// and applies change when given. A quantity below 1 removes the line. When
// the change makes the line collide with another one, the target is dropped
// and quantity is folded into the other line. Unknown ids are a no-op.
func UpdateQuantity(items []LineItem, id string, quantity int, change *VariantChange) []LineItem {
	idx := indexOf(items, id)
	if idx < 0 {
		return cloneItems(items)
	}
	if quantity < 1 {
		return Remove(items, id)
	}

	out := cloneItems(items)
	target := out[idx]
	if change != nil {
		target = change.apply(target)
		key := target.Key()
		for j := range out {
			if j == idx || out[j].Key() != key {
				continue
			}
			survivor := change.apply(out[j])
			survivor.Quantity = out[j].Quantity + quantity
			out[j] = survivor
			return append(out[:idx], out[idx+1:]...)
		}
	}

	target.Quantity = quantity
	out[idx] = target

	return out
}

// Remove drops the line with the given cart item id.
func Remove(items []LineItem, id string) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, li := range items {
		if li.ID == id {
			continue
		}
		out = append(out, li.clone())
	}

	return out
}

// Subtotal returns the sum of all line totals.
func Subtotal(items []LineItem) float64 {
	var total float64
	for _, li := range items {
		total += li.Total()
	}

	return total
}

// Count returns the number of units in the cart.
func Count(items []LineItem) int {
	var n int
	for _, li := range items {
		n += li.Quantity
	}

	return n
}

// Find returns the line with the given cart item id.
func Find(items []LineItem, id string) (LineItem, bool) {
	if idx := indexOf(items, id); idx >= 0 {
		return items[idx].clone(), true
	}

	return LineItem{}, false
}

func indexOf(items []LineItem, id string) int {
	for i, li := range items {
		if li.ID == id {
			return i
		}
	}

	return -1
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, li := range items {
		out[i] = li.clone()
	}

	return out
}
