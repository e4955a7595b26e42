// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/MainfluxLabs/storefront/cart"
	"github.com/MainfluxLabs/storefront/pkg/ulid"
	"github.com/spf13/cobra"
)

type totalsRes struct {
	Items    []cart.LineItem `json:"items"`
	Subtotal float64         `json:"subtotal"`
	Count    int             `json:"count"`
}

// merge folds items into a fresh cart the way the storefront does.
func merge(items []cart.LineItem) (totalsRes, error) {
	ids := ulid.New()
	lines := []cart.LineItem{}
	for _, item := range items {
		var err error
		if lines, err = cart.Add(lines, item, ids); err != nil {
			return totalsRes{}, err
		}
	}

	return totalsRes{
		Items:    lines,
		Subtotal: cart.Subtotal(lines),
		Count:    cart.Count(lines),
	}, nil
}

var cmdCart = []cobra.Command{
	{
		Use:   "key <JSON_item>",
		Short: "Line item key",
		Long: `Prints the identity key of a line item.
				Usage:
					storefront-cli cart key '{"productId":"p1","variantId":"large"}'`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsage(cmd.Use)
				return
			}

			var item cart.LineItem
			if err := json.Unmarshal([]byte(args[0]), &item); err != nil {
				logError(err)
				return
			}
			if err := item.Validate(); err != nil {
				logError(err)
				return
			}

			fmt.Println(item.Key())
		},
	},
	{
		Use:   "merge <JSON_items>",
		Short: "Merge line items",
		Long: `Adds the given items to an empty cart and prints the resulting lines and totals.
				Usage:
					storefront-cli cart merge '[{"productId":"p1","unitPrice":2.5},{"productId":"p1","quantity":2,"unitPrice":2.5}]'`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsage(cmd.Use)
				return
			}

			var items []cart.LineItem
			if err := json.Unmarshal([]byte(args[0]), &items); err != nil {
				logError(err)
				return
			}

			res, err := merge(items)
			if err != nil {
				logError(err)
				return
			}

			logJSON(res)
		},
	},
}

// NewCartCmd returns cart command.
func NewCartCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "cart [key | merge]",
		Short: "Cart reconciliation",
		Long:  `Inspect how line items reconcile in a cart.`,
	}

	for i := range cmdCart {
		cmd.AddCommand(&cmdCart[i])
	}

	return &cmd
}
