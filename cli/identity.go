// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"

	"github.com/MainfluxLabs/storefront/identity"
	"github.com/spf13/cobra"
)

type identityRes struct {
	DeviceID  identity.DeviceID  `json:"deviceId"`
	SessionID identity.SessionID `json:"sessionId"`
	Guest     bool               `json:"guest"`
	Token     string             `json:"token,omitempty"`
}

func withIdentity(fn func(ctx context.Context, ids identity.Service) error) {
	l, err := newLogger()
	if err != nil {
		logError(err)
		return
	}

	ids, closeStorage, err := newIdentity(l)
	if err != nil {
		logError(err)
		return
	}
	defer closeStorage()

	if err := fn(context.Background(), ids); err != nil {
		logError(err)
	}
}

func showIdentity(ctx context.Context, ids identity.Service) error {
	id, err := ids.Identity(ctx)
	if err != nil {
		return err
	}

	if RawOutput {
		fmt.Println(id.SessionID)
		return nil
	}

	logJSON(identityRes{
		DeviceID:  id.DeviceID,
		SessionID: id.SessionID,
		Guest:     id.SessionID.Guest(),
		Token:     mask(id.Token),
	})

	return nil
}

var cmdIdentity = []cobra.Command{
	{
		Use:   "show",
		Short: "Show identity",
		Long:  `Shows the device id, the active session and whether it is bound to a user.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsage(cmd.Use)
				return
			}

			withIdentity(showIdentity)
		},
	},
	{
		Use:   "login <user_id> <token>",
		Short: "Bind session to user",
		Long:  `Issues a new user-bound session and stores the bearer token with it.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 2 {
				logUsage(cmd.Use)
				return
			}

			withIdentity(func(ctx context.Context, ids identity.Service) error {
				if _, err := ids.BindToUser(ctx, args[0], args[1]); err != nil {
					return err
				}
				return showIdentity(ctx, ids)
			})
		},
	},
	{
		Use:   "logout",
		Short: "Unbind session",
		Long:  `Drops the stored token and issues a new guest session.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsage(cmd.Use)
				return
			}

			withIdentity(func(ctx context.Context, ids identity.Service) error {
				if _, err := ids.Unbind(ctx); err != nil {
					return err
				}
				return showIdentity(ctx, ids)
			})
		},
	},
	{
		Use:   "headers",
		Short: "Show request headers",
		Long:  `Shows the identity headers attached to outbound requests.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsage(cmd.Use)
				return
			}

			withIdentity(func(ctx context.Context, ids identity.Service) error {
				h, err := identity.Headers(ctx, ids)
				if err != nil {
					return err
				}
				logJSON(h)
				return nil
			})
		},
	},
}

// NewIdentityCmd returns identity command.
func NewIdentityCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "identity [show | login | logout | headers]",
		Short: "Client identity",
		Long:  `Inspect and change the persisted client identity.`,
	}

	for i := range cmdIdentity {
		cmd.AddCommand(&cmdIdentity[i])
	}

	return &cmd
}
