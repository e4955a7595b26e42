// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/MainfluxLabs/storefront/realtime"
	"github.com/spf13/cobra"
)

var errUnknownKind = errors.New("unknown event kind")

// kindsOf parses the kinds given on the command line, all kinds when none.
func kindsOf(args []string) ([]realtime.EventKind, error) {
	if len(args) == 0 {
		return realtime.Kinds(), nil
	}

	known := make(map[realtime.EventKind]bool)
	for _, k := range realtime.Kinds() {
		known[k] = true
	}

	kinds := make([]realtime.EventKind, 0, len(args))
	for _, a := range args {
		k := realtime.EventKind(a)
		if !known[k] {
			return nil, errors.Wrap(errUnknownKind, errors.New(a))
		}
		kinds = append(kinds, k)
	}

	return kinds, nil
}

func printEvent(ev realtime.Event) error {
	if RawOutput {
		b, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	logJSON(ev)
	return nil
}

func listen(kinds []realtime.EventKind) error {
	l, err := newLogger()
	if err != nil {
		return err
	}

	ids, closeStorage, err := newIdentity(l)
	if err != nil {
		return err
	}
	defer closeStorage()

	m, err := newManager(ids, l)
	if err != nil {
		return err
	}

	handlers := make(map[realtime.EventKind][]realtime.Handler, len(kinds))
	for _, k := range kinds {
		handlers[k] = []realtime.Handler{printEvent}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := m.Observe(func(st realtime.Status) {
		if !RawOutput {
			logStatus(st)
		}
	})
	defer stop()

	teardown := m.Initialize(ctx, handlers)
	defer teardown()

	if sig := errors.SignalHandler(ctx); sig != nil && !RawOutput {
		logInfo(fmt.Sprintf("stopped by signal: %s", sig))
	}

	return nil
}

var cmdEvents = []cobra.Command{
	{
		Use:   "listen [kind...]",
		Short: "Listen for events",
		Long: `Connects to the realtime service and prints every valid event of the given kinds until interrupted.
				Usage:
					storefront-cli events listen
					storefront-cli events listen new-order order-status-update`,
		Run: func(cmd *cobra.Command, args []string) {
			kinds, err := kindsOf(args)
			if err != nil {
				logUsage(cmd.Use)
				logError(err)
				return
			}

			if err := listen(kinds); err != nil {
				logError(err)
			}
		},
	},
	{
		Use:   "validate <kind> <JSON_payload>",
		Short: "Validate event payload",
		Long: `Checks that a payload carries the identifying field of its kind.
				Usage:
					storefront-cli events validate new-order '{"id":"o1"}'`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 2 {
				logUsage(cmd.Use)
				return
			}

			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(args[1]), &payload); err != nil {
				logError(err)
				return
			}

			res := realtime.Validate(realtime.EventKind(args[0]), payload)
			if !res.OK {
				logError(errors.New(res.Reason))
				return
			}

			logOK()
		},
	},
	{
		Use:   "kinds",
		Short: "List event kinds",
		Long:  `Lists the event kinds delivered to subscribers.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsage(cmd.Use)
				return
			}

			logJSON(realtime.Kinds())
		},
	},
}

// NewEventsCmd returns events command.
func NewEventsCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "events [listen | validate | kinds]",
		Short: "Realtime events",
		Long:  `Listen for and validate realtime storefront events.`,
	}

	for i := range cmdEvents {
		cmd.AddCommand(&cmdEvents[i])
	}

	return &cmd
}
