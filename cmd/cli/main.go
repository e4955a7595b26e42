// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log"

	"github.com/MainfluxLabs/storefront/cli"
	"github.com/spf13/cobra"
)

const defConfigPath = "storefront.toml"

func main() {
	var (
		configPath string
		logLevel   string
		storage    string
		transport  string
	)

	// Root
	var rootCmd = &cobra.Command{
		Use: "storefront-cli",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := cli.ReadConfig(configPath)
			if err != nil {
				log.Fatal(err)
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if storage != "" {
				cfg.Identity.Storage = storage
			}
			if transport != "" {
				cfg.Realtime.Transport = transport
			}
			cli.SetConfig(cfg)
		},
	}

	// Root Commands
	rootCmd.AddCommand(cli.NewIdentityCmd())
	rootCmd.AddCommand(cli.NewEventsCmd())
	rootCmd.AddCommand(cli.NewCartCmd())
	rootCmd.AddCommand(cli.NewConfigCmd())

	// Root Flags
	rootCmd.PersistentFlags().StringVarP(
		&configPath,
		"config",
		"c",
		defConfigPath,
		"Config file path",
	)

	rootCmd.PersistentFlags().StringVarP(
		&logLevel,
		"log-level",
		"l",
		"",
		"Log level overriding the config",
	)

	rootCmd.PersistentFlags().StringVarP(
		&storage,
		"storage",
		"s",
		"",
		"Identity storage (sqlite, redis, memory)",
	)

	rootCmd.PersistentFlags().StringVarP(
		&transport,
		"transport",
		"t",
		"",
		"Realtime transport (ws, nats)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&cli.RawOutput,
		"raw",
		"r",
		cli.RawOutput,
		"Enables raw output mode for easier parsing of output",
	)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
