// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"os"

	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
)

// ErrConfig indicates an unreadable or malformed config file.
var ErrConfig = errors.New("invalid CLI config")

// Config holds what the CLI needs to reach the client state and the
// realtime service.
type Config struct {
	LogLevel string         `toml:"log_level" json:"log_level"`
	Identity IdentityConfig `toml:"identity" json:"identity"`
	Realtime RealtimeConfig `toml:"realtime" json:"realtime"`
}

// IdentityConfig selects the identity storage.
type IdentityConfig struct {
	Storage    string `toml:"storage" json:"storage"`
	SQLitePath string `toml:"sqlite_path" json:"sqlite_path"`
	RedisURL   string `toml:"redis_url" json:"redis_url"`
	RedisPass  string `toml:"redis_pass" json:"-"`
	RedisDB    int    `toml:"redis_db" json:"redis_db"`
	Profile    string `toml:"profile" json:"profile"`
}

// RealtimeConfig selects the realtime transport.
type RealtimeConfig struct {
	Transport    string `toml:"transport" json:"transport"`
	WSURL        string `toml:"ws_url" json:"ws_url"`
	NATSURL      string `toml:"nats_url" json:"nats_url"`
	NATSPrefix   string `toml:"nats_prefix" json:"nats_prefix"`
	ConflateJoin bool   `toml:"conflate_join" json:"conflate_join"`
}

// DefaultConfig returns the config used when no file is given.
func DefaultConfig() Config {
	return Config{
		LogLevel: "error",
		Identity: IdentityConfig{
			Storage:    "sqlite",
			SQLitePath: "storefront.db",
			RedisURL:   "localhost:6379",
			Profile:    "default",
		},
		Realtime: RealtimeConfig{
			Transport:  "ws",
			WSURL:      "ws://localhost:8080/realtime",
			NATSURL:    "nats://localhost:4222",
			NATSPrefix: "storefront",
		},
	}
}

// ReadConfig reads a TOML config file over the defaults. A missing file
// yields the defaults.
func ReadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	tree, err := toml.LoadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(ErrConfig, err)
	}
	if err := tree.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(ErrConfig, err)
	}

	return cfg, nil
}

// WriteConfig stores cfg as TOML at path.
func WriteConfig(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(ErrConfig, err)
	}

	return os.WriteFile(path, data, 0600)
}

var cmdConfig = []cobra.Command{
	{
		Use:   "init <path>",
		Short: "Write default config",
		Long:  `Writes the default CLI config as TOML to the given path.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsage(cmd.Use)
				return
			}

			if err := WriteConfig(args[0], DefaultConfig()); err != nil {
				logError(err)
				return
			}

			logOK()
		},
	},
	{
		Use:   "show",
		Short: "Show config",
		Long:  `Shows the config in effect.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsage(cmd.Use)
				return
			}

			logJSON(cfg)
		},
	},
}

// NewConfigCmd returns config command.
func NewConfigCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "config [init | show]",
		Short: "CLI config",
		Long:  `Manage the CLI config file.`,
	}

	for i := range cmdConfig {
		cmd.AddCommand(&cmdConfig[i])
	}

	return &cmd
}
