// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

// Package storefront holds the helpers shared by the storefront client
// binaries.
package storefront

import (
	"os"

	"github.com/subosito/gotenv"
)

// Env reads specified environment variable. If no value has been found,
// fallback is returned.
func Env(key string, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return fallback
}

// LoadEnvFile loads variables from the given dotenv files into the process
// environment without overriding already set values. Missing files are skipped.
func LoadEnvFile(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := gotenv.Load(f); err != nil {
			return err
		}
	}

	return nil
}
