// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package storefront

import (
	"encoding/json"
	"net/http"
)

const (
	contentType = "application/health+json"
	svcStatus   = "pass"
	description = " service"
)

var (
	// Version represents the last client package release.
	Version = "0.1.0"

	// Commit represents the client git hash.
	Commit = "ffffffff"

	// BuildTime represents the client build time.
	BuildTime = "1970-01-01_00:00:00"
)

// HealthInfo contains version endpoint response.
type HealthInfo struct {
	// Status contains client status.
	Status string `json:"status"`

	// Version contains current client version.
	Version string `json:"version"`

	// Commit represents the git hash commit.
	Commit string `json:"commit"`

	// Description contains client description.
	Description string `json:"description"`

	// BuildTime contains client build time.
	BuildTime string `json:"build_time"`
}

// Health exposes an HTTP handler for retrieving client health.
func Health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		res := HealthInfo{
			Status:      svcStatus,
			Version:     Version,
			Commit:      Commit,
			Description: service + description,
			BuildTime:   BuildTime,
		}

		w.Header().Add("Content-Type", contentType)
		if err := json.NewEncoder(w).Encode(res); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
}
