// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	"github.com/MainfluxLabs/storefront/realtime"
)

type connectionRes struct {
	realtime.Status
}

func (res connectionRes) Code() int {
	return http.StatusOK
}

func (res connectionRes) Headers() map[string]string {
	return map[string]string{}
}

func (res connectionRes) Empty() bool {
	return false
}
