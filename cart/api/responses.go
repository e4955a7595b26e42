// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	"github.com/MainfluxLabs/storefront/cart"
)

var (
	_ apiRes = (*itemRes)(nil)
	_ apiRes = (*snapshotRes)(nil)
	_ apiRes = (*emptyRes)(nil)
)

type apiRes interface {
	Code() int
	Headers() map[string]string
	Empty() bool
}

type itemRes struct {
	cart.LineItem
}

func (res itemRes) Code() int {
	return http.StatusOK
}

func (res itemRes) Headers() map[string]string {
	return map[string]string{}
}

func (res itemRes) Empty() bool {
	return false
}

type snapshotRes struct {
	cart.Snapshot
}

func (res snapshotRes) Code() int {
	return http.StatusOK
}

func (res snapshotRes) Headers() map[string]string {
	return map[string]string{}
}

func (res snapshotRes) Empty() bool {
	return false
}

type emptyRes struct{}

func (res emptyRes) Code() int {
	return http.StatusNoContent
}

func (res emptyRes) Headers() map[string]string {
	return map[string]string{}
}

func (res emptyRes) Empty() bool {
	return true
}
