// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package errors_test

import (
	"fmt"
	"testing"

	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var (
	err0 = errors.New("0")
	err1 = errors.New("1")
	err2 = errors.New("2")
	nat  = fmt.Errorf("native error")
)

func TestContains(t *testing.T) {
	cases := []struct {
		desc      string
		container error
		contained error
		contains  bool
	}{
		{
			desc:      "nil contains nil",
			container: nil,
			contained: nil,
			contains:  true,
		},
		{
			desc:      "nil contains non-nil",
			container: nil,
			contained: err0,
			contains:  false,
		},
		{
			desc:      "error contains itself",
			container: err0,
			contained: err0,
			contains:  true,
		},
		{
			desc:      "wrapped error contains wrapper",
			container: errors.Wrap(err1, err0),
			contained: err1,
			contains:  true,
		},
		{
			desc:      "wrapped error contains wrapped",
			container: errors.Wrap(err1, err0),
			contained: err0,
			contains:  true,
		},
		{
			desc:      "multi-level wrap contains innermost",
			container: errors.Wrap(err2, errors.Wrap(err1, err0)),
			contained: err0,
			contains:  true,
		},
		{
			desc:      "wrapped native error",
			container: errors.Wrap(err1, nat),
			contained: nat,
			contains:  true,
		},
		{
			desc:      "unrelated error",
			container: errors.Wrap(err1, err0),
			contained: err2,
			contains:  false,
		},
	}

	for _, tc := range cases {
		contains := errors.Contains(tc.container, tc.contained)
		assert.Equal(t, tc.contains, contains, fmt.Sprintf("%s: expected %v got %v\n", tc.desc, tc.contains, contains))
	}
}

func TestWrap(t *testing.T) {
	cases := []struct {
		desc    string
		wrapper error
		wrapped error
		msg     string
	}{
		{
			desc:    "wrap with nil wrapped",
			wrapper: err1,
			wrapped: nil,
			msg:     "1",
		},
		{
			desc:    "wrap custom error",
			wrapper: err1,
			wrapped: err0,
			msg:     "1 : 0",
		},
		{
			desc:    "wrap native error with custom",
			wrapper: err1,
			wrapped: nat,
			msg:     "1 : native error",
		},
		{
			desc:    "wrap with native wrapper",
			wrapper: nat,
			wrapped: err0,
			msg:     "native error : 0",
		},
	}

	for _, tc := range cases {
		err := errors.Wrap(tc.wrapper, tc.wrapped)
		assert.Equal(t, tc.msg, err.Error(), fmt.Sprintf("%s: expected %s got %s\n", tc.desc, tc.msg, err.Error()))
	}
}
