// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package errors

// ErrStorage indicates failure occurred while reading or writing client state.
var ErrStorage = New("failed to access client storage")
