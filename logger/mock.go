// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"io"

	"github.com/go-kit/kit/log"
)

// NewMock returns a logger that discards everything it receives.
func NewMock() Logger {
	return &logger{
		kitLogger: log.NewNopLogger(),
		level:     Debug,
	}
}

// NewWriterMock returns a debug level logger writing JSON lines to out.
func NewWriterMock(out io.Writer) Logger {
	return &logger{
		kitLogger: log.NewJSONLogger(log.NewSyncWriter(out)),
		level:     Debug,
	}
}
