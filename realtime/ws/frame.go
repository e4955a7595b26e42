// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package ws

import (
	"encoding/json"

	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/MainfluxLabs/storefront/realtime"
)

// ErrMalformedFrame indicates a frame that is not a JSON event envelope.
var ErrMalformedFrame = errors.New("malformed websocket frame")

// Frame is the JSON envelope of every websocket message.
type Frame struct {
	Event realtime.EventKind `json:"event"`
	Data  json.RawMessage    `json:"data,omitempty"`
}

// Encode builds the text frame carrying payload under kind.
func Encode(kind realtime.EventKind, payload interface{}) ([]byte, error) {
	f := Frame{Event: kind}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(ErrMalformedFrame, err)
		}
		f.Data = data
	}

	return json.Marshal(f)
}

// Decode parses a text frame.
func Decode(msg []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		return Frame{}, errors.Wrap(ErrMalformedFrame, err)
	}
	if f.Event == "" {
		return Frame{}, ErrMalformedFrame
	}

	return f, nil
}
