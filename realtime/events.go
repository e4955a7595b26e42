// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package realtime

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/mitchellh/mapstructure"
)

// Server events delivered to subscribers.
const (
	EventNewOrder          EventKind = "new-order"
	EventOrderUpdate       EventKind = "order-update"
	EventTableStatusUpdate EventKind = "table-status-update"
	EventReservationUpdate EventKind = "reservation-update"
	EventRatingUpdate      EventKind = "rating-update"
	EventOrderApproved     EventKind = "order-approved"
	EventNewNotification   EventKind = "new-notification"
)

// Handshake control messages. They are consumed by the manager and never
// reach subscribers.
const (
	EventJoinSession      EventKind = "join-session"
	EventJoinConfirmation EventKind = "join-confirmation"
	EventAuthError        EventKind = "auth-error"
)

// ErrDecode indicates a payload that does not fit the requested type.
var ErrDecode = errors.New("failed to decode event payload")

// schema maps each event kind to the dotted path of its required field.
var schema = map[EventKind]string{
	EventNewOrder:          "id",
	EventOrderUpdate:       "orderId",
	EventTableStatusUpdate: "tableId",
	EventReservationUpdate: "reservationId",
	EventRatingUpdate:      "rating.id",
	EventOrderApproved:     "orderId",
	EventNewNotification:   "id",
}

// EventKind names a message on the realtime channel.
type EventKind string

// Control reports whether the kind belongs to the handshake.
func (k EventKind) Control() bool {
	switch k {
	case EventJoinSession, EventJoinConfirmation, EventAuthError:
		return true
	default:
		return false
	}
}

// Kinds returns the server event kinds in a fixed order.
func Kinds() []EventKind {
	return []EventKind{
		EventNewOrder,
		EventOrderUpdate,
		EventTableStatusUpdate,
		EventReservationUpdate,
		EventRatingUpdate,
		EventOrderApproved,
		EventNewNotification,
	}
}

// Event is a validated server event. Data holds the full payload, including
// fields outside the schema.
type Event struct {
	Kind EventKind              `json:"event"`
	Data map[string]interface{} `json:"data"`
}

// Result is the outcome of validating a payload.
type Result struct {
	OK     bool
	Reason string
}

func accept() Result {
	return Result{OK: true}
}

func drop(format string, args ...interface{}) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks payload against the required field of kind. A field is
// present when it is not null and, for strings, not empty.
func Validate(kind EventKind, payload map[string]interface{}) Result {
	path, ok := schema[kind]
	if !ok {
		return drop("unknown event kind %q", kind)
	}
	if payload == nil {
		return drop("%s: missing payload", kind)
	}

	var cur interface{} = payload
	for _, field := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return drop("%s: missing %s", kind, path)
		}
		if cur, ok = obj[field]; !ok || cur == nil {
			return drop("%s: missing %s", kind, path)
		}
	}
	if s, ok := cur.(string); ok && s == "" {
		return drop("%s: empty %s", kind, path)
	}

	return accept()
}

// Parse decodes a raw frame payload into a generic object.
func Parse(raw json.RawMessage) (map[string]interface{}, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(ErrDecode, err)
	}

	return payload, nil
}

// Decode fills out from the event payload. Field names follow the json tags
// of the target and numeric ids are accepted where strings are expected.
func Decode[T any](ev Event, out *T) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return errors.Wrap(ErrDecode, err)
	}
	if err := dec.Decode(ev.Data); err != nil {
		return errors.Wrap(ErrDecode, err)
	}

	return nil
}

// Order is the payload of new-order.
type Order struct {
	ID        string  `json:"id"`
	OrderType string  `json:"orderType"`
	TableID   string  `json:"tableId"`
	Status    string  `json:"status"`
	Total     float64 `json:"total"`
	CreatedAt string  `json:"createdAt"`
}

// OrderUpdate is the payload of order-update.
type OrderUpdate struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// TableStatus is the payload of table-status-update.
type TableStatus struct {
	TableID string `json:"tableId"`
	Status  string `json:"status"`
}

// ReservationUpdate is the payload of reservation-update.
type ReservationUpdate struct {
	ReservationID string `json:"reservationId"`
	Status        string `json:"status"`
	PartySize     int    `json:"partySize"`
	Time          string `json:"time"`
}

// Rating is a customer rating of an order.
type Rating struct {
	ID      string `json:"id"`
	OrderID string `json:"orderId"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// RatingUpdate is the payload of rating-update.
type RatingUpdate struct {
	Rating Rating `json:"rating"`
}

// OrderApproval is the payload of order-approved.
type OrderApproval struct {
	OrderID    string `json:"orderId"`
	ApprovedBy string `json:"approvedBy"`
}

// Notification is the payload of new-notification.
type Notification struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// AuthError is the payload of auth-error.
type AuthError struct {
	Message string `json:"message"`
}
