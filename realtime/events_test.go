// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package realtime_test

import (
	"fmt"
	"testing"

	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/MainfluxLabs/storefront/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		desc    string
		kind    realtime.EventKind
		payload map[string]interface{}
		ok      bool
	}{
		{
			desc:    "valid new order",
			kind:    realtime.EventNewOrder,
			payload: map[string]interface{}{"id": "o1", "total": 12.5},
			ok:      true,
		},
		{
			desc:    "new order with numeric id",
			kind:    realtime.EventNewOrder,
			payload: map[string]interface{}{"id": float64(7)},
			ok:      true,
		},
		{
			desc:    "new order without id",
			kind:    realtime.EventNewOrder,
			payload: map[string]interface{}{"total": 12.5},
			ok:      false,
		},
		{
			desc:    "new order with null id",
			kind:    realtime.EventNewOrder,
			payload: map[string]interface{}{"id": nil},
			ok:      false,
		},
		{
			desc:    "new order with empty id",
			kind:    realtime.EventNewOrder,
			payload: map[string]interface{}{"id": ""},
			ok:      false,
		},
		{
			desc:    "valid order update",
			kind:    realtime.EventOrderUpdate,
			payload: map[string]interface{}{"orderId": "o1", "status": "ready"},
			ok:      true,
		},
		{
			desc:    "order update carrying id instead of order id",
			kind:    realtime.EventOrderUpdate,
			payload: map[string]interface{}{"id": "o1"},
			ok:      false,
		},
		{
			desc:    "valid table status update",
			kind:    realtime.EventTableStatusUpdate,
			payload: map[string]interface{}{"tableId": "t4"},
			ok:      true,
		},
		{
			desc:    "table status update without table id",
			kind:    realtime.EventTableStatusUpdate,
			payload: map[string]interface{}{"status": "free"},
			ok:      false,
		},
		{
			desc:    "valid reservation update",
			kind:    realtime.EventReservationUpdate,
			payload: map[string]interface{}{"reservationId": "r1"},
			ok:      true,
		},
		{
			desc:    "reservation update without reservation id",
			kind:    realtime.EventReservationUpdate,
			payload: map[string]interface{}{},
			ok:      false,
		},
		{
			desc:    "valid rating update",
			kind:    realtime.EventRatingUpdate,
			payload: map[string]interface{}{"rating": map[string]interface{}{"id": "rt1", "score": float64(5)}},
			ok:      true,
		},
		{
			desc:    "rating update without nested id",
			kind:    realtime.EventRatingUpdate,
			payload: map[string]interface{}{"rating": map[string]interface{}{"score": float64(5)}},
			ok:      false,
		},
		{
			desc:    "rating update with scalar rating",
			kind:    realtime.EventRatingUpdate,
			payload: map[string]interface{}{"rating": "rt1"},
			ok:      false,
		},
		{
			desc:    "rating update with top level id only",
			kind:    realtime.EventRatingUpdate,
			payload: map[string]interface{}{"id": "rt1"},
			ok:      false,
		},
		{
			desc:    "valid order approval",
			kind:    realtime.EventOrderApproved,
			payload: map[string]interface{}{"orderId": "o1"},
			ok:      true,
		},
		{
			desc:    "order approval without order id",
			kind:    realtime.EventOrderApproved,
			payload: map[string]interface{}{"approvedBy": "staff"},
			ok:      false,
		},
		{
			desc:    "valid notification",
			kind:    realtime.EventNewNotification,
			payload: map[string]interface{}{"id": "n1", "message": "hi"},
			ok:      true,
		},
		{
			desc:    "notification without id",
			kind:    realtime.EventNewNotification,
			payload: map[string]interface{}{"message": "hi"},
			ok:      false,
		},
		{
			desc:    "missing payload",
			kind:    realtime.EventNewNotification,
			payload: nil,
			ok:      false,
		},
		{
			desc:    "unknown kind",
			kind:    realtime.EventKind("menu-update"),
			payload: map[string]interface{}{"id": "m1"},
			ok:      false,
		},
		{
			desc:    "control kind",
			kind:    realtime.EventJoinConfirmation,
			payload: map[string]interface{}{"id": "j1"},
			ok:      false,
		},
	}

	for _, tc := range cases {
		res := realtime.Validate(tc.kind, tc.payload)
		assert.Equal(t, tc.ok, res.OK, fmt.Sprintf("%s: expected %t got %t (%s)\n", tc.desc, tc.ok, res.OK, res.Reason))
		if !tc.ok {
			assert.NotEmpty(t, res.Reason, fmt.Sprintf("%s: expected drop reason\n", tc.desc))
		}
	}
}

func TestKinds(t *testing.T) {
	kinds := realtime.Kinds()
	assert.Len(t, kinds, 7, fmt.Sprintf("expected 7 event kinds got %d\n", len(kinds)))
	for _, k := range kinds {
		assert.False(t, k.Control(), fmt.Sprintf("%s: expected server event kind\n", k))
	}
	for _, k := range []realtime.EventKind{realtime.EventJoinSession, realtime.EventJoinConfirmation, realtime.EventAuthError} {
		assert.True(t, k.Control(), fmt.Sprintf("%s: expected control kind\n", k))
	}
}

func TestDecode(t *testing.T) {
	order := realtime.Event{
		Kind: realtime.EventNewOrder,
		Data: map[string]interface{}{"id": float64(7), "tableId": "t1", "total": 18.5, "extra": true},
	}
	var o realtime.Order
	err := realtime.Decode(order, &o)
	require.Nil(t, err, fmt.Sprintf("decode order: unexpected error %s", err))
	assert.Equal(t, realtime.Order{ID: "7", TableID: "t1", Total: 18.5}, o, "decode order: unexpected value")
	assert.Equal(t, true, order.Data["extra"], "decode order: expected unknown fields to pass through")

	rating := realtime.Event{
		Kind: realtime.EventRatingUpdate,
		Data: map[string]interface{}{"rating": map[string]interface{}{"id": "rt1", "orderId": "o1", "score": float64(4)}},
	}
	var r realtime.RatingUpdate
	err = realtime.Decode(rating, &r)
	require.Nil(t, err, fmt.Sprintf("decode rating: unexpected error %s", err))
	assert.Equal(t, realtime.Rating{ID: "rt1", OrderID: "o1", Score: 4}, r.Rating, "decode rating: unexpected value")

	bad := realtime.Event{
		Kind: realtime.EventReservationUpdate,
		Data: map[string]interface{}{"reservationId": "r1", "partySize": "many"},
	}
	var ru realtime.ReservationUpdate
	err = realtime.Decode(bad, &ru)
	assert.True(t, errors.Contains(err, realtime.ErrDecode), fmt.Sprintf("decode malformed: expected %s got %s\n", realtime.ErrDecode, err))
}

func TestParse(t *testing.T) {
	payload, err := realtime.Parse([]byte(`{"id":"n1"}`))
	require.Nil(t, err, fmt.Sprintf("parse: unexpected error %s", err))
	assert.Equal(t, "n1", payload["id"], "parse: unexpected payload")

	_, err = realtime.Parse([]byte(`[1,2`))
	assert.True(t, errors.Contains(err, realtime.ErrDecode), fmt.Sprintf("parse malformed: expected %s got %s\n", realtime.ErrDecode, err))
}
