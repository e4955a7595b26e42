// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package nats

import (
	"strings"

	"github.com/MainfluxLabs/storefront/realtime"
)

// DefPrefix is the subject prefix of the venue broker.
const DefPrefix = "storefront"

const (
	eventsToken = "events"
	clientToken = "client"
	joinSubject = "session.join"
)

// EventSubject returns the subject carrying server events of kind.
func EventSubject(prefix string, kind realtime.EventKind) string {
	return prefix + "." + eventsToken + "." + string(kind)
}

// EventsSubject returns the wildcard subject of all server events.
func EventsSubject(prefix string) string {
	return prefix + "." + eventsToken + ".*"
}

// JoinSubject returns the request subject of the session handshake.
func JoinSubject(prefix string) string {
	return prefix + "." + joinSubject
}

// ClientSubject returns the subject of client frames other than the handshake.
func ClientSubject(prefix string, kind realtime.EventKind) string {
	if kind == realtime.EventJoinSession {
		return JoinSubject(prefix)
	}
	return prefix + "." + clientToken + "." + string(kind)
}

// KindOf extracts the event kind from a server event subject.
func KindOf(prefix, subject string) (realtime.EventKind, bool) {
	kind := strings.TrimPrefix(subject, prefix+"."+eventsToken+".")
	if kind == subject || kind == "" || strings.Contains(kind, ".") {
		return "", false
	}
	return realtime.EventKind(kind), true
}
