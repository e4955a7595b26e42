// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"os"

	"github.com/MainfluxLabs/storefront/identity"
	redisstore "github.com/MainfluxLabs/storefront/identity/redis"
	"github.com/MainfluxLabs/storefront/identity/sqlite"
	"github.com/MainfluxLabs/storefront/logger"
	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/MainfluxLabs/storefront/pkg/uuid"
	"github.com/MainfluxLabs/storefront/realtime"
	rtnats "github.com/MainfluxLabs/storefront/realtime/nats"
	"github.com/MainfluxLabs/storefront/realtime/ws"
	"github.com/go-redis/redis/v8"
)

// ErrUnknownBackend indicates an unsupported storage or transport name.
var ErrUnknownBackend = errors.New("unknown backend")

const busyTimeoutMS = 5000

var cfg = DefaultConfig()

// SetConfig sets the config used by all commands.
func SetConfig(c Config) {
	cfg = c
}

func newLogger() (logger.Logger, error) {
	return logger.New(os.Stderr, cfg.LogLevel)
}

// newIdentity opens the configured storage and builds the identity store
// on top of it. The returned function releases the storage.
func newIdentity(l logger.Logger) (identity.Service, func(), error) {
	ic := cfg.Identity
	switch ic.Storage {
	case "sqlite":
		db, err := sqlite.Connect(sqlite.Config{Path: ic.SQLitePath, BusyTimeout: busyTimeoutMS})
		if err != nil {
			return nil, nil, err
		}
		return identity.New(sqlite.NewStorage(db), uuid.New(), l), func() { db.Close() }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     ic.RedisURL,
			Password: ic.RedisPass,
			DB:       ic.RedisDB,
		})
		return identity.New(redisstore.NewStorage(client, ic.Profile), uuid.New(), l), func() { client.Close() }, nil
	case "memory":
		return identity.New(identity.NewMemoryStorage(), uuid.New(), l), func() {}, nil
	default:
		return nil, nil, errors.Wrap(ErrUnknownBackend, errors.New(ic.Storage))
	}
}

func newManager(ids identity.Service, l logger.Logger) (*realtime.Manager, error) {
	rc := cfg.Realtime
	var factory realtime.TransportFactory
	switch rc.Transport {
	case "ws":
		factory = ws.NewFactory(ws.Config{URL: rc.WSURL}, ids, l)
	case "nats":
		factory = rtnats.NewFactory(rtnats.Config{URL: rc.NATSURL, Prefix: rc.NATSPrefix}, ids, l)
	default:
		return nil, errors.Wrap(ErrUnknownBackend, errors.New(rc.Transport))
	}

	return realtime.NewManager(ids, factory, l, realtime.Options{ConflateJoin: rc.ConflateJoin}), nil
}
