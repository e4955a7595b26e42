// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/MainfluxLabs/storefront"
	"github.com/MainfluxLabs/storefront/cart"
	cartapi "github.com/MainfluxLabs/storefront/cart/api"
	"github.com/MainfluxLabs/storefront/identity"
	redisstore "github.com/MainfluxLabs/storefront/identity/redis"
	"github.com/MainfluxLabs/storefront/identity/sqlite"
	"github.com/MainfluxLabs/storefront/logger"
	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/MainfluxLabs/storefront/pkg/ulid"
	"github.com/MainfluxLabs/storefront/pkg/uuid"
	"github.com/MainfluxLabs/storefront/realtime"
	rtapi "github.com/MainfluxLabs/storefront/realtime/api"
	rtnats "github.com/MainfluxLabs/storefront/realtime/nats"
	"github.com/MainfluxLabs/storefront/realtime/ws"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/go-redis/redis/v8"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const (
	stopWaitTime = 5 * time.Second

	storageSQLite = "sqlite"
	storageRedis  = "redis"
	storageMemory = "memory"

	transportWS   = "ws"
	transportNATS = "nats"

	defEnvFile      = ".env"
	defLogLevel     = "error"
	defPort         = "8200"
	defStorage      = storageSQLite
	defSQLitePath   = "storefront.db"
	defSQLiteBusy   = "5000"
	defRedisURL     = "localhost:6379"
	defRedisPass    = ""
	defRedisDB      = "0"
	defProfile      = "default"
	defTransport    = transportWS
	defWSURL        = "ws://localhost:8080/realtime"
	defNATSURL      = "nats://localhost:4222"
	defNATSPrefix   = rtnats.DefPrefix
	defReconnectMin = "500ms"
	defReconnectMax = "30s"
	defConflateJoin = "false"

	envEnvFile      = "SF_ENV_FILE"
	envLogLevel     = "SF_LOG_LEVEL"
	envPort         = "SF_HTTP_PORT"
	envStorage      = "SF_IDENTITY_STORAGE"
	envSQLitePath   = "SF_SQLITE_PATH"
	envSQLiteBusy   = "SF_SQLITE_BUSY_TIMEOUT_MS"
	envRedisURL     = "SF_REDIS_URL"
	envRedisPass    = "SF_REDIS_PASS"
	envRedisDB      = "SF_REDIS_DB"
	envProfile      = "SF_PROFILE"
	envTransport    = "SF_REALTIME_TRANSPORT"
	envWSURL        = "SF_WS_URL"
	envNATSURL      = "SF_NATS_URL"
	envNATSPrefix   = "SF_NATS_PREFIX"
	envReconnectMin = "SF_RECONNECT_MIN_INTERVAL"
	envReconnectMax = "SF_RECONNECT_MAX_INTERVAL"
	envConflateJoin = "SF_CONFLATE_JOIN"
)

type config struct {
	logLevel     string
	port         string
	storage      string
	sqlite       sqlite.Config
	redisURL     string
	redisPass    string
	redisDB      int
	profile      string
	transport    string
	wsURL        string
	natsURL      string
	natsPrefix   string
	reconnectMin time.Duration
	reconnectMax time.Duration
	conflateJoin bool
}

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	logger, err := logger.New(os.Stdout, cfg.logLevel)
	if err != nil {
		log.Fatalf(err.Error())
	}

	storage, closeStorage, err := newStorage(cfg)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to set up %s identity storage: %s", cfg.storage, err))
		os.Exit(1)
	}
	defer closeStorage()

	ids := identity.New(storage, uuid.New(), logger)
	if _, err := ids.GetOrCreateDeviceID(ctx); err != nil {
		logger.Error(fmt.Sprintf("Failed to resolve device id: %s", err))
		os.Exit(1)
	}

	rt := newRealtime(cfg, ids, logger)
	teardown := rt.Initialize(ctx, eventLoggers(logger))
	defer teardown()

	carts := newCart(logger)

	g.Go(func() error {
		return startHTTPServer(ctx, cfg, rt, carts, logger)
	})

	g.Go(func() error {
		if sig := errors.SignalHandler(ctx); sig != nil {
			cancel()
			logger.Info(fmt.Sprintf("Storefront client shutdown by signal: %s", sig))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("Storefront client terminated: %s", err))
	}
}

func loadConfig() config {
	if err := storefront.LoadEnvFile(storefront.Env(envEnvFile, defEnvFile)); err != nil {
		log.Fatalf("Failed to load %s: %s", envEnvFile, err)
	}

	busy, err := strconv.Atoi(storefront.Env(envSQLiteBusy, defSQLiteBusy))
	if err != nil {
		log.Fatalf("Invalid value passed for %s\n", envSQLiteBusy)
	}

	redisDB, err := strconv.Atoi(storefront.Env(envRedisDB, defRedisDB))
	if err != nil {
		log.Fatalf("Invalid value passed for %s\n", envRedisDB)
	}

	reconnectMin, err := time.ParseDuration(storefront.Env(envReconnectMin, defReconnectMin))
	if err != nil {
		log.Fatalf("Invalid %s value: %s", envReconnectMin, err.Error())
	}

	reconnectMax, err := time.ParseDuration(storefront.Env(envReconnectMax, defReconnectMax))
	if err != nil {
		log.Fatalf("Invalid %s value: %s", envReconnectMax, err.Error())
	}

	conflateJoin, err := strconv.ParseBool(storefront.Env(envConflateJoin, defConflateJoin))
	if err != nil {
		log.Fatalf("Invalid value passed for %s\n", envConflateJoin)
	}

	return config{
		logLevel: storefront.Env(envLogLevel, defLogLevel),
		port:     storefront.Env(envPort, defPort),
		storage:  storefront.Env(envStorage, defStorage),
		sqlite: sqlite.Config{
			Path:        storefront.Env(envSQLitePath, defSQLitePath),
			BusyTimeout: busy,
		},
		redisURL:     storefront.Env(envRedisURL, defRedisURL),
		redisPass:    storefront.Env(envRedisPass, defRedisPass),
		redisDB:      redisDB,
		profile:      storefront.Env(envProfile, defProfile),
		transport:    storefront.Env(envTransport, defTransport),
		wsURL:        storefront.Env(envWSURL, defWSURL),
		natsURL:      storefront.Env(envNATSURL, defNATSURL),
		natsPrefix:   storefront.Env(envNATSPrefix, defNATSPrefix),
		reconnectMin: reconnectMin,
		reconnectMax: reconnectMax,
		conflateJoin: conflateJoin,
	}
}

func newStorage(cfg config) (identity.Storage, func(), error) {
	switch cfg.storage {
	case storageSQLite:
		db, err := sqlite.Connect(cfg.sqlite)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewStorage(db), func() { db.Close() }, nil
	case storageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.redisURL,
			Password: cfg.redisPass,
			DB:       cfg.redisDB,
		})
		return redisstore.NewStorage(client, cfg.profile), func() { client.Close() }, nil
	case storageMemory:
		return identity.NewMemoryStorage(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage %q", cfg.storage)
	}
}

func newRealtime(cfg config, ids identity.Service, logger logger.Logger) realtime.Service {
	var factory realtime.TransportFactory
	switch cfg.transport {
	case transportNATS:
		factory = rtnats.NewFactory(rtnats.Config{
			URL:             cfg.natsURL,
			Prefix:          cfg.natsPrefix,
			InitialInterval: cfg.reconnectMin,
			MaxInterval:     cfg.reconnectMax,
		}, ids, logger)
	default:
		factory = ws.NewFactory(ws.Config{
			URL:             cfg.wsURL,
			InitialInterval: cfg.reconnectMin,
			MaxInterval:     cfg.reconnectMax,
		}, ids, logger)
	}

	m := realtime.NewManager(ids, factory, logger, realtime.Options{ConflateJoin: cfg.conflateJoin})
	m.Observe(func(st realtime.Status) {
		logger.Debug(fmt.Sprintf("Realtime connection %s, connected %t", st.State, st.Connected))
	})

	var svc realtime.Service = m
	svc = rtapi.LoggingMiddleware(svc, logger)
	svc = rtapi.MetricsMiddleware(
		svc,
		kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "realtime",
			Name:      "request_count",
			Help:      "Number of requests received",
		}, []string{"method"}),
		kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "storefront",
			Subsystem: "realtime",
			Name:      "request_latency_microsecond",
			Help:      "Total duration of requests in microseconds",
		}, []string{"method"}),
	)

	return svc
}

func newCart(logger logger.Logger) cart.Service {
	svc := cart.New(ulid.New())
	svc = cartapi.LoggingMiddleware(svc, logger)
	svc = cartapi.MetricsMiddleware(
		svc,
		kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "request_count",
			Help:      "Number of requests received",
		}, []string{"method"}),
		kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "request_latency_microsecond",
			Help:      "Total duration of requests in microseconds",
		}, []string{"method"}),
	)

	return svc
}

func eventLoggers(logger logger.Logger) map[realtime.EventKind][]realtime.Handler {
	handlers := make(map[realtime.EventKind][]realtime.Handler)
	for _, kind := range realtime.Kinds() {
		kind := kind
		handlers[kind] = []realtime.Handler{func(ev realtime.Event) error {
			logger.Info(fmt.Sprintf("Received %s event with %d fields", kind, len(ev.Data)))
			return nil
		}}
	}

	return handlers
}

func startHTTPServer(ctx context.Context, cfg config, rt realtime.Service, carts cart.Service, l logger.Logger) error {
	p := fmt.Sprintf(":%s", cfg.port)
	errCh := make(chan error, 2)

	ch := cartapi.MakeHandler(carts, l)
	mux := http.NewServeMux()
	mux.Handle("/cart", ch)
	mux.Handle("/cart/", ch)
	mux.Handle("/", rtapi.MakeHandler(rt, l))
	server := &http.Server{Addr: p, Handler: mux}
	l.Info(fmt.Sprintf("Storefront client started, exposed port %s", cfg.port))

	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), stopWaitTime)
		defer cancelShutdown()
		if err := server.Shutdown(ctxShutdown); err != nil {
			l.Error(fmt.Sprintf("Storefront client error occurred during shutdown at %s: %s", p, err))
			return fmt.Errorf("storefront client error occurred during shutdown at %s: %w", p, err)
		}
		l.Info(fmt.Sprintf("Storefront client shutdown at %s", p))
		return nil
	case err := <-errCh:
		return err
	}
}
