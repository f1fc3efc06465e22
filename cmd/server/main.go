package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"storefront/internal/account"
	"storefront/internal/catalog"
	"storefront/internal/platform/config"
	"storefront/internal/platform/httpserver"
	"storefront/internal/platform/kafka"
	"storefront/internal/platform/logger"
	"storefront/internal/platform/metrics"
	"storefront/internal/platform/postgres"
	platformredis "storefront/internal/platform/redis"
	"storefront/internal/presence"
	"storefront/internal/purchase"
	"storefront/internal/realtime"
	"storefront/internal/realtime/journal"
	"storefront/internal/token"
	httpapi "storefront/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal feature packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	db, err := postgres.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	group, runCtx := errgroup.WithContext(ctx)

	hubOpts := []realtime.Option{realtime.WithSendBuffer(cfg.Realtime.SendBuffer)}

	kafkaClient, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		log.Error("kafka connection failed", "error", err)
		os.Exit(1)
	}
	if kafkaClient != nil {
		defer kafkaClient.Close()
		j := journal.New(log, m, kafkaClient, 256)
		group.Go(func() error { return ignoreCancel(j.Run(runCtx)) })
		hubOpts = append(hubOpts, realtime.WithJournal(j))
		log.Info("event journal enabled", "topic", cfg.Kafka.Topic)
	}

	hub := realtime.NewHub(log, m, hubOpts...)
	group.Go(func() error { return ignoreCancel(hub.Run(runCtx)) })

	presenceBackend := presence.New(nil, time.Minute)
	var healthProbe func(context.Context) error
	if redisClient != nil {
		presenceBackend = presence.New(redisClient.Client, time.Minute)
		healthProbe = redisClient.Health
		log.Info("using redis presence backend")
	}

	var (
		catalogStore  catalog.Store
		accountStore  account.Store
		purchaseStore purchase.Store
	)
	if db != nil {
		cs := catalog.NewPostgresStore(db)
		as := account.NewPostgresStore(db)
		ps := purchase.NewPostgresStore(db)
		for _, ensure := range []func(context.Context) error{cs.EnsureSchema, as.EnsureSchema, ps.EnsureSchema} {
			if err := ensure(ctx); err != nil {
				log.Error("schema migration failed", "error", err)
				os.Exit(1)
			}
		}
		catalogStore, accountStore, purchaseStore = cs, as, ps
		log.Info("using postgres stores")
	} else {
		catalogStore = catalog.NewInMemoryStore()
		accountStore = account.NewInMemoryStore()
		purchaseStore = purchase.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	tokens := token.NewService(cfg.Server.JWTSigningKey, "storefront", "storefront-api")

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:    log,
		Metrics:   m,
		Catalog:   catalog.NewHandler(catalog.NewService(catalogStore, hub, log, m), log),
		Account:   account.NewHandler(account.NewService(accountStore, log), log),
		Purchase:  purchase.NewHandler(purchase.NewService(purchaseStore, hub, log, m), log),
		Websocket: realtime.NewHandler(hub, log, realtime.WithPresence(presenceBackend)),
		Presence:  presenceBackend,
		Validator: tokens,
		Health:    healthProbe,
	})

	srv := httpserver.New(cfg.Server, router)

	group.Go(func() error {
		log.Info("starting storefront server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// ignoreCancel maps ordinary shutdown cancellation to a clean exit so the
// group only surfaces real failures.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
