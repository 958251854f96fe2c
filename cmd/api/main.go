package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farhan-labs/mobicash/internal/config"
	"github.com/farhan-labs/mobicash/internal/db"
	httpx "github.com/farhan-labs/mobicash/internal/http"
	"github.com/farhan-labs/mobicash/internal/observability"
	"github.com/farhan-labs/mobicash/internal/redisclient"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	// tracing (optional; off when no endpoint configured)
	var shutdownTracer func(context.Context) error

	if cfg.OtelEndpoint != "" {
		var err error
		shutdownTracer, err = observability.InitTracer(context.Background(), "mobicash", cfg.OtelEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
	}

	// the storage client is acquired once here and released on shutdown;
	// nothing else owns a connection
	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	startupCtx, cancelStartup := config.WithTimeout(10 * time.Second)

	if err := db.EnsureSchema(startupCtx, pool); err != nil {
		cancelStartup()
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}

	if err := db.EnsureAdminUser(startupCtx, pool, cfg); err != nil {
		cancelStartup()
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	cancelStartup()

	// redis backs the rate limiter; the service runs without it
	var rdb *redisclient.Client

	if cfg.RedisAddr != "" {
		rdb = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		defer func() { _ = rdb.Close() }()

		pingCtx, cancelPing := config.WithTimeout(2 * time.Second)

		if err := rdb.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, falling back to in-memory rate limiting", "err", err)
			rdb = nil
		}

		cancelPing()
	}

	// set up routers with the log
	router := httpx.NewRouter(log, pool, rdb, cfg)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctxTimeOut := 10 * time.Second

		ctx, cancel := config.WithTimeout(ctxTimeOut)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}

		if shutdownTracer != nil {
			if err := shutdownTracer(ctx); err != nil {
				log.Error("tracer shutdown failed", "err", err)
			}
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
