package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/repairlab/repairhub/internal/auth"
	"github.com/repairlab/repairhub/internal/config"
	"github.com/repairlab/repairhub/internal/db"
	httpx "github.com/repairlab/repairhub/internal/http"
	"github.com/repairlab/repairhub/internal/observability"
	"github.com/repairlab/repairhub/internal/queue/redisclient"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	// tracing is best effort; the API runs fine without a collector
	shutdownTracer, err := observability.InitTracer(context.Background(), "repairhub-api", cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracer init failed", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	if err := db.EnsureEmployeeUser(context.Background(), pool, cfg); err != nil {
		log.Error("seed employee failed", "err", err)
		os.Exit(1)
	}

	rdb := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer rdb.Close()

	if err := rdb.Ping(context.Background()); err != nil {
		// jobs still land in postgres; only the wake-up channel is gone
		log.Warn("redis unreachable, worker wake-ups disabled", "err", err)
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTAccessTTL())

	router := httpx.NewRouter(log, pool, rdb, tokens, cfg, prom, reg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

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

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}

		_ = shutdownTracer(ctx)
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
