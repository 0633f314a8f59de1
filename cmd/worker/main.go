package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/repairlab/repairhub/internal/config"
	"github.com/repairlab/repairhub/internal/db"
	"github.com/repairlab/repairhub/internal/notifications"
	"github.com/repairlab/repairhub/internal/observability"
	"github.com/repairlab/repairhub/internal/queue/redisclient"
	"github.com/repairlab/repairhub/internal/queue/worker"
	"github.com/repairlab/repairhub/internal/repo/postgres"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	rdb := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer rdb.Close()

	var waiter worker.Waiter

	if err := rdb.Ping(ctx); err != nil {
		log.Warn("redis unreachable, polling only", "err", err)
	} else {
		waiter = rdb
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	jobsRepo := postgres.NewJobsRepo(pool, prom)
	usersRepo := postgres.NewUsersRepo(pool, prom)

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(),
		notifications.ProtectedNotifierConfig{},
	)

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		WorkerID:     workerID,
		PollInterval: 2 * time.Second,
		LockTTL:      60 * time.Second,
	}, jobsRepo, usersRepo, notifier, waiter, prom, log)

	log.Info("worker has started", "worker_id", workerID)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	log.Info("worker shutdown complete")
}
