package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/repairlab/repairhub/internal/domain/job"
	"github.com/repairlab/repairhub/internal/domain/user"
	"github.com/repairlab/repairhub/internal/notifications"
	"github.com/repairlab/repairhub/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

type UsersReader interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

// Waiter blocks for a wake-up signal. A zero return value means the timeout
// passed without a signal.
type Waiter interface {
	PopWait(ctx context.Context, timeout time.Duration) (string, error)
}

type Config struct {
	WorkerID      string
	PollInterval  time.Duration
	LockTTL       time.Duration
	ShutdownGrace time.Duration
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	users    UsersReader
	notifier notifications.Notifier
	waiter   Waiter
	prom     *observability.Prom
	log      *slog.Logger
}

func New(cfg Config, repo JobsRepository, users UsersReader, notifier notifications.Notifier, waiter Waiter, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 60 * time.Second
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		users:    users,
		notifier: notifier,
		waiter:   waiter,
		prom:     prom,
		log:      log,
	}
}

// Run drains jobs until ctx is cancelled. Between jobs it blocks on the redis
// wake list and falls back to the poll ticker; the DB stays the source of
// truth either way, redis just shortens the latency.
func (w *Worker) Run(ctx context.Context) error {
	staleTicker := time.NewTicker(w.cfg.LockTTL)
	defer staleTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			return nil

		case <-staleTicker.C:
			n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)
			if err != nil {
				w.log.Error("requeue stale failed", "error", err)
			} else if n > 0 {
				w.log.Warn("requeued stale jobs", "count", n)
			}

		default:
			processed, err := w.ProcessOne(ctx)

			if err != nil {
				w.log.Error("process job failed", "error", err)
			}

			if processed {
				// drain without waiting while there is work
				continue
			}

			w.wait(ctx)
		}
	}
}

func (w *Worker) wait(ctx context.Context) {
	if w.waiter != nil {
		_, err := w.waiter.PopWait(ctx, w.cfg.PollInterval)
		if err != nil && ctx.Err() == nil {
			w.log.Warn("wake wait failed, falling back to sleep", "error", err)
		} else {
			return
		}
	}

	select {
	case <-ctx.Done():
	case <-time.After(w.cfg.PollInterval):
	}
}
