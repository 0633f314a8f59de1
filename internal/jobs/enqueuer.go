package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/repairlab/repairhub/internal/domain/job"
)

type JobCreator interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

type Waker interface {
	Wake(ctx context.Context, jobID string) error
}

// Enqueuer persists a job and then nudges the worker over redis so it picks
// the job up before the next poll tick. The DB row is the source of truth;
// a failed nudge only delays processing, it never loses the job.
type Enqueuer struct {
	repo  JobCreator
	waker Waker
	log   *slog.Logger
}

func NewEnqueuer(repo JobCreator, waker Waker, log *slog.Logger) *Enqueuer {
	return &Enqueuer{
		repo:  repo,
		waker: waker,
		log:   log,
	}
}

func (e *Enqueuer) Enqueue(ctx context.Context, t JobType, payload any) (job.Job, error) {
	b, err := EncodePayload(t, payload)

	if err != nil {
		return job.Job{}, err
	}

	j, err := e.repo.Create(ctx, job.CreateRequest{
		Type:    string(t),
		Payload: b,
		RunAt:   time.Now().UTC(),
	})

	if err != nil {
		return job.Job{}, err
	}

	if e.waker != nil {
		if err := e.waker.Wake(ctx, j.ID); err != nil {
			e.log.WarnContext(ctx, "job wake failed, worker will poll", "job_id", j.ID, "error", err)
		}
	}

	return j, nil
}
