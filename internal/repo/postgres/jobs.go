package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/repairlab/repairhub/internal/domain/job"
	"github.com/repairlab/repairhub/internal/observability"
)

type JobsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewJobsRepo(pool *pgxpool.Pool, prom *observability.Prom) *JobsRepo {
	return &JobsRepo{pool: pool, prom: prom}
}

func (r *JobsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *JobsRepo) Create(ctx context.Context, req job.CreateRequest) (job.Job, error) {
	j := job.New(req)
	op := "jobs.create"

	var err error

	err = r.observe(op, func() error {
		_, err = r.pool.Exec(ctx, `INSERT INTO jobs(
		id, type, payload, status, attempts, max_attempts, run_at, locked_at, locked_by, last_error, created_at, updated_at
		) VALUES (
		$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
		)`, j.ID, j.Type, j.Payload, string(j.Status), j.Attempts, j.MaxAttempts, j.RunAt, j.LockedAt, j.LockedBy, j.LastError, j.CreatedAt, j.UpdatedAt)

		return err
	})

	if err != nil {
		return job.Job{}, err
	}

	return j, nil
}

// ClaimNext is a single statement claim using the SKIP LOCKED pattern. Only
// claims jobs ready to run (pending, run_at <= now) under max_attempts.
func (r *JobsRepo) ClaimNext(ctx context.Context, workerID string) (job.Job, error) {
	var j job.Job
	var status string
	var err error

	op := "jobs.claim_next"

	err = r.observe(op, func() error {
		return r.pool.QueryRow(ctx, `
		WITH next AS (
			SELECT id
			FROM jobs
			WHERE status = 'pending'
			  AND run_at <= NOW()
			  AND attempts < max_attempts
			ORDER BY run_at ASC, created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE jobs
		SET status = 'processing',
		    locked_at = NOW(),
		    locked_by = $1,
		    updated_at = NOW()
		WHERE id = (SELECT id FROM next)
		RETURNING id, type, payload, status,
		          attempts, max_attempts,
		          run_at, locked_at, locked_by,
		          last_error, created_at, updated_at
	`, workerID).Scan(
			&j.ID, &j.Type, &j.Payload, &status,
			&j.Attempts, &j.MaxAttempts,
			&j.RunAt, &j.LockedAt, &j.LockedBy,
			&j.LastError, &j.CreatedAt, &j.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, job.ErrJobNotFound // no job available
		}
		return job.Job{}, err
	}

	j.Status = job.Status(status)
	return j, nil
}

func (r *JobsRepo) MarkDone(ctx context.Context, id string) error {
	var tag pgconn.CommandTag
	var err error
	op := "jobs.mark_done"

	err = r.observe(op, func() error {
		tag, err = r.pool.Exec(ctx,
			`UPDATE jobs
			SET status = 'done',
			    locked_at = NULL,
			    locked_by = NULL,
			    last_error = NULL,
			    updated_at = NOW()
			WHERE id = $1`, id)

		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return job.ErrJobNotFound
	}
	return nil
}

func (r *JobsRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	var tag pgconn.CommandTag
	var err error
	op := "jobs.mark_failed"

	err = r.observe(op, func() error {
		tag, err = r.pool.Exec(ctx, `
		UPDATE jobs
		SET status = 'failed',
		    locked_at = NULL,
		    locked_by = NULL,
		    last_error = $2,
		    updated_at = NOW()
		WHERE id = $1
	`, id, errMsg)
		return err
	})

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return job.ErrJobNotFound
	}
	return nil
}

// Reschedule bumps attempts and pushes run_at out for retries with backoff.
func (r *JobsRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	var tag pgconn.CommandTag
	var err error

	op := "jobs.reschedule"

	err = r.observe(op, func() error {
		tag, err = r.pool.Exec(ctx, `
		UPDATE jobs
		SET status = 'pending',
		    attempts = attempts + 1,
		    run_at = $2,
		    locked_at = NULL,
		    locked_by = NULL,
		    last_error = $3,
		    updated_at = NOW()
		WHERE id = $1
	`, id, runAt, errMsg)

		return err
	})

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return job.ErrJobNotFound
	}
	return nil
}

// RequeueStaleProcessing frees jobs whose worker died while holding the lock.
func (r *JobsRepo) RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error) {
	secs := int64(lockTTL.Seconds())
	if secs <= 0 {
		secs = 30
	}
	var rows int64
	var err error

	op := "jobs.requeue_stale"
	err = r.observe(op, func() error {
		tag, err := r.pool.Exec(ctx, `
		UPDATE jobs
		SET status = 'pending',
		    locked_at = NULL,
		    locked_by = NULL,
		    updated_at = NOW()
		WHERE status = 'processing'
		  AND locked_at IS NOT NULL
		  AND locked_at < NOW() - ($1 * INTERVAL '1 second')
	`, secs)

		if err != nil {
			return err
		}
		rows = tag.RowsAffected()
		return nil
	})

	return rows, err
}
