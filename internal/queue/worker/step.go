package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/repairlab/repairhub/internal/domain/job"
	"github.com/repairlab/repairhub/internal/domain/user"
	"github.com/repairlab/repairhub/internal/jobs"
	"github.com/repairlab/repairhub/internal/notifications"
)

// ProcessOne claims and runs a single job. Returns false when no job was
// available.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()
	err = w.execute(ctx, j)
	elapsed := time.Since(start)

	if err != nil {
		result := w.handleFailure(ctx, j, err)
		w.observeJob(j.Type, result, elapsed)
		return true, nil
	}

	err = w.repo.MarkDone(ctx, j.ID)

	if err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		w.observeJob(j.Type, "failed", elapsed)
		return true, err
	}

	w.observeJob(j.Type, "done", elapsed)
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	payload, err := jobs.DecodePayload(j)

	if err != nil {
		return err
	}

	switch p := payload.(type) {
	case jobs.UserWelcomePayload:
		return w.notifier.SendUserWelcome(ctx, notifications.UserWelcomeInput{
			Email: p.Email,
			Name:  p.Name,
		})

	case jobs.RepairStatusPayload:
		// load the owner fresh; a disabled account gets no notification
		owner, err := w.users.GetByID(ctx, p.UserID)

		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				w.log.InfoContext(ctx, "repair status owner gone, skipping", "job_id", j.ID, "user_id", p.UserID)
				return nil
			}
			return err
		}

		return w.notifier.SendRepairStatus(ctx, notifications.RepairStatusInput{
			Email:    owner.Email,
			Name:     owner.Name,
			RepairID: p.RepairID,
			Status:   p.Status,
		})

	default:
		return fmt.Errorf("no handler for job type %q", j.Type)
	}
}

// handleFailure reschedules with backoff until attempts run out, then marks
// the job failed. Returns the result label for metrics.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, cause error) string {
	// undecodable payloads never succeed on retry
	permanent := errors.Is(cause, jobs.ErrInvalidJobType) || errors.Is(cause, jobs.ErrInvalidJobPayload)

	if permanent || j.Attempts+1 >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, cause.Error()); err != nil {
			w.log.ErrorContext(ctx, "mark failed errored", "job_id", j.ID, "error", err)
		}

		w.log.WarnContext(ctx, "job failed permanently", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts+1, "error", cause)
		return "failed"
	}

	runAt := time.Now().UTC().Add(ExponentialBackoff(j.Attempts))

	if err := w.repo.Reschedule(ctx, j.ID, runAt, cause.Error()); err != nil {
		w.log.ErrorContext(ctx, "reschedule errored", "job_id", j.ID, "error", err)
		return "failed"
	}

	w.log.InfoContext(ctx, "job rescheduled", "job_id", j.ID, "type", j.Type, "attempt", j.Attempts+1, "run_at", runAt)
	return "retry"
}

func (w *Worker) observeJob(jobType, result string, elapsed time.Duration) {
	if w.prom == nil {
		return
	}
	w.prom.JobResults.WithLabelValues(jobType, result).Inc()
	w.prom.JobDuration.WithLabelValues(jobType, result).Observe(elapsed.Seconds())
}
