package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/repairlab/repairhub/internal/domain/repair"
	"github.com/repairlab/repairhub/internal/observability"
)

type RepairsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRepairsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RepairsRepo {
	return &RepairsRepo{pool: pool, prom: prom}
}

func (r *RepairsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *RepairsRepo) Create(ctx context.Context, req repair.CreateRepairRequest) (repair.Repair, error) {
	var rep repair.Repair

	op := "repairs.create"

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO repairs (date, user_id, status)
			VALUES ($1, $2, 'pending')
			RETURNING id, date, user_id, status, created_at, updated_at`,
			req.Date, req.UserID,
		).Scan(&rep.ID, &rep.Date, &rep.UserID, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt)
	})

	if err != nil {
		return repair.Repair{}, err
	}

	return rep, nil
}

// List only returns pending repairs; completed and cancelled ones leave the
// working queue.
func (r *RepairsRepo) List(ctx context.Context) ([]repair.Repair, error) {
	op := "repairs.list"

	var rows pgx.Rows

	err := r.observe(op, func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx,
			`SELECT id, date, user_id, status, created_at, updated_at
			FROM repairs
			WHERE status = 'pending'
			ORDER BY date ASC, id ASC`,
		)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []repair.Repair

	for rows.Next() {
		var rep repair.Repair

		err = rows.Scan(&rep.ID, &rep.Date, &rep.UserID, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, rep)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

func (r *RepairsRepo) GetByID(ctx context.Context, id int64) (repair.Repair, error) {
	var rep repair.Repair

	op := "repairs.get_by_id"

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, date, user_id, status, created_at, updated_at
			FROM repairs
			WHERE id = $1 AND status = 'pending'`,
			id,
		).Scan(&rep.ID, &rep.Date, &rep.UserID, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repair.Repair{}, repair.ErrNotFound
		}
		return repair.Repair{}, err
	}

	return rep, nil
}

// Complete moves a pending repair to completed. The status guard in the WHERE
// clause makes the transition race free: only one caller wins.
func (r *RepairsRepo) Complete(ctx context.Context, id int64) (repair.Repair, error) {
	return r.transition(ctx, "repairs.complete", id, repair.StatusCompleted)
}

// Cancel moves a pending repair to cancelled.
func (r *RepairsRepo) Cancel(ctx context.Context, id int64) (repair.Repair, error) {
	return r.transition(ctx, "repairs.cancel", id, repair.StatusCancelled)
}

func (r *RepairsRepo) transition(ctx context.Context, op string, id int64, to string) (repair.Repair, error) {
	var rep repair.Repair

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE repairs
			SET status = $2,
			    updated_at = NOW()
			WHERE id = $1 AND status = 'pending'
			RETURNING id, date, user_id, status, created_at, updated_at`,
			id, to,
		).Scan(&rep.ID, &rep.Date, &rep.UserID, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repair.Repair{}, repair.ErrNotFound
		}
		return repair.Repair{}, err
	}

	return rep, nil
}
