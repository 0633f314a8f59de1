package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/repairlab/repairhub/internal/config"
	"github.com/repairlab/repairhub/internal/domain/user"
	"github.com/repairlab/repairhub/internal/security"
)

// EnsureEmployeeUser seeds the first employee account so the repair endpoints
// are reachable on a fresh database. No-op when the seed vars are unset or the
// account already exists (any status).
func EnsureEmployeeUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedEmployeeEmail == "" || cfg.SeedEmployeePassword == "" {
		return nil
	}

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.SeedEmployeeEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.SeedEmployeePassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (name, email, password_hash, role, status)
		VALUES ($1, $2, $3, $4, $5)`,
		cfg.SeedEmployeeName, cfg.SeedEmployeeEmail, hash, user.RoleEmployee, user.StatusAvailable,
	)

	return err
}
