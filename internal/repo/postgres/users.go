package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/repairlab/repairhub/internal/domain/user"
	"github.com/repairlab/repairhub/internal/observability"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

// Create inserts the user and relies on the unique index on email to catch
// duplicates. Uniqueness is enforced by the store, not by a prior read.
func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	op := "users.create"

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO users (name, email, password_hash, role, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at`,
			u.Name, u.Email, u.PasswordHash, u.Role, u.Status,
		).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

// GetByID only sees available accounts. Disabled users are invisible to every
// read path except GetByEmail.
func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	op := "users.get_by_id"

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, email, password_hash, role, status, password_changed_at, created_at, updated_at
			FROM users
			WHERE id = $1 AND status = 'available'`,
			id,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.Role,
			&u.Status,
			&u.PasswordChangedAt,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

// GetByEmail is deliberately unscoped by status: login needs to see disabled
// accounts to apply its own policy.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	op := "users.get_by_email"

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, email, password_hash, role, status, password_changed_at, created_at, updated_at
			FROM users
			WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.Role,
			&u.Status,
			&u.PasswordChangedAt,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	op := "users.list"

	var rows pgx.Rows

	err := r.observe(op, func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx,
			`SELECT id, name, email, password_hash, role, status, password_changed_at, created_at, updated_at
			FROM users
			WHERE status = 'available'
			ORDER BY id ASC`,
		)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []user.User

	for rows.Next() {
		var u user.User

		err = rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.Role,
			&u.Status,
			&u.PasswordChangedAt,
			&u.CreatedAt,
			&u.UpdatedAt,
		)

		if err != nil {
			return nil, err
		}

		out = append(out, u)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

func (r *UsersRepo) Update(ctx context.Context, id int64, req user.UpdateUserRequest) (user.User, error) {
	var u user.User

	op := "users.update"

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE users
			SET name = COALESCE($2, name),
			    email = COALESCE($3, email),
			    updated_at = NOW()
			WHERE id = $1 AND status = 'available'
			RETURNING id, name, email, password_hash, role, status, password_changed_at, created_at, updated_at`,
			id, req.Name, req.Email,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.Role,
			&u.Status,
			&u.PasswordChangedAt,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	var tag pgconn.CommandTag
	var err error

	op := "users.update_password"

	err = r.observe(op, func() error {
		tag, err = r.pool.Exec(ctx,
			`UPDATE users
			SET password_hash = $2,
			    password_changed_at = NOW(),
			    updated_at = NOW()
			WHERE id = $1 AND status = 'available'`,
			id, passwordHash,
		)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

// SoftDelete is keyed on id only, so disabling an already disabled account
// matches the row again and stays a no-op. Calling it twice is not an error.
func (r *UsersRepo) SoftDelete(ctx context.Context, id int64) error {
	var tag pgconn.CommandTag
	var err error

	op := "users.soft_delete"

	err = r.observe(op, func() error {
		tag, err = r.pool.Exec(ctx,
			`UPDATE users
			SET status = 'disabled',
			    updated_at = NOW()
			WHERE id = $1`,
			id,
		)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}
