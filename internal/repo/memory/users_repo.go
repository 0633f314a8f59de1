package memory

import (
	"context"
	"sync"
	"time"

	"github.com/repairlab/repairhub/internal/domain/user"
)

// UsersRepo is an in-memory mirror of the postgres users repo. It keeps the
// same visibility and uniqueness semantics so service tests run against it
// without a database.
type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		nextID: 1,
		items:  make(map[int64]user.User),
	}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// uniqueness check and insert happen under the same lock, like the
	// unique index does in postgres
	for _, existing := range r.items {
		if existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	now := time.Now()
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = now
	u.UpdatedAt = now

	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]

	if !ok || u.Status != user.StatusAvailable {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// no status filter here; login applies its own policy
	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []user.User

	for id := int64(1); id < r.nextID; id++ {
		u, ok := r.items[id]
		if ok && u.Status == user.StatusAvailable {
			out = append(out, u)
		}
	}

	return out, nil
}

func (r *UsersRepo) Update(ctx context.Context, id int64, req user.UpdateUserRequest) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok || u.Status != user.StatusAvailable {
		return user.User{}, user.ErrNotFound
	}

	if req.Email != nil && *req.Email != u.Email {
		for _, existing := range r.items {
			if existing.Email == *req.Email {
				return user.User{}, user.ErrEmailTaken
			}
		}
		u.Email = *req.Email
	}

	if req.Name != nil {
		u.Name = *req.Name
	}

	u.UpdatedAt = time.Now()
	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok || u.Status != user.StatusAvailable {
		return user.ErrNotFound
	}

	now := time.Now()
	u.PasswordHash = passwordHash
	u.PasswordChangedAt = &now
	u.UpdatedAt = now
	r.items[id] = u

	return nil
}

func (r *UsersRepo) SoftDelete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.ErrNotFound
	}

	// keyed on id only, so a second call is a harmless no-op
	u.Status = user.StatusDisabled
	u.UpdatedAt = time.Now()
	r.items[id] = u

	return nil
}
