package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/repairlab/repairhub/internal/domain/user"
)

func seedUser(t *testing.T, r *UsersRepo, email string) user.User {
	t.Helper()

	u, err := r.Create(context.Background(), user.User{
		Name:         "Jo Client",
		Email:        email,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		Role:         user.RoleClient,
		Status:       user.StatusAvailable,
	})

	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	return u
}

func TestCreateDuplicateEmail(t *testing.T) {
	r := NewUsersRepo()
	seedUser(t, r, "jo@example.com")

	_, err := r.Create(context.Background(), user.User{
		Name:         "Other Jo",
		Email:        "jo@example.com",
		PasswordHash: "x",
		Role:         user.RoleClient,
		Status:       user.StatusAvailable,
	})

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestDuplicateEmailAfterSoftDelete(t *testing.T) {
	r := NewUsersRepo()
	u := seedUser(t, r, "jo@example.com")

	if err := r.SoftDelete(context.Background(), u.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	// disabled accounts still hold their email
	_, err := r.Create(context.Background(), user.User{
		Name:         "New Jo",
		Email:        "jo@example.com",
		PasswordHash: "x",
		Role:         user.RoleClient,
		Status:       user.StatusAvailable,
	})

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestConcurrentCreateSameEmail(t *testing.T) {
	r := NewUsersRepo()

	const n = 16

	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.Create(context.Background(), user.User{
				Name:         "Racer",
				Email:        "race@example.com",
				PasswordHash: "x",
				Role:         user.RoleClient,
				Status:       user.StatusAvailable,
			})
		}(i)
	}

	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else if !errors.Is(err, user.ErrEmailTaken) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if ok != 1 {
		t.Fatalf("expected exactly one create to win, got %d", ok)
	}
}

func TestSoftDeleteHidesFromReads(t *testing.T) {
	r := NewUsersRepo()
	u := seedUser(t, r, "jo@example.com")

	if err := r.SoftDelete(context.Background(), u.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if _, err := r.GetByID(context.Background(), u.ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("GetByID should not see disabled user, got %v", err)
	}

	list, err := r.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("list should not include disabled users, got %d", len(list))
	}

	// GetByEmail is the one unscoped read
	got, err := r.GetByEmail(context.Background(), "jo@example.com")
	if err != nil {
		t.Fatalf("GetByEmail should still see disabled user, got %v", err)
	}
	if !got.Disabled() {
		t.Fatalf("expected disabled status, got %q", got.Status)
	}
}

func TestSoftDeleteIsIdempotent(t *testing.T) {
	r := NewUsersRepo()
	u := seedUser(t, r, "jo@example.com")

	if err := r.SoftDelete(context.Background(), u.ID); err != nil {
		t.Fatalf("first soft delete: %v", err)
	}

	if err := r.SoftDelete(context.Background(), u.ID); err != nil {
		t.Fatalf("second soft delete should be a no-op, got %v", err)
	}
}

func TestUpdateCannotTouchStatus(t *testing.T) {
	r := NewUsersRepo()
	u := seedUser(t, r, "jo@example.com")

	name := "Renamed Jo"
	got, err := r.Update(context.Background(), u.ID, user.UpdateUserRequest{Name: &name})

	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if got.Name != "Renamed Jo" {
		t.Fatalf("name not updated: %q", got.Name)
	}
	if got.Status != user.StatusAvailable {
		t.Fatalf("update must not change status, got %q", got.Status)
	}
}
