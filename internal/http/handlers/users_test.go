package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/repairlab/repairhub/internal/cache"
	"github.com/repairlab/repairhub/internal/domain/user"
	"github.com/repairlab/repairhub/internal/http/handlers"
)

type fakeUsersStore struct {
	getFn        func(ctx context.Context, id int64) (user.User, error)
	listFn       func(ctx context.Context) ([]user.User, error)
	updateFn     func(ctx context.Context, id int64, req user.UpdateUserRequest) (user.User, error)
	softDeleteFn func(ctx context.Context, id int64) error
}

func (f *fakeUsersStore) GetByID(ctx context.Context, id int64) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{}, nil
}

func (f *fakeUsersStore) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeUsersStore) Update(ctx context.Context, id int64, req user.UpdateUserRequest) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return user.User{}, nil
}

func (f *fakeUsersStore) SoftDelete(ctx context.Context, id int64) error {
	if f.softDeleteFn != nil {
		return f.softDeleteFn(ctx, id)
	}
	return nil
}

func TestGetUserForbiddenForOtherClient(t *testing.T) {
	store := &fakeUsersStore{}
	h := handlers.NewUsersHandler(store, nil)

	actor := user.User{ID: 7, Role: user.RoleClient, Status: user.StatusAvailable}
	r := setupAuthedRouter(http.MethodGet, "/users/:id", actor, h.Get)

	req := httptest.NewRequest(http.MethodGet, "/users/9", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestGetUserEmployeeCanReadAnyone(t *testing.T) {
	store := &fakeUsersStore{
		getFn: func(ctx context.Context, id int64) (user.User, error) {
			return user.User{ID: id, Name: "Jo", Email: "jo@example.com", Role: user.RoleClient, Status: user.StatusAvailable}, nil
		},
	}
	h := handlers.NewUsersHandler(store, nil)

	actor := user.User{ID: 1, Role: user.RoleEmployee, Status: user.StatusAvailable}
	r := setupAuthedRouter(http.MethodGet, "/users/:id", actor, h.Get)

	req := httptest.NewRequest(http.MethodGet, "/users/9", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestGetUserGoneIs404(t *testing.T) {
	store := &fakeUsersStore{
		getFn: func(ctx context.Context, id int64) (user.User, error) {
			return user.User{}, user.ErrNotFound
		},
	}
	h := handlers.NewUsersHandler(store, nil)

	actor := user.User{ID: 9, Role: user.RoleClient, Status: user.StatusAvailable}
	r := setupAuthedRouter(http.MethodGet, "/users/:id", actor, h.Get)

	req := httptest.NewRequest(http.MethodGet, "/users/9", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestDeleteUserRepeatedCallStays204(t *testing.T) {
	store := &fakeUsersStore{
		softDeleteFn: func(ctx context.Context, id int64) error {
			return nil // disabling twice is still fine
		},
	}
	h := handlers.NewUsersHandler(store, nil)

	actor := user.User{ID: 7, Role: user.RoleClient, Status: user.StatusAvailable}
	r := setupAuthedRouter(http.MethodDelete, "/users/:id", actor, h.Delete)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/users/7", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("call %d: status = %d, body = %s", i+1, w.Code, w.Body.String())
		}
	}
}

func TestDeleteUserNotOwnerForbidden(t *testing.T) {
	h := handlers.NewUsersHandler(&fakeUsersStore{}, nil)

	actor := user.User{ID: 7, Role: user.RoleClient, Status: user.StatusAvailable}
	r := setupAuthedRouter(http.MethodDelete, "/users/:id", actor, h.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/users/8", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestListUsersServesFromCacheSecondTime(t *testing.T) {
	calls := 0
	store := &fakeUsersStore{
		listFn: func(ctx context.Context) ([]user.User, error) {
			calls++
			return []user.User{
				{ID: 1, Name: "Jo", Email: "jo@example.com", Role: user.RoleClient, Status: user.StatusAvailable},
			}, nil
		},
	}
	h := handlers.NewUsersHandler(store, cache.New(0))

	actor := user.User{ID: 1, Role: user.RoleEmployee, Status: user.StatusAvailable}
	r := setupAuthedRouter(http.MethodGet, "/users", actor, h.List)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("call %d: status = %d", i+1, w.Code)
		}
		if w.Header().Get("ETag") == "" {
			t.Fatalf("call %d: missing ETag", i+1)
		}
	}

	if calls != 1 {
		t.Fatalf("store hit %d times, want 1", calls)
	}
}

func TestUpdateUserDuplicateEmailConflict(t *testing.T) {
	store := &fakeUsersStore{
		updateFn: func(ctx context.Context, id int64, req user.UpdateUserRequest) (user.User, error) {
			return user.User{}, user.ErrEmailTaken
		},
	}
	h := handlers.NewUsersHandler(store, nil)

	actor := user.User{ID: 7, Role: user.RoleClient, Status: user.StatusAvailable}
	r := setupAuthedRouter(http.MethodPatch, "/users/:id", actor, h.Update)

	w := doJSON(t, r, http.MethodPatch, "/users/7", `{"email":"taken@example.com"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}
