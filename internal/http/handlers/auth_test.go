package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/repairlab/repairhub/internal/domain/user"
	"github.com/repairlab/repairhub/internal/http/handlers"
	"github.com/repairlab/repairhub/internal/http/middlewares"
	"github.com/repairlab/repairhub/internal/service"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	registerFn       func(ctx context.Context, req user.CreateUserRequest) (service.Session, error)
	loginFn          func(ctx context.Context, req user.LoginRequest) (service.Session, error)
	changePasswordFn func(ctx context.Context, userID int64, req user.ChangePasswordRequest) error
}

func (f *fakeAuth) Register(ctx context.Context, req user.CreateUserRequest) (service.Session, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, req)
	}
	return service.Session{}, nil
}

func (f *fakeAuth) Login(ctx context.Context, req user.LoginRequest) (service.Session, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, req)
	}
	return service.Session{}, nil
}

func (f *fakeAuth) ChangePassword(ctx context.Context, userID int64, req user.ChangePasswordRequest) error {
	if f.changePasswordFn != nil {
		return f.changePasswordFn(ctx, userID, req)
	}
	return nil
}

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

// setupAuthedRouter pre-stashes an identity like RequireAuth would.
func setupAuthedRouter(method, path string, u user.User, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, func(c *gin.Context) {
		c.Set(middlewares.CtxUser, u)
		h(c)
	})

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRegisterCreated(t *testing.T) {
	fake := &fakeAuth{
		registerFn: func(ctx context.Context, req user.CreateUserRequest) (service.Session, error) {
			return service.Session{
				Token: "tok",
				User:  user.Public{ID: 1, Name: req.Name, Email: req.Email, Role: req.Role},
			}, nil
		},
	}

	r := setupRouter(http.MethodPost, "/users", handlers.NewAuthHandler(fake).Register)

	w := doJSON(t, r, http.MethodPost, "/users",
		`{"name":"Jo Client","email":"jo@example.com","password":"sup3rsecret","role":"client"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got service.Session
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Token != "tok" || got.User.Email != "jo@example.com" {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	fake := &fakeAuth{
		registerFn: func(ctx context.Context, req user.CreateUserRequest) (service.Session, error) {
			return service.Session{}, user.ErrEmailTaken
		},
	}

	r := setupRouter(http.MethodPost, "/users", handlers.NewAuthHandler(fake).Register)

	w := doJSON(t, r, http.MethodPost, "/users",
		`{"name":"Jo Client","email":"jo@example.com","password":"sup3rsecret","role":"client"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestRegisterValidationFailure(t *testing.T) {
	r := setupRouter(http.MethodPost, "/users", handlers.NewAuthHandler(&fakeAuth{}).Register)

	// password too short, role unknown
	w := doJSON(t, r, http.MethodPost, "/users",
		`{"name":"Jo","email":"jo@example.com","password":"short","role":"pilot"}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestLoginUnknownAccountIs404(t *testing.T) {
	fake := &fakeAuth{
		loginFn: func(ctx context.Context, req user.LoginRequest) (service.Session, error) {
			return service.Session{}, user.ErrAccountNotFound
		},
	}

	r := setupRouter(http.MethodPost, "/users/login", handlers.NewAuthHandler(fake).Login)

	w := doJSON(t, r, http.MethodPost, "/users/login",
		`{"email":"ghost@example.com","password":"whatever1"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestLoginBadPasswordIs401(t *testing.T) {
	fake := &fakeAuth{
		loginFn: func(ctx context.Context, req user.LoginRequest) (service.Session, error) {
			return service.Session{}, user.ErrInvalidCredentials
		},
	}

	r := setupRouter(http.MethodPost, "/users/login", handlers.NewAuthHandler(fake).Login)

	w := doJSON(t, r, http.MethodPost, "/users/login",
		`{"email":"jo@example.com","password":"wrong-password"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestChangePasswordSameIs400(t *testing.T) {
	fake := &fakeAuth{
		changePasswordFn: func(ctx context.Context, userID int64, req user.ChangePasswordRequest) error {
			return user.ErrSamePassword
		},
	}

	actor := user.User{ID: 7, Role: user.RoleClient, Status: user.StatusAvailable}
	r := setupAuthedRouter(http.MethodPatch, "/users/password", actor, handlers.NewAuthHandler(fake).ChangePassword)

	w := doJSON(t, r, http.MethodPatch, "/users/password",
		`{"currentPassword":"sup3rsecret","newPassword":"sup3rsecret"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestChangePasswordSuccess(t *testing.T) {
	var gotUserID int64

	fake := &fakeAuth{
		changePasswordFn: func(ctx context.Context, userID int64, req user.ChangePasswordRequest) error {
			gotUserID = userID
			return nil
		},
	}

	actor := user.User{ID: 7, Role: user.RoleClient, Status: user.StatusAvailable}
	r := setupAuthedRouter(http.MethodPatch, "/users/password", actor, handlers.NewAuthHandler(fake).ChangePassword)

	w := doJSON(t, r, http.MethodPatch, "/users/password",
		`{"currentPassword":"sup3rsecret","newPassword":"brandnewpass1"}`)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if gotUserID != 7 {
		t.Fatalf("change password used id %d, want 7", gotUserID)
	}
}
