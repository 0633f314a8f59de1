package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/repairlab/repairhub/internal/config"
	"github.com/repairlab/repairhub/internal/domain/user"
	"github.com/repairlab/repairhub/internal/http/middlewares"
	"github.com/repairlab/repairhub/internal/service"
)

// Authenticator is the slice of the auth service these handlers need.
type Authenticator interface {
	Register(ctx context.Context, req user.CreateUserRequest) (service.Session, error)
	Login(ctx context.Context, req user.LoginRequest) (service.Session, error)
	ChangePassword(ctx context.Context, userID int64, req user.ChangePasswordRequest) error
}

type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	sess, err := h.auth.Register(cctx, req)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, sess)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	sess, err := h.auth.Login(cctx, req)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrAccountNotFound):
			// an unknown email is a 404, not a 401; clients rely on
			// telling these two apart
			RespondNotFound(ctx, "This account does not exist")
		case errors.Is(err, user.ErrInvalidCredentials):
			RespondUnAuthorized(ctx, "invalid_credentials", "Incorrect email or password")
		case errors.Is(err, user.ErrAccountDisabled):
			RespondForbidden(ctx, "Account is disabled")
		default:
			RespondInternal(ctx, "Could not log in")
		}
		return
	}

	ctx.JSON(http.StatusOK, sess)
}

func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req user.ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.auth.ChangePassword(cctx, u.ID, req)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrSamePassword):
			RespondBadRequest(ctx, "New password must be different from the current one", nil)
		case errors.Is(err, user.ErrInvalidCredentials):
			RespondUnAuthorized(ctx, "invalid_credentials", "Incorrect email or password")
		case errors.Is(err, user.ErrAccountNotFound):
			RespondNotFound(ctx, "This account does not exist")
		default:
			RespondInternal(ctx, "Could not change password")
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
