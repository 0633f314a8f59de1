package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/repairlab/repairhub/internal/cache"
	"github.com/repairlab/repairhub/internal/config"
	"github.com/repairlab/repairhub/internal/domain/user"
	"github.com/repairlab/repairhub/internal/http/middlewares"
)

type UsersStore interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id int64, req user.UpdateUserRequest) (user.User, error)
	SoftDelete(ctx context.Context, id int64) error
}

const usersListCacheKey = "users:list"

type UsersHandler struct {
	users UsersStore
	cache *cache.Cache
}

func NewUsersHandler(users UsersStore, c *cache.Cache) *UsersHandler {
	return &UsersHandler{users: users, cache: c}
}

func parseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid id", nil)
		return 0, false
	}

	return id, true
}

func (h *UsersHandler) List(ctx *gin.Context) {
	if h.cache != nil {
		if cached, ok := h.cache.Get(usersListCacheKey); ok {
			RespondJSONWithETag(ctx, http.StatusOK, cached)
			return
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	list, err := h.users.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	out := make([]user.Public, 0, len(list))
	for _, u := range list {
		out = append(out, u.Public())
	}

	payload := gin.H{"users": out}

	if h.cache != nil {
		h.cache.Set(usersListCacheKey, payload)
	}

	RespondJSONWithETag(ctx, http.StatusOK, payload)
}

// Get allows employees to read anyone; clients only themselves.
func (h *UsersHandler) Get(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	actor, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	if actor.Role != user.RoleEmployee && actor.ID != id {
		RespondForbidden(ctx, "You do not own this account")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "This account does not exist")
			return
		}
		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u.Public()})
}

// Update is owner-only partial update of name/email. Status never changes
// here; the only status transition lives in Delete.
func (h *UsersHandler) Update(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	actor, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	if actor.ID != id {
		RespondForbidden(ctx, "You do not own this account")
		return
	}

	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.Update(cctx, id, req)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "This account does not exist")
		case errors.Is(err, user.ErrEmailTaken):
			RespondConflict(ctx, "email_taken", "Email is already in use.")
		default:
			RespondInternal(ctx, "Could not update user")
		}
		return
	}

	if h.cache != nil {
		h.cache.Delete(usersListCacheKey)
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u.Public()})
}

// Delete disables the account rather than removing the row. Repeating the
// call still returns 204.
func (h *UsersHandler) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	actor, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	if actor.ID != id {
		RespondForbidden(ctx, "You do not own this account")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.users.SoftDelete(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "This account does not exist")
			return
		}
		RespondInternal(ctx, "Could not delete user")
		return
	}

	if h.cache != nil {
		h.cache.Delete(usersListCacheKey)
	}

	ctx.Status(http.StatusNoContent)
}
