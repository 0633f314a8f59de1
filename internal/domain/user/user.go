package user

import (
	"errors"
	"time"
)

const (
	RoleClient   = "client"
	RoleEmployee = "employee"
)

const (
	StatusAvailable = "available"
	StatusDisabled  = "disabled"
)

var (
	ErrNotFound = errors.New("user not found")

	// storage-layer uniqueness, any status counts
	ErrEmailTaken = errors.New("email already taken")

	// login failures, kept separate so the boundary can map 404 vs 401
	ErrAccountNotFound    = errors.New("account does not exist")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")

	ErrSamePassword = errors.New("new password must differ from the current one")
)

type User struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"` // never expose hash in JSON
	Role              string     `json:"role"`
	Status            string     `json:"status"`
	PasswordChangedAt *time.Time `json:"-"` // set only on explicit password change
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Public is the projection returned to API clients. It never carries the
// password hash or the password-changed timestamp.
type Public struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u User) Public() Public {
	return Public{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

func (u User) Disabled() bool {
	return u.Status == StatusDisabled
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=client employee"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// partial update; pointers so absent fields stay untouched.
// Status and ID are deliberately not here: the status transition only
// happens through SoftDelete.
type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=120"`
	Email *string `json:"email" binding:"omitempty,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}
