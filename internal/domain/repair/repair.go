package repair

import (
	"errors"
	"time"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var ErrNotFound = errors.New("repair not found")

type Repair struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	UserID    int64     `json:"userId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateRepairRequest struct {
	Date time.Time `json:"date" binding:"required"`
	// filled in from the session, never from the body
	UserID int64 `json:"-"`
}
