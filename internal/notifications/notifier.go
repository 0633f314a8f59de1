package notifications

import "context"

type UserWelcomeInput struct {
	Email string
	Name  string
}

type RepairStatusInput struct {
	Email    string
	Name     string
	RepairID int64
	Status   string
}

type Notifier interface {
	SendUserWelcome(ctx context.Context, input UserWelcomeInput) error
	SendRepairStatus(ctx context.Context, input RepairStatusInput) error
}
