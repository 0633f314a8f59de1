package notifications

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// LogNotifier stands in for a real mail/SMS provider. The env knobs simulate
// a slow or failing provider when exercising retries locally.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) SendUserWelcome(ctx context.Context, in UserWelcomeInput) error {
	if err := simulateProvider(ctx); err != nil {
		return err
	}

	log.Printf("notification.user_welcome email=%s name=%s", in.Email, in.Name)
	return nil
}

func (n *LogNotifier) SendRepairStatus(ctx context.Context, in RepairStatusInput) error {
	if err := simulateProvider(ctx); err != nil {
		return err
	}

	log.Printf("notification.repair_status email=%s repair=%d status=%s", in.Email, in.RepairID, in.Status)
	return nil
}

func simulateProvider(ctx context.Context) error {
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	return nil
}
