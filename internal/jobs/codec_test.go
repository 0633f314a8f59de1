package jobs

import (
	"errors"
	"testing"

	"github.com/repairlab/repairhub/internal/domain/job"
)

func TestEncodeDecodeUserWelcome(t *testing.T) {
	in := UserWelcomePayload{
		UserID: 12,
		Email:  "jo@example.com",
		Name:   "Jo",
	}

	b, err := EncodePayload(JobUserWelcome, in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := DecodePayload(job.Job{Type: string(JobUserWelcome), Payload: b})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	got, ok := out.(UserWelcomePayload)
	if !ok {
		t.Fatalf("wrong payload type %T", out)
	}

	if got != in {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, in)
	}
}

func TestEncodeRejectsMismatchedPayload(t *testing.T) {
	_, err := EncodePayload(JobUserWelcome, RepairStatusPayload{RepairID: 1})

	if !errors.Is(err, ErrPayloadTypeMismatch) {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestEncodeRejectsUnknownType(t *testing.T) {
	_, err := EncodePayload(JobType("mystery"), UserWelcomePayload{})

	if !errors.Is(err, ErrInvalidJobType) {
		t.Fatalf("expected ErrInvalidJobType, got %v", err)
	}
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	_, err := DecodePayload(job.Job{Type: string(JobRepairStatus)})

	if !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("expected ErrInvalidJobPayload, got %v", err)
	}
}
