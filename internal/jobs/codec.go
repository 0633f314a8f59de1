package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/repairlab/repairhub/internal/domain/job"
)

func EncodePayload(t JobType, payload any) ([]byte, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}

	switch t {
	case JobUserWelcome:
		_, ok := payload.(UserWelcomePayload)

		if !ok {
			_, ok2 := payload.(*UserWelcomePayload)

			if !ok2 {
				return nil, ErrPayloadTypeMismatch
			}
		}

	case JobRepairStatus:
		_, ok := payload.(RepairStatusPayload)

		if !ok {
			_, ok2 := payload.(*RepairStatusPayload)

			if !ok2 {
				return nil, ErrPayloadTypeMismatch
			}
		}
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals j.Payload into the typed payload struct for its type.
func DecodePayload(j job.Job) (any, error) {
	t := JobType(j.Type)

	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}
	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch t {
	case JobUserWelcome:
		var p UserWelcomePayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, nil

	case JobRepairStatus:
		var p RepairStatusPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, nil

	default:
		return nil, ErrInvalidJobType
	}
}
