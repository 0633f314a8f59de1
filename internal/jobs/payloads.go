package jobs

// UserWelcomePayload greets a freshly registered account. Keep payloads
// minimal and ID-based; the worker loads details from the DB.
type UserWelcomePayload struct {
	UserID    int64  `json:"userId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	RequestID string `json:"requestId,omitempty"` // optional: correlation
}

// RepairStatusPayload notifies the owner that their repair changed state.
type RepairStatusPayload struct {
	RepairID  int64  `json:"repairId"`
	UserID    int64  `json:"userId"`
	Status    string `json:"status"`
	RequestID string `json:"requestId,omitempty"`
}
