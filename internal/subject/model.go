package subject

import (
	"time"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
)

// Status is the subject's support status
type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusClosed Status = "closed"
)

// Subject is an enrolled support recipient. The code is the only
// identity the system ever stores; names never appear in any record.
type Subject struct {
	Code       types.SubjectID `json:"code"`
	EnrolledAt time.Time       `json:"enrolledAt"`
	Status     Status          `json:"status"`
	Notes      string          `json:"notes"`
}
