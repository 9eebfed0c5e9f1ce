package domain

import (
	"time"

	"github.com/google/uuid"
)

type ActionType string

const (
	ActionScan    ActionType = "scan"
	ActionWorkout ActionType = "workout"
)

// UsageLog records one gated action. Rows are append-only; limits are
// computed by counting rows in the relevant window.
type UsageLog struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     uuid.UUID  `json:"userId" gorm:"type:uuid;index;not null"`
	ActionType ActionType `json:"type" gorm:"not null"`
	CreatedAt  time.Time  `json:"date" gorm:"index"`
}
