package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoginCode is a pending one-time email code. Only the hash of the code is
// stored; verification always reads the most recently created row for an
// email, so issuing a new code supersedes older ones without deleting them.
type LoginCode struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"index;not null"`
	CodeHash  string    `json:"-" gorm:"not null"`
	Attempts  int       `json:"attempts" gorm:"not null;default:0"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// Session maps a hashed token to a user. The raw token exists only in the
// client's cookie; expired rows are treated as absent on lookup.
type Session struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TokenHash string    `json:"-" gorm:"uniqueIndex;not null"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}
