package repository

import (
	"context"
	"time"

	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpsertByEmail(ctx context.Context, email string) (*domain.User, error)
}

type LoginCodeRepository interface {
	Create(ctx context.Context, code *domain.LoginCode) error
	GetLatestByEmail(ctx context.Context, email string) (*domain.LoginCode, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	DeleteByEmail(ctx context.Context, email string) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error)
	GetByCustomerID(ctx context.Context, customerID string) (*domain.Subscription, error)
	UpsertByUserID(ctx context.Context, sub *domain.Subscription) error
	Update(ctx context.Context, sub *domain.Subscription) error
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.FitnessProfile, error)
	Upsert(ctx context.Context, profile *domain.FitnessProfile) error
}

type UsageRepository interface {
	Create(ctx context.Context, entry *domain.UsageLog) error
	CountByTypeSince(ctx context.Context, userID uuid.UUID, actionType domain.ActionType, since time.Time) (int64, error)
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
}

type ScanRecordRepository interface {
	Create(ctx context.Context, rec *domain.ScanRecord) error
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.ScanRecord, error)
}

type WorkoutRecordRepository interface {
	Create(ctx context.Context, rec *domain.WorkoutRecord) error
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.WorkoutRecord, error)
}

// Transactor runs fn against transaction-scoped repositories, committing on
// nil and rolling back on error.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(repos *Repositories) error) error
}

type Repositories struct {
	User          UserRepository
	LoginCode     LoginCodeRepository
	Session       SessionRepository
	Subscription  SubscriptionRepository
	Profile       ProfileRepository
	Usage         UsageRepository
	ScanRecord    ScanRecordRepository
	WorkoutRecord WorkoutRecordRepository
}
