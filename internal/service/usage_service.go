package service

import (
	"context"
	"errors"
	"time"

	"github.com/fitscan/fitscan-backend/internal/config"
	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/fitscan/fitscan-backend/internal/repository"
	"github.com/google/uuid"
)

var ErrLimitReached = errors.New("usage limit reached")

// UsageService enforces action limits server-side, keyed by the
// authenticated user. Free users get a per-type daily allowance; premium
// users a combined monthly one. Usage rows are append-only.
type UsageService struct {
	usageRepo repository.UsageRepository
	cfg       *config.Config
}

func NewUsageService(usageRepo repository.UsageRepository, cfg *config.Config) *UsageService {
	return &UsageService{usageRepo: usageRepo, cfg: cfg}
}

// Authorize checks the caller's remaining allowance and, when allowed,
// records the action before the gated work runs.
func (s *UsageService) Authorize(ctx context.Context, userID uuid.UUID, action domain.ActionType, premium bool) error {
	now := time.Now()

	if premium {
		count, err := s.usageRepo.CountSince(ctx, userID, startOfMonth(now))
		if err != nil {
			return err
		}
		if count >= int64(s.cfg.PremiumMonthlyLimit) {
			return ErrLimitReached
		}
	} else {
		count, err := s.usageRepo.CountByTypeSince(ctx, userID, action, startOfDay(now))
		if err != nil {
			return err
		}
		if count >= int64(s.cfg.FreeDailyLimit) {
			return ErrLimitReached
		}
	}

	return s.usageRepo.Create(ctx, &domain.UsageLog{
		ID:         uuid.New(),
		UserID:     userID,
		ActionType: action,
		CreatedAt:  now,
	})
}

// UsageSummary is what the client renders its limit UI from.
type UsageSummary struct {
	Premium  bool   `json:"premium"`
	Period   string `json:"period"`
	Limit    int    `json:"limit"`
	Scans    int64  `json:"scans"`
	Workouts int64  `json:"workouts"`
	Total    int64  `json:"total"`
}

func (s *UsageService) Summary(ctx context.Context, userID uuid.UUID, premium bool) (*UsageSummary, error) {
	now := time.Now()

	since := startOfDay(now)
	period := "day"
	limit := s.cfg.FreeDailyLimit
	if premium {
		since = startOfMonth(now)
		period = "month"
		limit = s.cfg.PremiumMonthlyLimit
	}

	scans, err := s.usageRepo.CountByTypeSince(ctx, userID, domain.ActionScan, since)
	if err != nil {
		return nil, err
	}
	workouts, err := s.usageRepo.CountByTypeSince(ctx, userID, domain.ActionWorkout, since)
	if err != nil {
		return nil, err
	}

	return &UsageSummary{
		Premium:  premium,
		Period:   period,
		Limit:    limit,
		Scans:    scans,
		Workouts: workouts,
		Total:    scans + workouts,
	}, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
