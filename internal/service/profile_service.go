package service

import (
	"context"
	"errors"

	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/fitscan/fitscan-backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.FitnessProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

type UpdateProfileInput struct {
	Name     string                 `json:"name"`
	Weight   string                 `json:"weight"`
	Height   string                 `json:"height"`
	Age      string                 `json:"age"`
	Level    domain.TrainingLevel   `json:"level"`
	Goal     domain.TrainingGoal    `json:"goal"`
	Gender   string                 `json:"gender"`
	Location domain.WorkoutLocation `json:"locationPreference"`
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.FitnessProfile, error) {
	profile := &domain.FitnessProfile{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     input.Name,
		Weight:   input.Weight,
		Height:   input.Height,
		Age:      input.Age,
		Level:    input.Level,
		Goal:     input.Goal,
		Gender:   input.Gender,
		Location: input.Location,
	}
	if profile.Level == "" {
		profile.Level = domain.LevelBeginner
	}
	if profile.Goal == "" {
		profile.Goal = domain.GoalHealth
	}
	if profile.Location == "" {
		profile.Location = domain.LocationGym
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByUserID(ctx, userID)
}
