package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/fitscan/fitscan-backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmptyImage = errors.New("image data is required")
	ErrUpstream   = errors.New("AI collaborator failed")
)

// Generator is the AI collaborator. It returns structured JSON and is
// treated as opaque; timeouts and failures surface as errors.
type Generator interface {
	AnalyzeMachine(ctx context.Context, imageBase64 string, profile *domain.FitnessProfile) (*domain.MachineAnalysis, error)
	GenerateWorkout(ctx context.Context, profile *domain.FitnessProfile) (*domain.WorkoutPlan, error)
}

// TrainerService runs the two gated AI actions and persists their results.
type TrainerService struct {
	generator    Generator
	profileRepo  repository.ProfileRepository
	scanRepo     repository.ScanRecordRepository
	workoutRepo  repository.WorkoutRecordRepository
	usage        *UsageService
	entitlements *EntitlementService
}

func NewTrainerService(
	generator Generator,
	repos *repository.Repositories,
	usage *UsageService,
	entitlements *EntitlementService,
) *TrainerService {
	return &TrainerService{
		generator:    generator,
		profileRepo:  repos.Profile,
		scanRepo:     repos.ScanRecord,
		workoutRepo:  repos.WorkoutRecord,
		usage:        usage,
		entitlements: entitlements,
	}
}

func (s *TrainerService) ScanMachine(ctx context.Context, userID uuid.UUID, imageBase64 string) (*domain.MachineAnalysis, error) {
	if imageBase64 == "" {
		return nil, ErrEmptyImage
	}

	profile, err := s.profileForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, userID, domain.ActionScan); err != nil {
		return nil, err
	}

	analysis, err := s.generator.AnalyzeMachine(ctx, imageBase64, profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	payload, err := json.Marshal(analysis)
	if err != nil {
		return nil, err
	}
	record := &domain.ScanRecord{
		ID:          uuid.New(),
		UserID:      userID,
		MachineName: analysis.MachineName,
		Analysis:    payload,
	}
	if err := s.scanRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return analysis, nil
}

func (s *TrainerService) GenerateWorkout(ctx context.Context, userID uuid.UUID) (*domain.WorkoutPlan, error) {
	profile, err := s.profileForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, userID, domain.ActionWorkout); err != nil {
		return nil, err
	}

	plan, err := s.generator.GenerateWorkout(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	payload, err := json.Marshal(plan)
	if err != nil {
		return nil, err
	}
	record := &domain.WorkoutRecord{
		ID:     uuid.New(),
		UserID: userID,
		Title:  plan.Title,
		Plan:   payload,
	}
	if err := s.workoutRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return plan, nil
}

func (s *TrainerService) ScanHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.ScanRecord, error) {
	return s.scanRepo.GetByUserID(ctx, userID, limit, offset)
}

func (s *TrainerService) WorkoutHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.WorkoutRecord, error) {
	return s.workoutRepo.GetByUserID(ctx, userID, limit, offset)
}

func (s *TrainerService) authorize(ctx context.Context, userID uuid.UUID, action domain.ActionType) error {
	_, premium, err := s.entitlements.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	return s.usage.Authorize(ctx, userID, action, premium)
}

// profileForUser falls back to beginner defaults so scanning works before
// profile setup is finished.
func (s *TrainerService) profileForUser(ctx context.Context, userID uuid.UUID) (*domain.FitnessProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.FitnessProfile{
				UserID:   userID,
				Level:    domain.LevelBeginner,
				Goal:     domain.GoalHealth,
				Location: domain.LocationGym,
			}, nil
		}
		return nil, err
	}
	return profile, nil
}
