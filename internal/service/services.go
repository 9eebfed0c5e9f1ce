package service

import (
	"github.com/fitscan/fitscan-backend/internal/config"
	"github.com/fitscan/fitscan-backend/internal/mail"
	"github.com/fitscan/fitscan-backend/internal/repository"
)

type Services struct {
	Auth        *AuthService
	Entitlement *EntitlementService
	Billing     *BillingService
	Usage       *UsageService
	Profile     *ProfileService
	Trainer     *TrainerService
}

func NewServices(repos *repository.Repositories, tx repository.Transactor, mailer mail.Mailer, generator Generator, cfg *config.Config) *Services {
	entitlement := NewEntitlementService(repos.Subscription)
	usage := NewUsageService(repos.Usage, cfg)

	return &Services{
		Auth:        NewAuthService(repos, tx, mailer, cfg),
		Entitlement: entitlement,
		Billing:     NewBillingService(repos.Subscription),
		Usage:       usage,
		Profile:     NewProfileService(repos.Profile),
		Trainer:     NewTrainerService(generator, repos, usage, entitlement),
	}
}
