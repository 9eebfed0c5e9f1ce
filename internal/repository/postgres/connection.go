package postgres

import (
	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/fitscan/fitscan-backend/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.User{},
		&domain.LoginCode{},
		&domain.Session{},
		&domain.Subscription{},
		&domain.FitnessProfile{},
		&domain.UsageLog{},
		&domain.ScanRecord{},
		&domain.WorkoutRecord{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:          NewUserRepository(db),
		LoginCode:     NewLoginCodeRepository(db),
		Session:       NewSessionRepository(db),
		Subscription:  NewSubscriptionRepository(db),
		Profile:       NewProfileRepository(db),
		Usage:         NewUsageRepository(db),
		ScanRecord:    NewScanRecordRepository(db),
		WorkoutRecord: NewWorkoutRecordRepository(db),
	}
}
