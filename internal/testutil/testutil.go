package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fitscan/fitscan-backend/internal/api"
	"github.com/fitscan/fitscan-backend/internal/config"
	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/fitscan/fitscan-backend/internal/repository"
	repoPostgres "github.com/fitscan/fitscan-backend/internal/repository/postgres"
	"github.com/fitscan/fitscan-backend/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_fitscan"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
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
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"workout_records",
		"scan_records",
		"usage_logs",
		"fitness_profiles",
		"subscriptions",
		"sessions",
		"login_codes",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:                  "0", // Random port
		Environment:           "test",
		CodeTTL:               10 * time.Minute,
		SessionTTL:            30 * 24 * time.Hour,
		MaxCodeAttempts:       5,
		EmailFrom:             "FitScan <test@fitscan.test>",
		StripeWebhookSecret:   "whsec_test_secret",
		CheckoutLinkMonthly:   "https://buy.stripe.test/monthly",
		CheckoutLinkQuarterly: "https://buy.stripe.test/quarterly",
		CheckoutLinkAnnual:    "https://buy.stripe.test/annual",
		FreeDailyLimit:        3,
		PremiumMonthlyLimit:   150,
	}
}

// CaptureMailer records codes instead of sending email
type CaptureMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func NewCaptureMailer() *CaptureMailer {
	return &CaptureMailer{codes: make(map[string]string)}
}

func (m *CaptureMailer) SendLoginCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return nil
}

// LastCode returns the most recent code sent to the address
func (m *CaptureMailer) LastCode(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

// StubGenerator returns canned AI responses
type StubGenerator struct {
	Analysis *domain.MachineAnalysis
	Plan     *domain.WorkoutPlan
	Err      error
}

func NewStubGenerator() *StubGenerator {
	return &StubGenerator{
		Analysis: &domain.MachineAnalysis{
			MachineName:     "Leg Press",
			PrimaryMuscles:  []string{"Quadríceps"},
			Instructions:    []string{"Ajuste o banco", "Empurre com os calcanhares"},
			RecommendedSets: 3,
			RecommendedReps: "10-12",
		},
		Plan: &domain.WorkoutPlan{
			Title:                "Treino A",
			EstimatedDurationMin: 45,
			Exercises: []domain.Exercise{
				{Name: "Agachamento", Sets: 3, Reps: "10", RestSeconds: 90},
				{Name: "Leg Press", Sets: 3, Reps: "12", RestSeconds: 60},
			},
		},
	}
}

func (g *StubGenerator) AnalyzeMachine(_ context.Context, _ string, _ *domain.FitnessProfile) (*domain.MachineAnalysis, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	return g.Analysis, nil
}

func (g *StubGenerator) GenerateWorkout(_ context.Context, _ *domain.FitnessProfile) (*domain.WorkoutPlan, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	return g.Plan, nil
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server    *httptest.Server
	DB        *TestDB
	Repos     *repository.Repositories
	Services  *service.Services
	Mailer    *CaptureMailer
	Generator *StubGenerator
	Config    *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()

	repos := repoPostgres.NewRepositories(testDB.DB)
	tx := repoPostgres.NewTransactor(testDB.DB)
	mailer := NewCaptureMailer()
	generator := NewStubGenerator()

	services := service.NewServices(repos, tx, mailer, generator, cfg)
	router := api.NewRouter(services, cfg)

	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
	})

	return &TestServer{
		Server:    server,
		DB:        testDB,
		Repos:     repos,
		Services:  services,
		Mailer:    mailer,
		Generator: generator,
		Config:    cfg,
	}
}

// APIURL builds a full URL for an API v1 path
func (ts *TestServer) APIURL(path string) string {
	return ts.Server.URL + "/api/v1" + path
}
