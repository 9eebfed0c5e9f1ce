package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/fitscan/fitscan-backend/internal/config"
	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/fitscan/fitscan-backend/internal/mail"
	"github.com/fitscan/fitscan-backend/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrMalformedCode   = errors.New("code must be 6 digits")
	ErrCodeNotFound    = errors.New("no login code found")
	ErrCodeExpired     = errors.New("login code expired")
	ErrCodeMismatch    = errors.New("incorrect login code")
	ErrTooManyAttempts = errors.New("too many verification attempts")
)

type AuthService struct {
	userRepo    repository.UserRepository
	codeRepo    repository.LoginCodeRepository
	sessionRepo repository.SessionRepository
	tx          repository.Transactor
	mailer      mail.Mailer
	cfg         *config.Config
}

func NewAuthService(repos *repository.Repositories, tx repository.Transactor, mailer mail.Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:    repos.User,
		codeRepo:    repos.LoginCode,
		sessionRepo: repos.Session,
		tx:          tx,
		mailer:      mailer,
		cfg:         cfg,
	}
}

// AuthResult carries the verified user and the raw session token. The token
// is never persisted; only its hash lands in the sessions table.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NormalizeEmail applies the same normalization used on both issue and verify.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RequestCode issues a fresh login code for the email and dispatches it via
// the mail collaborator. A new row is appended even when an unexpired code
// already exists; verification only ever reads the newest row.
func (s *AuthService) RequestCode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}

	code, err := generateNumericCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	record := &domain.LoginCode{
		ID:        uuid.New(),
		Email:     email,
		CodeHash:  string(codeHash),
		Attempts:  0,
		ExpiresAt: time.Now().Add(s.cfg.CodeTTL),
		CreatedAt: time.Now(),
	}
	if err := s.codeRepo.Create(ctx, record); err != nil {
		return err
	}

	if err := s.mailer.SendLoginCode(ctx, email, code); err != nil {
		log.Printf("ERROR [AuthService.RequestCode] mail delivery failed: %v", err)
		return err
	}
	return nil
}

// VerifyCode checks a submitted code against the newest stored hash. On match
// it upserts the user, consumes every pending code for the email and mints a
// session, all inside one transaction so a code cannot be spent twice.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)

	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(code) != 6 {
		return nil, ErrMalformedCode
	}

	var (
		result     *AuthResult
		mismatchID uuid.UUID
	)

	err := s.tx.WithinTransaction(ctx, func(repos *repository.Repositories) error {
		record, err := repos.LoginCode.GetLatestByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCodeNotFound
			}
			return err
		}

		if time.Now().After(record.ExpiresAt) {
			return ErrCodeExpired
		}
		if record.Attempts >= s.cfg.MaxCodeAttempts {
			return ErrTooManyAttempts
		}

		if bcrypt.CompareHashAndPassword([]byte(record.CodeHash), []byte(code)) != nil {
			mismatchID = record.ID
			return ErrCodeMismatch
		}

		user, err := repos.User.UpsertByEmail(ctx, email)
		if err != nil {
			return err
		}

		// One-shot use: every pending code for this email is consumed.
		if err := repos.LoginCode.DeleteByEmail(ctx, email); err != nil {
			return err
		}

		result, err = createSession(ctx, repos.Session, user, s.cfg.SessionTTL)
		return err
	})

	if errors.Is(err, ErrCodeMismatch) {
		// The failed attempt still counts; the increment happens outside the
		// rolled-back transaction.
		if incErr := s.codeRepo.IncrementAttempts(ctx, mismatchID); incErr != nil {
			log.Printf("ERROR [AuthService.VerifyCode] failed to record attempt: %v", incErr)
		}
		return nil, ErrCodeMismatch
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ResolveSession maps a raw cookie token back to a user. Unknown and expired
// tokens both resolve to no user; expired rows are not purged here.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.GetByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, nil
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Logout deletes the session matching the token, if any.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessionRepo.DeleteByTokenHash(ctx, hashToken(token))
}

func createSession(ctx context.Context, sessions repository.SessionRepository, user *domain.User, ttl time.Duration) (*AuthResult, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	token := hex.EncodeToString(raw)
	expiresAt := time.Now().Add(ttl)

	session := &domain.Session{
		ID:        uuid.New(),
		TokenHash: hashToken(token),
		UserID:    user.ID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	if err := sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// hashToken is deterministic so sessions can be looked up by hash; bcrypt
// cannot serve that.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// generateNumericCode draws a uniform 6-digit code from crypto/rand.
func generateNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
