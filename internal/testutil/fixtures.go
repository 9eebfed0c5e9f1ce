package testutil

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/fitscan/fitscan-backend/internal/api/middleware"
	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email: fmt.Sprintf("user_%s@example.com", uuid.New().String()[:8]),
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// Build creates the user in the database
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:        uuid.New(),
		Email:     b.email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// LoginCodeBuilder seeds login_codes rows directly
type LoginCodeBuilder struct {
	email     string
	code      string
	attempts  int
	expiresAt time.Time
	createdAt time.Time
}

func NewLoginCodeBuilder() *LoginCodeBuilder {
	return &LoginCodeBuilder{
		email:     fmt.Sprintf("user_%s@example.com", uuid.New().String()[:8]),
		code:      "123456",
		expiresAt: time.Now().Add(10 * time.Minute),
		createdAt: time.Now(),
	}
}

func (b *LoginCodeBuilder) WithEmail(email string) *LoginCodeBuilder {
	b.email = email
	return b
}

func (b *LoginCodeBuilder) WithCode(code string) *LoginCodeBuilder {
	b.code = code
	return b
}

func (b *LoginCodeBuilder) WithAttempts(attempts int) *LoginCodeBuilder {
	b.attempts = attempts
	return b
}

func (b *LoginCodeBuilder) WithExpiresAt(at time.Time) *LoginCodeBuilder {
	b.expiresAt = at
	return b
}

func (b *LoginCodeBuilder) WithCreatedAt(at time.Time) *LoginCodeBuilder {
	b.createdAt = at
	return b
}

// Build creates the login code row and returns it with the raw code
func (b *LoginCodeBuilder) Build(t *testing.T, db *gorm.DB) (*domain.LoginCode, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(b.code), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash code: %v", err)
	}

	record := &domain.LoginCode{
		ID:        uuid.New(),
		Email:     b.email,
		CodeHash:  string(hash),
		Attempts:  b.attempts,
		ExpiresAt: b.expiresAt,
		CreatedAt: b.createdAt,
	}

	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to create login code: %v", err)
	}

	return record, b.code
}

// SessionBuilder seeds sessions rows directly
type SessionBuilder struct {
	user      *domain.User
	expiresAt time.Time
}

func NewSessionBuilder() *SessionBuilder {
	return &SessionBuilder{
		expiresAt: time.Now().Add(30 * 24 * time.Hour),
	}
}

func (b *SessionBuilder) WithUser(user *domain.User) *SessionBuilder {
	b.user = user
	return b
}

func (b *SessionBuilder) WithExpiresAt(at time.Time) *SessionBuilder {
	b.expiresAt = at
	return b
}

// Build creates the session row and returns it with the raw token
func (b *SessionBuilder) Build(t *testing.T, db *gorm.DB) (*domain.Session, string) {
	t.Helper()

	if b.user == nil {
		b.user = NewUserBuilder().Build(t, db)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	token := hex.EncodeToString(raw)
	sum := sha256.Sum256([]byte(token))

	session := &domain.Session{
		ID:        uuid.New(),
		TokenHash: hex.EncodeToString(sum[:]),
		UserID:    b.user.ID,
		ExpiresAt: b.expiresAt,
		CreatedAt: time.Now(),
	}

	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	return session, token
}

// SubscriptionBuilder seeds subscriptions rows directly
type SubscriptionBuilder struct {
	userID     uuid.UUID
	status     domain.SubscriptionStatus
	plan       string
	customerID string
}

func NewSubscriptionBuilder() *SubscriptionBuilder {
	return &SubscriptionBuilder{
		status:     domain.SubscriptionStatusActive,
		plan:       "monthly",
		customerID: fmt.Sprintf("cus_%s", uuid.New().String()[:8]),
	}
}

func (b *SubscriptionBuilder) WithUserID(userID uuid.UUID) *SubscriptionBuilder {
	b.userID = userID
	return b
}

func (b *SubscriptionBuilder) WithStatus(status domain.SubscriptionStatus) *SubscriptionBuilder {
	b.status = status
	return b
}

func (b *SubscriptionBuilder) WithCustomerID(customerID string) *SubscriptionBuilder {
	b.customerID = customerID
	return b
}

func (b *SubscriptionBuilder) Build(t *testing.T, db *gorm.DB) *domain.Subscription {
	t.Helper()

	sub := &domain.Subscription{
		ID:               uuid.New(),
		UserID:           b.userID,
		Status:           b.status,
		Plan:             b.plan,
		StripeCustomerID: b.customerID,
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}

	return sub
}

// UsageLogBuilder seeds usage_logs rows directly
type UsageLogBuilder struct {
	userID     uuid.UUID
	actionType domain.ActionType
	createdAt  time.Time
}

func NewUsageLogBuilder() *UsageLogBuilder {
	return &UsageLogBuilder{
		actionType: domain.ActionScan,
		createdAt:  time.Now(),
	}
}

func (b *UsageLogBuilder) WithUserID(userID uuid.UUID) *UsageLogBuilder {
	b.userID = userID
	return b
}

func (b *UsageLogBuilder) WithType(actionType domain.ActionType) *UsageLogBuilder {
	b.actionType = actionType
	return b
}

func (b *UsageLogBuilder) WithCreatedAt(at time.Time) *UsageLogBuilder {
	b.createdAt = at
	return b
}

func (b *UsageLogBuilder) Build(t *testing.T, db *gorm.DB) *domain.UsageLog {
	t.Helper()

	entry := &domain.UsageLog{
		ID:         uuid.New(),
		UserID:     b.userID,
		ActionType: b.actionType,
		CreatedAt:  b.createdAt,
	}

	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create usage log: %v", err)
	}

	return entry
}

// Authenticate runs the full request-code/verify-code flow against the test
// server and returns the user info and session cookie.
func Authenticate(t *testing.T, ts *TestServer, email string) (UserResponse, *http.Cookie) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"email": email})
	resp, err := http.Post(ts.APIURL("/auth/request-code"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("request-code failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("request-code returned status %d", resp.StatusCode)
	}

	code := ts.Mailer.LastCode(email)
	if code == "" {
		t.Fatalf("no code captured for %s", email)
	}

	body, _ = json.Marshal(map[string]string{"email": email, "code": code})
	resp, err = http.Post(ts.APIURL("/auth/verify-code"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("verify-code failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify-code returned status %d", resp.StatusCode)
	}

	var verifyResp struct {
		OK   bool         `json:"ok"`
		User UserResponse `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&verifyResp); err != nil {
		t.Fatalf("failed to decode verify response: %v", err)
	}

	cookie := SessionCookie(resp)
	if cookie == nil {
		t.Fatal("no session cookie returned by verify-code")
	}

	return verifyResp.User, cookie
}

// UserResponse matches the API's user payload
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SessionCookie extracts the session cookie from a response, or nil
func SessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

// StripeSignature computes a valid Stripe-Signature header for a payload
func StripeSignature(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
