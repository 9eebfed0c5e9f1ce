package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/fitscan/fitscan-backend/internal/service"
)

// SessionCookieName is the single cookie this API issues and reads.
const SessionCookieName = "fitscan_session"

type contextKey string

const userKey contextKey = "user"

// ReadSessionToken extracts the raw session token from the request's cookie.
// Returns "" when the cookie is absent; callers treat that as no session.
func ReadSessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Auth resolves the session cookie to a user and rejects the request when no
// valid session exists. The token is passed explicitly into the service so
// session resolution stays testable without an HTTP layer.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ReadSessionToken(r)
			if token == "" {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			user, err := authService.ResolveSession(r.Context(), token)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] session resolution failed: %v", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the authenticated user placed in the context by Auth.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}
