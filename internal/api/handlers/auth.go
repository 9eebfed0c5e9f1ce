package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/fitscan/fitscan-backend/internal/api/middleware"
	"github.com/fitscan/fitscan-backend/internal/config"
	"github.com/fitscan/fitscan-backend/internal/service"
)

type AuthHandler struct {
	authService        *service.AuthService
	entitlementService *service.EntitlementService
	cfg                *config.Config
}

func NewAuthHandler(authService *service.AuthService, entitlementService *service.EntitlementService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:        authService,
		entitlementService: entitlementService,
		cfg:                cfg,
	}
}

type RequestCodeRequest struct {
	Email string `json:"email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req RequestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.RequestCode(r.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			writeError(w, http.StatusBadRequest, "Invalid email address")
			return
		}
		log.Printf("ERROR [AuthHandler.RequestCode] %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to send code")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrMalformedCode):
			writeError(w, http.StatusBadRequest, "Invalid email or code format")
		case errors.Is(err, service.ErrCodeNotFound):
			writeError(w, http.StatusUnauthorized, "Code not found")
		case errors.Is(err, service.ErrCodeExpired):
			writeError(w, http.StatusUnauthorized, "Code expired")
		case errors.Is(err, service.ErrCodeMismatch):
			writeError(w, http.StatusUnauthorized, "Incorrect code")
		case errors.Is(err, service.ErrTooManyAttempts):
			writeError(w, http.StatusTooManyRequests, "Too many attempts")
		default:
			log.Printf("ERROR [AuthHandler.VerifyCode] %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Token, result.ExpiresAt))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"user": UserResponse{ID: result.User.ID.String(), Email: result.User.Email},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.ReadSessionToken(r)
	if err := h.authService.Logout(r.Context(), token); err != nil {
		log.Printf("ERROR [AuthHandler.Logout] %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, h.expiredSessionCookie())
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me resolves the cookie itself instead of using the auth middleware: an
// anonymous caller gets 200 with a null user, never a 401.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := middleware.ReadSessionToken(r)

	user, err := h.authService.ResolveSession(r.Context(), token)
	if err != nil {
		log.Printf("ERROR [AuthHandler.Me] %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if user == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"user":         nil,
			"premium":      false,
			"subscription": nil,
		})
		return
	}

	sub, premium, err := h.entitlementService.Resolve(r.Context(), user.ID)
	if err != nil {
		log.Printf("ERROR [AuthHandler.Me] entitlement lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":         UserResponse{ID: user.ID.String(), Email: user.Email},
		"premium":      premium,
		"subscription": sub,
	})
}

func (h *AuthHandler) sessionCookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) expiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}
