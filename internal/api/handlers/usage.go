package handlers

import (
	"log"
	"net/http"

	"github.com/fitscan/fitscan-backend/internal/api/middleware"
	"github.com/fitscan/fitscan-backend/internal/service"
)

type UsageHandler struct {
	usageService       *service.UsageService
	entitlementService *service.EntitlementService
}

func NewUsageHandler(usageService *service.UsageService, entitlementService *service.EntitlementService) *UsageHandler {
	return &UsageHandler{usageService: usageService, entitlementService: entitlementService}
}

// Summary reports current counts against the caller's limit so the client
// can render its limit modal; enforcement itself happens server-side.
func (h *UsageHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	_, premium, err := h.entitlementService.Resolve(r.Context(), user.ID)
	if err != nil {
		log.Printf("ERROR [UsageHandler.Summary] %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	summary, err := h.usageService.Summary(r.Context(), user.ID, premium)
	if err != nil {
		log.Printf("ERROR [UsageHandler.Summary] %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
