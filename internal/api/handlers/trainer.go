package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/fitscan/fitscan-backend/internal/api/middleware"
	"github.com/fitscan/fitscan-backend/internal/service"
)

type TrainerHandler struct {
	trainerService *service.TrainerService
}

func NewTrainerHandler(trainerService *service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

type ScanRequest struct {
	Image string `json:"image"`
}

func (h *TrainerHandler) Scan(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	analysis, err := h.trainerService.ScanMachine(r.Context(), user.ID, req.Image)
	if err != nil {
		h.writeTrainerError(w, "Scan", err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func (h *TrainerHandler) GenerateWorkout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	plan, err := h.trainerService.GenerateWorkout(r.Context(), user.ID)
	if err != nil {
		h.writeTrainerError(w, "GenerateWorkout", err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

func (h *TrainerHandler) ScanHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, offset := pagination(r)
	records, err := h.trainerService.ScanHistory(r.Context(), user.ID, limit, offset)
	if err != nil {
		log.Printf("ERROR [TrainerHandler.ScanHistory] %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (h *TrainerHandler) WorkoutHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, offset := pagination(r)
	records, err := h.trainerService.WorkoutHistory(r.Context(), user.ID, limit, offset)
	if err != nil {
		log.Printf("ERROR [TrainerHandler.WorkoutHistory] %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (h *TrainerHandler) writeTrainerError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyImage):
		writeError(w, http.StatusBadRequest, "Image data is required")
	case errors.Is(err, service.ErrLimitReached):
		writeError(w, http.StatusTooManyRequests, "Usage limit reached")
	case errors.Is(err, service.ErrUpstream):
		writeError(w, http.StatusBadGateway, "AI service unavailable")
	default:
		log.Printf("ERROR [TrainerHandler.%s] %v", op, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
