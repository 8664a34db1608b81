package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"spellstreak/internal/service"
)

// ReviewHandler serves the spaced-repetition word book.
type ReviewHandler struct {
	reviewService *service.ReviewService
	validate      *validator.Validate
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviewService *service.ReviewService, validate *validator.Validate) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, validate: validate}
}

type attemptRequest struct {
	Word           string `json:"word" validate:"required,max=64"`
	Category       string `json:"category" validate:"required,max=64"`
	Correct        bool   `json:"correct"`
	ResponseTimeMs int64  `json:"responseTimeMs" validate:"gte=0"`
	Typed          string `json:"typed" validate:"max=64"`
}

// RecordAttempt handles POST /api/review/attempts.
func (h *ReviewHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	var req attemptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	record := h.reviewService.RecordAttempt(
		identity.UID, req.Word, req.Category, req.Correct, req.ResponseTimeMs, req.Typed,
	)
	writeJSON(w, http.StatusOK, record)
}

// ReviewQueue handles GET /api/review/queue.
func (h *ReviewHandler) ReviewQueue(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	queue := h.reviewService.ReviewQueue(identity.UID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"queue": queue})
}

// WeakCategories handles GET /api/review/weak-categories.
func (h *ReviewHandler) WeakCategories(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	weak := h.reviewService.WeakCategories(identity.UID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": weak})
}

// MasteredCount handles GET /api/review/mastered.
func (h *ReviewHandler) MasteredCount(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	count := h.reviewService.MasteredCount(identity.UID)
	writeJSON(w, http.StatusOK, map[string]int{"mastered": count})
}

// RecentAttempts handles GET /api/review/recent.
func (h *ReviewHandler) RecentAttempts(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	attempts := h.reviewService.RecentAttempts(identity.UID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"attempts": attempts})
}
