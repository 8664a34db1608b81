package handlers

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"spellstreak/internal/service"
)

// MatchHandler serves the 1v1 match API. Room words (and with them the
// correct answers) are stripped from responses to players; submissions
// are checked server-side.
type MatchHandler struct {
	matchService *service.MatchService
	emailService *service.EmailService
	validate     *validator.Validate
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(matchService *service.MatchService, emailService *service.EmailService, validate *validator.Validate) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
		emailService: emailService,
		validate:     validate,
	}
}

// CreateRoom handles POST /api/rooms.
func (h *MatchHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	room, err := h.matchService.CreateRoom(r.Context(), identity.UID, identity.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, roomView(room, room.CurrentRound))
}

type joinRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// JoinRoom handles POST /api/rooms/join.
func (h *MatchHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	room, err := h.matchService.JoinRoom(r.Context(), normalizeCode(req.Code), identity.UID, identity.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomView(room, room.CurrentRound))
}

// StartMatch handles POST /api/rooms/{code}/start.
func (h *MatchHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	room, err := h.matchService.StartMatch(r.Context(), normalizeCode(r.PathValue("code")), identity.UID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomView(room, room.CurrentRound))
}

type answerRequest struct {
	Round    int    `json:"round" validate:"gte=0"`
	Spelling string `json:"spelling" validate:"max=64"`
}

// SubmitAnswer handles POST /api/rooms/{code}/answer.
func (h *MatchHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	room, err := h.matchService.SubmitAnswer(r.Context(), normalizeCode(r.PathValue("code")), identity.UID, req.Round, req.Spelling)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomView(room, room.CurrentRound))
}

// GetRoom handles GET /api/rooms/{code}.
func (h *MatchHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.matchService.GetRoom(r.Context(), normalizeCode(r.PathValue("code")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomView(room, room.CurrentRound))
}

type inviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Invite handles POST /api/rooms/{code}/invite: emails the room code to
// an opponent.
func (h *MatchHandler) Invite(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	code := normalizeCode(r.PathValue("code"))

	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	// Confirm the room exists before mailing its code around.
	if _, err := h.matchService.GetRoom(r.Context(), code); err != nil {
		writeError(w, err)
		return
	}

	if err := h.emailService.SendRoomInvite(r.Context(), req.Email, identity.DisplayName, code); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
