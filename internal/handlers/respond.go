package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"spellstreak/internal/match"
	"spellstreak/internal/repository"
	"spellstreak/internal/security"
	"spellstreak/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps service errors to HTTP statuses. Unknown errors are
// logged and reported as a bare 500 so internals don't leak.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, match.ErrNotSignedIn), errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, match.ErrNotHost):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, match.ErrRoomNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, match.ErrRoomFull), errors.Is(err, match.ErrAlreadyStarted),
		errors.Is(err, service.ErrEmailTaken), errors.Is(err, repository.ErrUpdateConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, match.ErrBadRound), errors.Is(err, match.ErrNotPlaying),
		errors.Is(err, match.ErrNotInRoom):
		status, msg = http.StatusBadRequest, err.Error()
	default:
		slog.Error("request failed", "error", err)
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON parses the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
