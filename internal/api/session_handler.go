package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/lexora-app/mastery-api/internal/api/shared"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/service/session"
)

// SessionHandler handles practice session API requests.
type SessionHandler struct {
	runner    *session.Runner
	validator *validator.Validate
}

// NewSessionHandler creates a new SessionHandler with the given dependencies.
func NewSessionHandler(runner *session.Runner) *SessionHandler {
	return &SessionHandler{
		runner:    runner,
		validator: validator.New(),
	}
}

// Complete handles POST /sessions.
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req SessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.runner.CompleteSession(
		r.Context(),
		userID,
		domain.SessionKind(req.Kind),
		req.WordsStudied,
		req.Accuracy,
		req.DurationSeconds,
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, result)
}

// Browse handles POST /sessions/browse.
func (h *SessionHandler) Browse(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req BrowseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.runner.SectionBrowsed(r.Context(), userID, req.SectionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record section browse")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
