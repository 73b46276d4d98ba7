package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexora-app/mastery-api/internal/api/shared"
	"github.com/lexora-app/mastery-api/internal/service/session"
	"github.com/lexora-app/mastery-api/internal/service/unlock"
)

// EntityHandler handles gated entity API requests.
type EntityHandler struct {
	gate   *unlock.Gate
	runner *session.Runner
}

// NewEntityHandler creates a new EntityHandler with the given dependencies.
func NewEntityHandler(gate *unlock.Gate, runner *session.Runner) *EntityHandler {
	return &EntityHandler{
		gate:   gate,
		runner: runner,
	}
}

// List handles GET /entities.
func (h *EntityHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	statuses, err := h.gate.UnlockState(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load entities")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"entities": statuses,
	})
}

// Get handles GET /entities/{entityID}.
func (h *EntityHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	entityID := chi.URLParam(r, "entityID")
	if entityID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Entity ID is required")
		return
	}

	status, err := h.gate.EntityState(r.Context(), userID, entityID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load entity")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// Unlock handles POST /entities/{entityID}/unlock.
func (h *EntityHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	entityID := chi.URLParam(r, "entityID")
	if entityID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Entity ID is required")
		return
	}

	result, err := h.runner.UnlockEntity(r.Context(), userID, entityID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to unlock entity")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
