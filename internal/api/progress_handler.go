package api

import (
	"net/http"

	"github.com/lexora-app/mastery-api/internal/api/shared"
	"github.com/lexora-app/mastery-api/internal/service/reward"
	"github.com/lexora-app/mastery-api/internal/service/session"
)

// ProgressHandler handles learner progress API requests.
type ProgressHandler struct {
	ledger *reward.Ledger
	runner *session.Runner
}

// NewProgressHandler creates a new ProgressHandler with the given dependencies.
func NewProgressHandler(ledger *reward.Ledger, runner *session.Runner) *ProgressHandler {
	return &ProgressHandler{
		ledger: ledger,
		runner: runner,
	}
}

// Get handles GET /progress.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	progress, err := h.ledger.Totals(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progress)
}

// DailyLogin handles POST /progress/daily-login.
func (h *ProgressHandler) DailyLogin(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	result, err := h.runner.DailyLogin(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record daily login")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Reset handles POST /progress/reset.
func (h *ProgressHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	progress, err := h.runner.ResetProgress(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reset progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progress)
}
