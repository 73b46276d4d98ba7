package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexora-app/mastery-api/internal/api/shared"
	"github.com/lexora-app/mastery-api/internal/service/scheduler"
	"github.com/lexora-app/mastery-api/internal/service/session"
)

// ReviewHandler handles card scheduling and review API requests.
type ReviewHandler struct {
	scheduler *scheduler.Scheduler
	runner    *session.Runner
}

// NewReviewHandler creates a new ReviewHandler with the given dependencies.
func NewReviewHandler(sched *scheduler.Scheduler, runner *session.Runner) *ReviewHandler {
	return &ReviewHandler{
		scheduler: sched,
		runner:    runner,
	}
}

// DueCards handles GET /sections/{sectionID}/cards/due.
func (h *ReviewHandler) DueCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	sectionID := chi.URLParam(r, "sectionID")
	if sectionID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Section ID is required")
		return
	}

	cards, err := h.scheduler.DueCards(r.Context(), userID, sectionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load due cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"section_id": sectionID,
		"cards":      cards,
	})
}

// SectionStats handles GET /sections/{sectionID}/stats.
func (h *ReviewHandler) SectionStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	sectionID := chi.URLParam(r, "sectionID")
	if sectionID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Section ID is required")
		return
	}

	stats, err := h.scheduler.Statistics(r.Context(), userID, sectionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load section statistics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// Review handles POST /cards/{wordID}/review.
func (h *ReviewHandler) Review(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	wordID := chi.URLParam(r, "wordID")
	if wordID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Word ID is required")
		return
	}

	var req ReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	result, err := h.runner.ReviewOutcome(r.Context(), userID, wordID, req.KnewIt, req.SectionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record review")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
