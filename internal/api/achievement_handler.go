package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexora-app/mastery-api/internal/api/shared"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/service/achievement"
	"github.com/lexora-app/mastery-api/internal/service/session"
)

// AchievementHandler handles achievement API requests.
type AchievementHandler struct {
	engine *achievement.Engine
	runner *session.Runner
}

// NewAchievementHandler creates a new AchievementHandler with the given dependencies.
func NewAchievementHandler(engine *achievement.Engine, runner *session.Runner) *AchievementHandler {
	return &AchievementHandler{
		engine: engine,
		runner: runner,
	}
}

// List handles GET /achievements, optionally filtered with ?category=.
func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var (
		statuses []*achievement.Status
		err      error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		statuses, err = h.engine.ByCategory(r.Context(), userID, domain.AchievementCategory(category))
	} else {
		statuses, err = h.engine.All(r.Context(), userID)
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load achievements")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"achievements": statuses,
	})
}

// Stats handles GET /achievements/stats.
func (h *AchievementHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.engine.Statistics(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load achievement statistics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// Claim handles POST /achievements/{achievementID}/claim.
func (h *AchievementHandler) Claim(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	achievementID := chi.URLParam(r, "achievementID")
	if achievementID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Achievement ID is required")
		return
	}

	result, err := h.runner.ClaimAchievement(r.Context(), userID, achievementID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to claim achievement")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"achievement_id": result.Definition.ID,
		"unlocked_at":    result.UnlockedAt,
		"points_awarded": result.PointsAwarded,
		"gems_awarded":   result.GemsAwarded,
	})
}
