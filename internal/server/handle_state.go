package server

import (
	"log/slog"
	"net/http"

	"github.com/paaskampf/scoreboard/internal/actions"
	"github.com/paaskampf/scoreboard/internal/scoreboard"
	"github.com/paaskampf/scoreboard/internal/state"
	"github.com/paaskampf/scoreboard/internal/views"
)

// StateResponse is the controller's view: the cache snapshot plus the
// rankings derived from it.
type StateResponse struct {
	state.Snapshot
	Leaderboard []views.Entry    `json:"leaderboard"`
	Zones       []views.TeamZone `json:"zones"`
	Unassigned  []views.Entry    `json:"unassigned"`
	QuickScores []int            `json:"quick_scores"`
}

func newStateResponse(s state.Snapshot) StateResponse {
	zones, unassigned := views.Membership(s)
	return StateResponse{
		Snapshot:    s,
		Leaderboard: views.Leaderboard(s),
		Zones:       zones,
		Unassigned:  unassigned,
		QuickScores: scoreboard.QuickScores,
	}
}

type NameRequest struct {
	Name string `json:"name"`
}

func handleState(cache *state.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newStateResponse(cache.Snapshot()))
	}
}

// handleReload discards the cache and loads everything from the store again.
func handleReload(svc *actions.Service, cache *state.Cache, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Load(r.Context()); err != nil {
			writeActionError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newStateResponse(cache.Snapshot()))
	}
}

func handleCreateWeekend(svc *actions.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req NameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		wk, err := svc.CreateWeekend(r.Context(), req.Name)
		if err != nil {
			writeActionError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, wk)
	}
}

// handleStart only validates; the scoreboard view itself is client-side.
func handleStart(svc *actions.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ValidateStart(); err != nil {
			writeActionError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
