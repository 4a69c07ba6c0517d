package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paaskampf/scoreboard/internal/actions"
)

type AddRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type AssignTeamRequest struct {
	TeamID string `json:"team_id"`
}

type ScoreRequest struct {
	Points int `json:"points"`
}

func handleAddPlayer(svc *actions.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		p, err := svc.AddPlayer(r.Context(), req.Name, req.Color)
		if err != nil {
			writeActionError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func handleRemovePlayer(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.RemovePlayer(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleAssignTeam moves a player; an empty team_id unassigns.
func handleAssignTeam(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AssignTeamRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		svc.AssignTeam(chi.URLParam(r, "id"), req.TeamID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleScorePlayer(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScoreRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		svc.ScorePlayer(chi.URLParam(r, "id"), req.Points)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleAddTeam(svc *actions.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		t, err := svc.AddTeam(r.Context(), req.Name, req.Color)
		if err != nil {
			writeActionError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

func handleRemoveTeam(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.RemoveTeam(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleScoreTeam(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScoreRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		svc.ScoreTeam(chi.URLParam(r, "id"), req.Points)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleResetScores(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.ResetScores()
		w.WriteHeader(http.StatusNoContent)
	}
}
