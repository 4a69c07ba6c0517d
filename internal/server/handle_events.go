package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paaskampf/scoreboard/internal/actions"
	"github.com/paaskampf/scoreboard/internal/state"
)

// CreateEventRequest creates an event. CountsForTotal defaults to true.
type CreateEventRequest struct {
	Name           string `json:"name"`
	CountsForTotal *bool  `json:"counts_for_total,omitempty"`
	ReverseScoring bool   `json:"reverse_scoring,omitempty"`
}

// SetActiveEventRequest selects an event; an empty event_id leaves event mode.
type SetActiveEventRequest struct {
	EventID string `json:"event_id"`
}

func handleCreateEvent(svc *actions.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateEventRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		opts := actions.EventOptions{CountsForTotal: true, ReverseScoring: req.ReverseScoring}
		if req.CountsForTotal != nil {
			opts.CountsForTotal = *req.CountsForTotal
		}
		e, err := svc.CreateEvent(r.Context(), req.Name, opts)
		if err != nil {
			writeActionError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

func handleRemoveEvent(svc *actions.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.RemoveEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeActionError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSetActiveEvent(svc *actions.Service, cache *state.Cache, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetActiveEventRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := svc.SetActiveEvent(r.Context(), req.EventID); err != nil {
			writeActionError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newStateResponse(cache.Snapshot()))
	}
}

func handleToggleCountsForTotal(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.ToggleCountsForTotal()
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleToggleReverseScoring(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.ToggleReverseScoring()
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleEventOverview(svc *actions.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := svc.EventOverview(r.Context())
		if err != nil {
			writeActionError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}
