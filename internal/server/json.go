package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/paaskampf/scoreboard/internal/actions"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeActionError maps a mutation failure to a status. Validation failures
// carry their message to the client; anything else is a store failure.
func writeActionError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, actions.ErrEmptyName), errors.Is(err, actions.ErrNotEnoughPlayers):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, actions.ErrNoWeekend):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, actions.ErrUnknownEvent):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error("remote store request failed", "error", err)
		writeError(w, http.StatusBadGateway, "remote store unavailable")
	}
}
