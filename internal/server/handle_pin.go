package server

import (
	"net/http"
	"strings"
)

type PINRequest struct {
	PIN string `json:"pin"`
}

// handlePIN exchanges the PIN for a session cookie. The cookie has no expiry
// so it ends with the browser session.
func handlePIN(gate *PINGate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PINRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !gate.Verify(strings.TrimSpace(req.PIN)) {
			writeError(w, http.StatusUnauthorized, "wrong pin")
			return
		}

		token, err := gate.Issue()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create session")
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   r.TLS != nil,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}
