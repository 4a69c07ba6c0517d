package server

import "net/http"

// requirePIN rejects requests without a valid session cookie.
func requirePIN(gate *PINGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(sessionCookie)
			if err != nil || !gate.Valid(c.Value) {
				writeError(w, http.StatusUnauthorized, "pin required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
