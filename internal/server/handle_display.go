package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/paaskampf/scoreboard/internal/state"
	"github.com/paaskampf/scoreboard/internal/views"
)

const qrSize = 256

// TVResponse is the big-screen layout: the ranking in two columns and a link
// to the live view.
type TVResponse struct {
	Version        uint64        `json:"version"`
	Weekend        string        `json:"weekend"`
	Event          string        `json:"event,omitempty"`
	ReverseScoring bool          `json:"reverse_scoring"`
	Left           []views.Entry `json:"left"`
	Right          []views.Entry `json:"right"`
	LiveURL        string        `json:"live_url"`
}

func liveURL(publicURL string) string {
	return strings.TrimRight(publicURL, "/") + "/live"
}

func handleLive(cache *state.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, views.NewBoard(cache.Snapshot()))
	}
}

func handleTV(cache *state.Cache, liveURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := views.NewBoard(cache.Snapshot())
		left, right := views.Columns(b.Ranking)
		writeJSON(w, http.StatusOK, TVResponse{
			Version:        b.Version,
			Weekend:        b.Weekend,
			Event:          b.Event,
			ReverseScoring: b.ReverseScoring,
			Left:           left,
			Right:          right,
			LiveURL:        liveURL,
		})
	}
}

func handleTVQR(liveURL string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		png, err := qrcode.Encode(liveURL, qrcode.Medium, qrSize)
		if err != nil {
			logger.Error("encoding qr code", "url", liveURL, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to render qr code")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(png)
	}
}
