// Package livews pushes the scoreboard to public viewers over a WebSocket.
// The connection is read-only: anything the client sends closes it.
package livews

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/paaskampf/scoreboard/internal/state"
	"github.com/paaskampf/scoreboard/internal/views"
)

const writeTimeout = 5 * time.Second

type Handler struct {
	cache  *state.Cache
	logger *slog.Logger
}

func NewHandler(cache *state.Cache, logger *slog.Logger) *Handler {
	return &Handler{cache: cache, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/live", h.live)
	return r
}

// live sends the current board on connect and again after every cache change.
// Bursts of changes are coalesced into one message.
func (h *Handler) live(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())

	watch, stop := h.cache.Watch()
	defer stop()

	for {
		if err := h.send(ctx, conn); err != nil {
			h.logger.Debug("websocket write failed", "error", err)
			return
		}

		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "")
			return
		case <-watch:
		}
	}
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, views.NewBoard(h.cache.Snapshot()))
}
