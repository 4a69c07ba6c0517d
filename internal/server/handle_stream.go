package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/paaskampf/scoreboard/internal/state"
	"github.com/paaskampf/scoreboard/internal/views"
)

func controlState(cache *state.Cache) func() any {
	return func() any { return newStateResponse(cache.Snapshot()) }
}

func liveState(cache *state.Cache) func() any {
	return func() any { return views.NewBoard(cache.Snapshot()) }
}

// handleStream sends the current state, then every event published on
// channel, until the client goes away.
func handleStream(broker *Broker, channel string, current func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		ch := broker.Subscribe(channel)
		defer broker.Unsubscribe(channel, ch)

		initial, err := json.Marshal(current())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to encode state")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		fmt.Fprintf(w, "event: state\ndata: %s\n\n", initial)
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev := <-ch:
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, ev.Data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
