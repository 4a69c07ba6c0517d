package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	svc := d.Actions
	liveURL := liveURL(d.PublicURL)

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Scoreboard API", "/openapi.json", "/docs"))

	// Public: PIN entry and the live view.
	r.Post("/api/pin", handlePIN(d.Gate))
	r.Get("/api/live", handleLive(d.Cache))
	r.Get("/api/live/stream", handleStream(d.Stream, channelLive, liveState(d.Cache)))

	// Everything else requires a PIN session.
	r.Group(func(r chi.Router) {
		r.Use(requirePIN(d.Gate))

		r.Get("/api/state", handleState(d.Cache))
		r.Post("/api/reload", handleReload(svc, d.Cache, logger))
		r.Post("/api/weekend", handleCreateWeekend(svc, logger))
		r.Post("/api/start", handleStart(svc, logger))
		r.Get("/api/stream", handleStream(d.Stream, channelControl, controlState(d.Cache)))

		r.Post("/api/players", handleAddPlayer(svc, logger))
		r.Delete("/api/players/{id}", handleRemovePlayer(svc))
		r.Put("/api/players/{id}/team", handleAssignTeam(svc))
		r.Post("/api/players/{id}/score", handleScorePlayer(svc))

		r.Post("/api/teams", handleAddTeam(svc, logger))
		r.Delete("/api/teams/{id}", handleRemoveTeam(svc))
		r.Post("/api/teams/{id}/score", handleScoreTeam(svc))

		r.Post("/api/events", handleCreateEvent(svc, logger))
		r.Get("/api/events/overview", handleEventOverview(svc, logger))
		r.Put("/api/events/active", handleSetActiveEvent(svc, d.Cache, logger))
		r.Post("/api/events/active/counts-for-total", handleToggleCountsForTotal(svc))
		r.Post("/api/events/active/reverse-scoring", handleToggleReverseScoring(svc))
		r.Delete("/api/events/{id}", handleRemoveEvent(svc, logger))

		r.Post("/api/scores/reset", handleResetScores(svc))

		r.Get("/api/tv", handleTV(d.Cache, liveURL))
		r.Get("/api/tv/qr.png", handleTVQR(liveURL, logger))
	})

	if d.SPADir != "" {
		if info, err := os.Stat(d.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", d.SPADir)
			r.NotFound(handleSPA(d.SPADir))
		}
	}
}
