package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paaskampf/scoreboard/internal/actions"
	"github.com/paaskampf/scoreboard/internal/state"
)

var (
	demoPlayers = []string{"Anna", "Bram", "Cas", "Dewi", "Eva", "Finn"}
	demoTeams   = []string{"Rood", "Blauw"}
)

// SeedDemo creates a demo weekend with players and teams when the store has
// no active weekend. It does nothing otherwise.
func SeedDemo(ctx context.Context, logger *slog.Logger, svc *actions.Service, cache *state.Cache) error {
	if weekendID, _ := cache.Selection(); weekendID != "" {
		return nil
	}

	wk, err := svc.CreateWeekend(ctx, "Demo weekend")
	if err != nil {
		return fmt.Errorf("seeding weekend: %w", err)
	}
	for _, name := range demoPlayers {
		if _, err := svc.AddPlayer(ctx, name, ""); err != nil {
			return fmt.Errorf("seeding player %s: %w", name, err)
		}
	}
	for _, name := range demoTeams {
		if _, err := svc.AddTeam(ctx, name, ""); err != nil {
			return fmt.Errorf("seeding team %s: %w", name, err)
		}
	}
	logger.Info("seeded demo weekend", "weekend_id", wk.ID, "players", len(demoPlayers))
	return nil
}
