package realtime

import (
	"github.com/paaskampf/scoreboard/internal/remote"
	"github.com/paaskampf/scoreboard/internal/scoreboard"
	"github.com/paaskampf/scoreboard/internal/state"
)

// The merge functions are idempotent: an insert or update replaces the row
// by id, a delete of an absent row changes nothing. Each reports whether the
// cache changed.

func mergePlayer(d *state.Data, op remote.Op, p scoreboard.Player) bool {
	if op == remote.OpDelete {
		if !d.Players.Has(p.ID) {
			return false
		}
		d.DeletePlayer(p.ID)
		return true
	}
	if p.WeekendID != d.WeekendID() {
		return false
	}
	d.UpsertPlayer(p)
	return true
}

// mergeTeam filters client-side: team notifications arrive for every
// weekend, and only teams of the current selection are held.
func mergeTeam(d *state.Data, op remote.Op, t scoreboard.Team) bool {
	if op == remote.OpDelete {
		if !d.Teams.Has(t.ID) {
			return false
		}
		d.DeleteTeam(t.ID)
		return true
	}
	if t.WeekendID != d.WeekendID() || !t.InEvent(d.ActiveEventID) {
		return false
	}
	d.UpsertTeam(t)
	return true
}

// mergeEvent also reports whether a delete cleared the active event.
func mergeEvent(d *state.Data, op remote.Op, e scoreboard.Event) (changed, cleared bool) {
	if op == remote.OpDelete {
		if !d.Events.Has(e.ID) {
			return false, false
		}
		return true, d.DeleteEvent(e.ID)
	}
	if e.WeekendID != d.WeekendID() {
		return false, false
	}
	d.UpsertEvent(e)
	return true, false
}

func mergeEventScore(d *state.Data, op remote.Op, es scoreboard.EventScore) bool {
	if op == remote.OpDelete {
		if !d.EventScores.Has(es.ID) {
			return false
		}
		d.DeleteEventScore(es.ID)
		return true
	}
	if es.EventID != d.ActiveEventID || d.ActiveEventID == "" {
		return false
	}
	d.UpsertEventScore(es)
	return true
}
