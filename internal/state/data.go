package state

import (
	"github.com/paaskampf/scoreboard/internal/ordered"
	"github.com/paaskampf/scoreboard/internal/scoreboard"
)

// Data is the cache content. It is only reachable inside Cache.Update, so
// every method here runs with the cache lock held.
//
// Teams holds the teams of the current selection: the event-scoped teams of
// the active event, or the default teams when no event is active.
// EventScores holds the rows of the active event only, keyed by row id.
type Data struct {
	Weekend       *scoreboard.Weekend
	Players       *ordered.Map[string, scoreboard.Player]
	Teams         *ordered.Map[string, scoreboard.Team]
	Events        *ordered.Map[string, scoreboard.Event]
	ActiveEventID string
	EventScores   *ordered.Map[string, scoreboard.EventScore]
}

func newData() *Data {
	return &Data{
		Players:     ordered.New[string, scoreboard.Player](),
		Teams:       ordered.New[string, scoreboard.Team](),
		Events:      ordered.New[string, scoreboard.Event](),
		EventScores: ordered.New[string, scoreboard.EventScore](),
	}
}

// Reset empties the cache and points it at w, which may be nil.
func (d *Data) Reset(w *scoreboard.Weekend) {
	d.Weekend = w
	d.Players.Clear()
	d.Teams.Clear()
	d.Events.Clear()
	d.ActiveEventID = ""
	d.EventScores.Clear()
}

func (d *Data) WeekendID() string {
	if d.Weekend == nil {
		return ""
	}
	return d.Weekend.ID
}

// ActiveEvent resolves the selection against Events so flags are never stale.
func (d *Data) ActiveEvent() (scoreboard.Event, bool) {
	if d.ActiveEventID == "" {
		return scoreboard.Event{}, false
	}
	return d.Events.Get(d.ActiveEventID)
}

// Select switches the active event and drops the rows of the previous
// selection. The caller refills Teams and EventScores.
func (d *Data) Select(eventID string) {
	d.ActiveEventID = eventID
	d.Teams.Clear()
	d.EventScores.Clear()
}

func (d *Data) UpsertPlayer(p scoreboard.Player) {
	d.Players.Set(p.ID, p)
}

// DeletePlayer removes the player and its rows in the active event.
func (d *Data) DeletePlayer(id string) {
	d.Players.Delete(id)
	d.EventScores.DeleteFunc(func(es scoreboard.EventScore) bool {
		return es.PlayerID == id
	})
}

func (d *Data) UpsertTeam(t scoreboard.Team) {
	d.Teams.Set(t.ID, t)
}

// DeleteTeam removes the team and clears every membership pointing at it.
func (d *Data) DeleteTeam(id string) {
	d.Teams.Delete(id)
	d.Players.Update(func(p scoreboard.Player) scoreboard.Player {
		if p.TeamOf(id) {
			p.TeamID = nil
		}
		return p
	})
	d.EventScores.Update(func(es scoreboard.EventScore) scoreboard.EventScore {
		if es.TeamOf(id) {
			es.TeamID = nil
		}
		return es
	})
}

func (d *Data) UpsertEvent(e scoreboard.Event) {
	d.Events.Set(e.ID, e)
}

// DeleteEvent removes the event. When it was the active one the selection is
// cleared together with its scores and teams, and true is returned.
func (d *Data) DeleteEvent(id string) bool {
	d.Events.Delete(id)
	if d.ActiveEventID != id || id == "" {
		return false
	}
	d.Select("")
	return true
}

func (d *Data) UpsertEventScore(es scoreboard.EventScore) {
	d.EventScores.Set(es.ID, es)
}

func (d *Data) DeleteEventScore(id string) {
	d.EventScores.Delete(id)
}

// EventScoreFor returns the active event's row for playerID.
func (d *Data) EventScoreFor(playerID string) (scoreboard.EventScore, bool) {
	for _, es := range d.EventScores.Values() {
		if es.PlayerID == playerID {
			return es, true
		}
	}
	return scoreboard.EventScore{}, false
}

// Members returns the ids of the players on teamID under the current mode:
// event-scoped membership when an event is active, else the players' own team.
func (d *Data) Members(teamID string) []string {
	var ids []string
	if d.ActiveEventID != "" {
		for _, es := range d.EventScores.Values() {
			if es.TeamOf(teamID) {
				ids = append(ids, es.PlayerID)
			}
		}
		return ids
	}
	for _, p := range d.Players.Values() {
		if p.TeamOf(teamID) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (d *Data) PlayerIDs() []string {
	ids := make([]string, 0, d.Players.Len())
	for _, p := range d.Players.Values() {
		ids = append(ids, p.ID)
	}
	return ids
}

func (d *Data) PlayerColors() []string {
	var used []string
	for _, p := range d.Players.Values() {
		used = append(used, p.Color)
	}
	return used
}

func (d *Data) TeamColors() []string {
	var used []string
	for _, t := range d.Teams.Values() {
		used = append(used, t.Color)
	}
	return used
}
