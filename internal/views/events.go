package views

import (
	"cmp"
	"slices"

	"github.com/paaskampf/scoreboard/internal/scoreboard"
)

const (
	unknownName  = "?"
	unknownColor = "#666"
)

// Podium is one place in an event's top three.
type Podium struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Score int    `json:"score"`
}

// EventSummary is one card of the events overview.
type EventSummary struct {
	Event scoreboard.Event `json:"event"`
	Top   []Podium         `json:"top"`
}

// TopThree ranks each event's rows with that event's own ordering and keeps
// the best three. Rows of players missing from players are shown as "?".
func TopThree(events []scoreboard.Event, players []scoreboard.Player, scores []scoreboard.EventScore) []EventSummary {
	byID := make(map[string]scoreboard.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	out := make([]EventSummary, 0, len(events))
	for _, e := range events {
		var rows []scoreboard.EventScore
		for _, es := range scores {
			if es.EventID == e.ID {
				rows = append(rows, es)
			}
		}
		slices.SortStableFunc(rows, func(a, b scoreboard.EventScore) int {
			if e.ReverseScoring {
				return cmp.Compare(a.Score, b.Score)
			}
			return cmp.Compare(b.Score, a.Score)
		})

		top := []Podium{}
		for _, es := range rows[:min(3, len(rows))] {
			pod := Podium{Name: unknownName, Color: unknownColor, Score: es.Score}
			if p, ok := byID[es.PlayerID]; ok {
				pod.Name, pod.Color = p.Name, p.Color
			}
			top = append(top, pod)
		}
		out = append(out, EventSummary{Event: e, Top: top})
	}
	return out
}

// LeaderWatcher detects when a different player takes the lead on global
// score. The zero value knows no previous leader.
type LeaderWatcher struct {
	prev  string
	known bool
}

// Observe records the current leader of players and reports it when it
// replaced a known previous leader with a score above zero.
func (w *LeaderWatcher) Observe(players []scoreboard.Player) (scoreboard.Player, bool) {
	if len(players) == 0 {
		return scoreboard.Player{}, false
	}
	leader := players[0]
	for _, p := range players[1:] {
		if p.Score > leader.Score {
			leader = p
		}
	}

	changed := w.known && w.prev != "" && leader.ID != w.prev && leader.Score > 0
	w.prev, w.known = leader.ID, true
	return leader, changed
}
