package views

import "github.com/paaskampf/scoreboard/internal/state"

// Board is the read-only scoreboard shown on the TV and the public live page.
type Board struct {
	Version        uint64     `json:"version"`
	Weekend        string     `json:"weekend"`
	Event          string     `json:"event,omitempty"`
	ReverseScoring bool       `json:"reverse_scoring"`
	Ranking        []Entry    `json:"ranking"`
	Teams          []TeamZone `json:"teams"`
	Unassigned     []Entry    `json:"unassigned"`
}

// NewBoard builds the board for s. A snapshot without a weekend yields an
// empty board.
func NewBoard(s state.Snapshot) Board {
	b := Board{Version: s.Version, Ranking: Leaderboard(s)}
	if s.Weekend != nil {
		b.Weekend = s.Weekend.Name
	}
	if s.ActiveEvent != nil {
		b.Event = s.ActiveEvent.Name
		b.ReverseScoring = s.ActiveEvent.ReverseScoring
	}
	b.Teams, b.Unassigned = Membership(s)
	return b
}
