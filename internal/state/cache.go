// Package state holds the in-memory copy of the active weekend that every
// screen reads from.
package state

import (
	"sync"

	"github.com/paaskampf/scoreboard/internal/scoreboard"
)

// Cache is the single owned copy of the loaded weekend. Reads go through
// Snapshot; every write, local or from the change feed, goes through Update.
type Cache struct {
	mu       sync.Mutex
	data     *Data
	version  uint64
	watchers map[chan struct{}]struct{}
}

func New() *Cache {
	return &Cache{
		data:     newData(),
		watchers: make(map[chan struct{}]struct{}),
	}
}

// Update runs fn with exclusive access to the cache. When fn reports a change
// the version is bumped and watchers are woken.
func (c *Cache) Update(fn func(d *Data) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !fn(c.data) {
		return false
	}
	c.version++
	for ch := range c.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return true
}

// Watch returns a channel that receives a signal after each change. Signals
// coalesce, so a slow reader sees one wake-up for several changes and must
// take a fresh Snapshot.
func (c *Cache) Watch() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.watchers[ch] = struct{}{}
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		delete(c.watchers, ch)
		c.mu.Unlock()
	}
}

// Snapshot is a detached copy of the cache at one version.
type Snapshot struct {
	Version     uint64                  `json:"version"`
	Weekend     *scoreboard.Weekend     `json:"weekend"`
	Players     []scoreboard.Player     `json:"players"`
	Teams       []scoreboard.Team       `json:"teams"`
	Events      []scoreboard.Event      `json:"events"`
	ActiveEvent *scoreboard.Event       `json:"active_event"`
	EventScores []scoreboard.EventScore `json:"event_scores"`
}

func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.data
	s := Snapshot{
		Version:     c.version,
		Players:     d.Players.Values(),
		Teams:       d.Teams.Values(),
		Events:      d.Events.Values(),
		EventScores: d.EventScores.Values(),
	}
	if d.Weekend != nil {
		w := *d.Weekend
		s.Weekend = &w
	}
	if e, ok := d.ActiveEvent(); ok {
		s.ActiveEvent = &e
	}
	return s
}

// Selection returns the loaded weekend id and the active event id.
func (c *Cache) Selection() (weekendID, eventID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data.WeekendID(), c.data.ActiveEventID
}

func (s Snapshot) Player(id string) (scoreboard.Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return scoreboard.Player{}, false
}

func (s Snapshot) Team(id string) (scoreboard.Team, bool) {
	for _, t := range s.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return scoreboard.Team{}, false
}

// EventScoreFor returns the active event's row for playerID.
func (s Snapshot) EventScoreFor(playerID string) (scoreboard.EventScore, bool) {
	for _, es := range s.EventScores {
		if es.PlayerID == playerID {
			return es, true
		}
	}
	return scoreboard.EventScore{}, false
}
