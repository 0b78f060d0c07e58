// Package play implements the proximity and progression engine for a single
// game run: it consumes GPS fixes, tracks distance to the active checkpoint,
// detects radius entry, and drives the linear checkpoint state machine
// through to victory.
package play

import (
	"github.com/geoquest/geoquest/internal/geo"
	"github.com/geoquest/geoquest/internal/model"
	"github.com/geoquest/geoquest/internal/session"
)

// DefaultRadiusTolerance is applied when a game has no tolerance configured.
const DefaultRadiusTolerance = 10

// Progress is the in-memory play state of one session. It is owned by a
// single run, constructed when play starts and discarded on teardown;
// nothing here is persisted except the checkpoint index carried by the
// session. Progress is not safe for concurrent use; the owning Run
// serializes access.
type Progress struct {
	game        *model.Game
	checkpoints []model.Checkpoint
	session     *session.Session

	position *model.GPSFix
	index    int
	current  *model.Checkpoint
	distance *float64

	zone        Zone
	reached     bool
	showContent bool
	showVictory bool
}

// New returns an empty engine; call Init before feeding positions.
func New() *Progress {
	return &Progress{}
}

// Init seeds the engine from a loaded game, its ordered checkpoint list and
// the player's session. A stale session index outside the checkpoint list is
// clamped back to the first checkpoint. All derived flags reset.
func (p *Progress) Init(game *model.Game, checkpoints []model.Checkpoint, sess *session.Session) {
	p.game = game
	p.checkpoints = checkpoints
	p.session = sess

	index := 0
	if sess != nil && sess.CurrentCheckpointIndex >= 0 && sess.CurrentCheckpointIndex < len(checkpoints) {
		index = sess.CurrentCheckpointIndex
	}
	p.index = index
	p.current = nil
	if index < len(checkpoints) {
		p.current = &p.checkpoints[index]
	}

	p.position = nil
	p.distance = nil
	p.zone = ZoneOutside
	p.reached = false
	p.showContent = false
	p.showVictory = false
}

// UpdatePosition stores the fix and recomputes distance and radius state for
// the active checkpoint. The challenge content auto-opens only on the
// transition into the radius, and only once per checkpoint.
func (p *Progress) UpdatePosition(fix model.GPSFix) {
	p.position = &fix

	if p.current == nil || p.game == nil {
		return
	}

	d := geo.Distance(fix.Location(), p.current.Location())
	p.distance = &d

	tolerance := p.game.Settings.RadiusTolerance
	if tolerance == 0 {
		tolerance = DefaultRadiusTolerance
	}
	inRadius := d <= p.current.Radius+tolerance

	var entered bool
	p.zone, entered = p.zone.Next(inRadius)

	if entered && !p.reached {
		p.reached = true
		p.showContent = true
	}
}

// CompleteCurrent advances to the next checkpoint, or flags victory when the
// player just satisfied the last one. Transient per-checkpoint state resets
// so the next checkpoint can retrigger.
func (p *Progress) CompleteCurrent() {
	next := p.index + 1

	if next >= len(p.checkpoints) {
		p.showVictory = true
		p.showContent = false
		return
	}

	p.index = next
	p.current = &p.checkpoints[next]
	p.showContent = false
	p.reached = false
	p.zone = ZoneOutside
	p.distance = nil
}

// Skip advances without any answer or proximity requirement. It is a no-op
// unless the game allows skipping.
func (p *Progress) Skip() {
	if p.game == nil || !p.game.Settings.AllowSkip {
		return
	}
	p.CompleteCurrent()
}

// Show opens the challenge content without touching progression.
func (p *Progress) Show() { p.showContent = true }

// Hide closes the challenge content without touching progression.
func (p *Progress) Hide() { p.showContent = false }

// Reset clears everything back to the empty state.
func (p *Progress) Reset() {
	*p = Progress{}
}

// Current returns the active checkpoint, or nil past the end of the game.
func (p *Progress) Current() *model.Checkpoint { return p.current }

// Index returns the active checkpoint index.
func (p *Progress) Index() int { return p.index }

// Game returns the game under play.
func (p *Progress) Game() *model.Game { return p.game }

// Session returns the session the engine was seeded from.
func (p *Progress) Session() *session.Session { return p.session }

// Position returns the last stored fix, or nil before the first one.
func (p *Progress) Position() *model.GPSFix { return p.position }

// Victory reports whether all checkpoints are satisfied.
func (p *Progress) Victory() bool { return p.showVictory }

// InRadius reports whether the last fix fell inside the active checkpoint's
// effective radius.
func (p *Progress) InRadius() bool { return p.zone != ZoneOutside }

// Reached reports whether the active checkpoint has been entered.
func (p *Progress) Reached() bool { return p.reached }

// State is a JSON-friendly snapshot of the engine, shipped to clients after
// every update.
type State struct {
	CurrentCheckpointIndex int      `json:"currentCheckpointIndex"`
	TotalCheckpoints       int      `json:"totalCheckpoints"`
	Distance               *float64 `json:"distance"`
	DistanceDisplay        string   `json:"distanceDisplay,omitempty"`
	Bearing                *float64 `json:"bearing,omitempty"`
	IsInCheckpointRadius   bool     `json:"isInCheckpointRadius"`
	CheckpointReached      bool     `json:"checkpointReached"`
	ShowCheckpointContent  bool     `json:"showCheckpointContent"`
	ShowVictory            bool     `json:"showVictory"`
}

// Snapshot renders the current engine state.
func (p *Progress) Snapshot() State {
	s := State{
		CurrentCheckpointIndex: p.index,
		TotalCheckpoints:       len(p.checkpoints),
		Distance:               p.distance,
		IsInCheckpointRadius:   p.InRadius(),
		CheckpointReached:      p.reached,
		ShowCheckpointContent:  p.showContent,
		ShowVictory:            p.showVictory,
	}
	if p.distance != nil {
		s.DistanceDisplay = geo.FormatDistance(*p.distance)
	}
	if p.position != nil && p.current != nil {
		b := geo.Bearing(p.position.Location(), p.current.Location())
		s.Bearing = &b
	}
	return s
}
