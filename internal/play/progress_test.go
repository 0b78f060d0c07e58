package play

import (
	"testing"

	"github.com/geoquest/geoquest/internal/model"
	"github.com/geoquest/geoquest/internal/session"
)

func testGame(allowSkip bool) *model.Game {
	return &model.Game{
		ID:     "game-1",
		Title:  "Old Town Hunt",
		Status: model.GamePublished,
		Settings: model.GameSettings{
			RadiusTolerance: 10,
			AllowSkip:       allowSkip,
		},
	}
}

func testCheckpoints() []model.Checkpoint {
	return []model.Checkpoint{
		{
			ID: "cp-a", GameID: "game-1", OrderIndex: 0,
			Latitude: 50.0875, Longitude: 14.4213, Radius: 10,
			Type: model.CheckpointInfo,
		},
		{
			ID: "cp-b", GameID: "game-1", OrderIndex: 1,
			Latitude: 50.0813, Longitude: 14.4283, Radius: 10,
			Type: model.CheckpointInfo,
		},
	}
}

func activeSession(index int) *session.Session {
	return &session.Session{
		ID:                     "sess-1",
		UserID:                 "user-1",
		GameID:                 "game-1",
		CurrentCheckpointIndex: index,
		Status:                 session.StatusActive,
	}
}

func fixAt(lat, lon float64) model.GPSFix {
	return model.GPSFix{Latitude: lat, Longitude: lon, Accuracy: 5}
}

func TestInitSeedsFromSession(t *testing.T) {
	p := New()
	p.Init(testGame(false), testCheckpoints(), activeSession(1))

	if p.Index() != 1 {
		t.Errorf("expected index 1, got %d", p.Index())
	}
	if p.Current() == nil || p.Current().ID != "cp-b" {
		t.Errorf("expected cp-b active, got %+v", p.Current())
	}
	if p.Reached() || p.InRadius() || p.Victory() {
		t.Error("expected all derived flags reset")
	}
}

func TestInitClampsStaleIndex(t *testing.T) {
	p := New()
	p.Init(testGame(false), testCheckpoints(), activeSession(7))

	if p.Index() != 0 {
		t.Errorf("expected stale index clamped to 0, got %d", p.Index())
	}
	if p.Current() == nil || p.Current().ID != "cp-a" {
		t.Errorf("expected cp-a active, got %+v", p.Current())
	}
}

func TestUpdatePositionEntersRadius(t *testing.T) {
	p := New()
	p.Init(testGame(false), testCheckpoints(), activeSession(0))

	// Standing exactly on checkpoint A.
	p.UpdatePosition(fixAt(50.0875, 14.4213))

	s := p.Snapshot()
	if !s.IsInCheckpointRadius {
		t.Error("expected in-radius at the checkpoint itself")
	}
	if !s.CheckpointReached {
		t.Error("expected checkpointReached")
	}
	if !s.ShowCheckpointContent {
		t.Error("expected the challenge to auto-open")
	}
	if s.Distance == nil || *s.Distance != 0 {
		t.Errorf("expected distance 0, got %v", s.Distance)
	}
}

func TestUpdatePositionEdgeTriggered(t *testing.T) {
	p := New()
	p.Init(testGame(false), testCheckpoints(), activeSession(0))

	p.UpdatePosition(fixAt(50.0875, 14.4213))
	p.Hide()

	// More fixes inside the radius must not reopen the challenge.
	p.UpdatePosition(fixAt(50.0875, 14.4213))
	if p.Snapshot().ShowCheckpointContent {
		t.Error("expected the challenge to stay closed while inside")
	}

	// Leaving and re-entering does not reopen either: already reached.
	p.UpdatePosition(fixAt(50.1, 14.5))
	p.UpdatePosition(fixAt(50.0875, 14.4213))
	if p.Snapshot().ShowCheckpointContent {
		t.Error("expected no retrigger after re-entry on a reached checkpoint")
	}
	if !p.Reached() {
		t.Error("expected reached to persist")
	}
}

func TestCompleteAdvancesAndResets(t *testing.T) {
	p := New()
	p.Init(testGame(false), testCheckpoints(), activeSession(0))

	p.UpdatePosition(fixAt(50.0875, 14.4213))
	p.CompleteCurrent()

	if p.Index() != 1 {
		t.Errorf("expected index 1, got %d", p.Index())
	}
	if p.Current() == nil || p.Current().ID != "cp-b" {
		t.Errorf("expected cp-b active, got %+v", p.Current())
	}

	s := p.Snapshot()
	if s.IsInCheckpointRadius || s.CheckpointReached || s.ShowCheckpointContent {
		t.Error("expected transient flags reset after advancing")
	}
	if s.Distance != nil {
		t.Errorf("expected distance cleared, got %v", *s.Distance)
	}

	// The next checkpoint retriggers on entry.
	p.UpdatePosition(fixAt(50.0813, 14.4283))
	if !p.Reached() {
		t.Error("expected checkpoint B to trigger after reset")
	}
}

func TestCompleteLastCheckpointIsVictory(t *testing.T) {
	p := New()
	p.Init(testGame(false), testCheckpoints(), activeSession(1))

	p.CompleteCurrent()

	if !p.Victory() {
		t.Error("expected victory after the last checkpoint")
	}
	if p.Snapshot().ShowCheckpointContent {
		t.Error("expected the challenge closed on victory")
	}

	// Completing again past the end must not panic.
	p.CompleteCurrent()
	if !p.Victory() {
		t.Error("expected victory to be sticky")
	}
}

func TestSkipRespectsAllowSkip(t *testing.T) {
	p := New()
	p.Init(testGame(false), testCheckpoints(), activeSession(0))

	p.Skip()
	if p.Index() != 0 {
		t.Errorf("expected skip to be a no-op, got index %d", p.Index())
	}

	p.Init(testGame(true), testCheckpoints(), activeSession(0))
	p.Skip()
	if p.Index() != 1 {
		t.Errorf("expected skip to advance, got index %d", p.Index())
	}
}

func TestUpdatePositionWithoutGameIsNoop(t *testing.T) {
	p := New()
	p.UpdatePosition(fixAt(50.0875, 14.4213))

	s := p.Snapshot()
	if s.Distance != nil || s.IsInCheckpointRadius {
		t.Errorf("expected empty engine to ignore fixes, got %+v", s)
	}
}

func TestDefaultRadiusTolerance(t *testing.T) {
	game := testGame(false)
	game.Settings.RadiusTolerance = 0

	p := New()
	p.Init(game, testCheckpoints(), activeSession(0))

	// ~13 m from checkpoint A: outside the bare 10 m radius but inside
	// radius + default tolerance.
	p.UpdatePosition(fixAt(50.0876, 14.4214))
	if !p.InRadius() {
		t.Error("expected the default tolerance to apply when unset")
	}
}

func TestResetClearsEverything(t *testing.T) {
	p := New()
	p.Init(testGame(false), testCheckpoints(), activeSession(0))
	p.UpdatePosition(fixAt(50.0875, 14.4213))

	p.Reset()

	s := p.Snapshot()
	if s.TotalCheckpoints != 0 || s.Distance != nil || s.CheckpointReached {
		t.Errorf("expected a cleared engine, got %+v", s)
	}
}
