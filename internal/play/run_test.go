package play

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/geoquest/geoquest/internal/model"
)

func testRun() *Run {
	p := New()
	p.Init(testGame(false), testCheckpoints(), activeSession(0))
	return NewRun("sess-1", nil, p)
}

func TestRunSharingPushesAndCleansUp(t *testing.T) {
	run := testRun()
	run.UpdatePosition(model.GPSFix{Latitude: 50.0875, Longitude: 14.4213})

	var shares, cleanups atomic.Int32
	share := func(ctx context.Context, fix model.GPSFix, index int) error {
		shares.Add(1)
		return nil
	}
	cleanup := func(ctx context.Context) error {
		cleanups.Add(1)
		return nil
	}

	run.StartSharing(context.Background(), 5*time.Millisecond, share, cleanup, slog.Default())

	deadline := time.After(2 * time.Second)
	for shares.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected at least one share push")
		case <-time.After(time.Millisecond):
		}
	}

	run.StopSharing()

	if cleanups.Load() != 1 {
		t.Errorf("expected exactly one cleanup, got %d", cleanups.Load())
	}

	// Stopping again is safe.
	run.StopSharing()
}

func TestRunSharingSkipsWithoutFix(t *testing.T) {
	run := testRun()

	var shares atomic.Int32
	share := func(ctx context.Context, fix model.GPSFix, index int) error {
		shares.Add(1)
		return nil
	}

	run.StartSharing(context.Background(), time.Millisecond, share, func(context.Context) error { return nil }, slog.Default())
	time.Sleep(20 * time.Millisecond)
	run.StopSharing()

	if shares.Load() != 0 {
		t.Errorf("expected no pushes before the first fix, got %d", shares.Load())
	}
}

func TestRunSharingCleanupErrorIsSwallowed(t *testing.T) {
	run := testRun()

	run.StartSharing(context.Background(), time.Minute,
		func(context.Context, model.GPSFix, int) error { return nil },
		func(context.Context) error { return errors.New("gone") },
		slog.Default())

	// Must not panic or propagate: cleanup is advisory.
	run.StopSharing()
}

func TestRegistryReplaceClosesPrevious(t *testing.T) {
	reg := NewRegistry()

	first := testRun()
	reg.Put(first)

	second := testRun()
	reg.Put(second)

	got, ok := reg.Get("sess-1")
	if !ok || got != second {
		t.Fatal("expected the replacement run to win")
	}

	removed, ok := reg.Remove("sess-1")
	if !ok || removed != second {
		t.Fatal("expected remove to hand back the live run")
	}
	if _, ok := reg.Get("sess-1"); ok {
		t.Error("expected the run to be gone after remove")
	}
}
