package play

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/geoquest/geoquest/internal/model"
	"github.com/geoquest/geoquest/internal/session"
)

// ShareInterval is the wall-clock period for pushing a player's position to
// the shared location table, independent of GPS arrival rate.
const ShareInterval = 10 * time.Second

// ShareFunc pushes the latest fix to the shared-location collaborator.
type ShareFunc func(ctx context.Context, fix model.GPSFix, checkpointIndex int) error

// CleanupFunc removes the shared-location record on teardown.
type CleanupFunc func(ctx context.Context) error

// Run owns one live play session: the engine, the session store it persists
// progress through, and the optional location-sharing ticker. HTTP handlers,
// the WebSocket stream and the ticker may all touch the engine, so access
// goes through the run's mutex.
type Run struct {
	SessionID string
	Store     session.Store

	mu        sync.Mutex
	engine    *Progress
	stopShare context.CancelFunc
	shareDone chan struct{}
}

func NewRun(sessionID string, store session.Store, engine *Progress) *Run {
	return &Run{SessionID: sessionID, Store: store, engine: engine}
}

// Locked runs fn with exclusive access to the engine.
func (r *Run) Locked(fn func(p *Progress)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.engine)
}

// UpdatePosition feeds one fix to the engine and returns the new snapshot.
func (r *Run) UpdatePosition(fix model.GPSFix) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.UpdatePosition(fix)
	return r.engine.Snapshot()
}

// Snapshot returns the current engine state.
func (r *Run) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Snapshot()
}

// StartSharing launches the 10-second share ticker. Push errors are logged
// and never surfaced; on stop the shared record is deleted best-effort.
// Starting twice replaces the previous ticker.
func (r *Run) StartSharing(ctx context.Context, interval time.Duration, share ShareFunc, cleanup CleanupFunc, logger *slog.Logger) {
	r.StopSharing()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	r.mu.Lock()
	r.stopShare = cancel
	r.shareDone = done
	r.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				// Leave no trace: advisory delete, log only.
				cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := cleanup(cleanupCtx); err != nil {
					logger.Warn("shared location cleanup failed", "session_id", r.SessionID, "error", err)
				}
				cancel()
				return
			case <-ticker.C:
				r.mu.Lock()
				fix := r.engine.Position()
				index := r.engine.Index()
				r.mu.Unlock()

				if fix == nil {
					continue
				}
				if err := share(ctx, *fix, index); err != nil {
					logger.Warn("sharing location failed", "session_id", r.SessionID, "error", err)
				}
			}
		}
	}()
}

// StopSharing cancels the share ticker and waits for its cleanup to finish.
// Safe to call when sharing was never started.
func (r *Run) StopSharing() {
	r.mu.Lock()
	cancel, done := r.stopShare, r.shareDone
	r.stopShare, r.shareDone = nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Close tears the run down. Must be called on every exit path, not only on
// victory.
func (r *Run) Close() {
	r.StopSharing()
	r.mu.Lock()
	r.engine.Reset()
	r.mu.Unlock()
}
