package session_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/geoquest/geoquest/internal/database"
	"github.com/geoquest/geoquest/internal/migrations"
	"github.com/geoquest/geoquest/internal/session"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	// Minimal fixtures: a creator profile and a game for sessions to hang off.
	_, err = db.Exec(`INSERT INTO profiles (id, email, password_hash) VALUES ('user-1', 'a@b.c', 'x')`)
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	_, err = db.Exec(`INSERT INTO games (id, creator_id, title) VALUES ('game-1', 'user-1', 'Hunt')`)
	if err != nil {
		t.Fatalf("seed game: %v", err)
	}

	return db
}

func TestRemoteStoreStartIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	store := session.NewRemoteStore(db, "user-1")

	first, err := session.Start(ctx, store, "game-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := session.Start(ctx, store, "game-1")
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the same session, got %q and %q", first.ID, second.ID)
	}
}

func TestRemoteStoreScopedByUser(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	mine := session.NewRemoteStore(db, "user-1")
	if _, err := mine.Create(ctx, "game-1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	theirs := session.NewRemoteStore(db, "user-2")
	if _, err := theirs.Active(ctx, "game-1"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
}

func TestRemoteStoreProgressAndComplete(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	store := session.NewRemoteStore(db, "user-1")

	sess, err := store.Create(ctx, "game-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := store.UpdateProgress(ctx, sess.ID, 3, &session.Metadata{
		CheckpointsCompleted: []string{"a", "b", "c"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CurrentCheckpointIndex != 3 {
		t.Errorf("expected index 3, got %d", updated.CurrentCheckpointIndex)
	}
	if len(updated.Metadata.CheckpointsCompleted) != 3 {
		t.Errorf("expected metadata to persist, got %+v", updated.Metadata)
	}

	done, err := store.Complete(ctx, sess.ID, 42)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != session.StatusCompleted || done.Score == nil || *done.Score != 42 {
		t.Errorf("expected completed with score 42, got %+v", done)
	}

	if _, err := store.Active(ctx, "game-1"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected no active session after completion, got %v", err)
	}
}
