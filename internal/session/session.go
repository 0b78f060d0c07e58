// Package session resolves and persists a player's progress through a game.
// Signed-in players get a SQL-backed store; anonymous players get a
// server-local JSON store with no cross-device continuity. The store is
// chosen once when play starts and passed down explicitly.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no matching session exists.
var ErrNotFound = errors.New("session not found")

// AnonymousUserID marks sessions owned by unauthenticated players.
const AnonymousUserID = "anonymous"

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Metadata is carried on every session. The play engine does not read or
// increment these counters; they are persisted untouched.
type Metadata struct {
	HintsUsed            int      `json:"hints_used"`
	WrongAttempts        int      `json:"wrong_attempts"`
	CheckpointsCompleted []string `json:"checkpoints_completed"`
}

// Session is one player's progress record through one game. At most one
// active session exists per (user, game) pair.
type Session struct {
	ID                     string     `json:"id"`
	UserID                 string     `json:"userId"`
	GameID                 string     `json:"gameId"`
	CurrentCheckpointIndex int        `json:"currentCheckpointIndex"`
	Status                 Status     `json:"status"`
	StartTime              time.Time  `json:"startTime"`
	EndTime                *time.Time `json:"endTime"`
	Score                  *int       `json:"score"`
	Metadata               Metadata   `json:"metadata"`
}

// Store persists sessions for a single player identity. Implementations are
// already scoped to their owner; callers only pass game and session IDs.
type Store interface {
	// Active returns the player's active session for the game, or ErrNotFound.
	Active(ctx context.Context, gameID string) (*Session, error)
	// Create starts a fresh session at checkpoint 0.
	Create(ctx context.Context, gameID string) (*Session, error)
	// UpdateProgress persists the current checkpoint index and, when meta is
	// non-nil, the session metadata.
	UpdateProgress(ctx context.Context, id string, checkpointIndex int, meta *Metadata) (*Session, error)
	// Complete terminates the session with a score.
	Complete(ctx context.Context, id string, score int) (*Session, error)
	// Abandon marks the session abandoned.
	Abandon(ctx context.Context, id string) error
}

// Start returns the player's active session for the game, creating one only
// if none exists. Calling it twice in a row yields the same session.
func Start(ctx context.Context, s Store, gameID string) (*Session, error) {
	existing, err := s.Active(ctx, gameID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.Create(ctx, gameID)
}
