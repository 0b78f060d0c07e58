package server

import (
	"context"
	"errors"

	"github.com/geoquest/geoquest/internal/model"
)

var ErrNotFound = errors.New("not found")

// GameReader is the read path shared by the SQLite store and the
// cache-backed wrapper: game and checkpoint loads go through it so the play
// screen can fall back to a cached copy when the primary store is down.
type GameReader interface {
	GetGame(ctx context.Context, id string) (model.Game, error)
	ListCheckpoints(ctx context.Context, gameID string) ([]model.Checkpoint, error)
}

// Store is everything the handlers need from persistence.
type Store interface {
	GameReader

	// Profiles and auth.
	CreateProfile(ctx context.Context, email, username, passwordHash string) (model.Profile, error)
	ProfileByEmail(ctx context.Context, email string) (model.Profile, string, error)
	ProfileByID(ctx context.Context, id string) (model.Profile, error)
	CreateAuthSession(ctx context.Context, userID string) (string, error)
	UserFromToken(ctx context.Context, token string) (model.Profile, error)
	DeleteAuthSession(ctx context.Context, token string) error
	ProfileStats(ctx context.Context, userID string) (ProfileStats, error)

	// Games.
	ListPublicGames(ctx context.Context) ([]model.Game, error)
	ListGamesByCreator(ctx context.Context, creatorID string) ([]model.Game, error)
	CreateGame(ctx context.Context, g model.Game) (model.Game, error)
	UpdateGame(ctx context.Context, g model.Game) (model.Game, error)
	DeleteGame(ctx context.Context, id string) error

	// Checkpoints.
	GetCheckpoint(ctx context.Context, id string) (model.Checkpoint, error)
	CreateCheckpoint(ctx context.Context, cp model.Checkpoint) (model.Checkpoint, error)
	UpdateCheckpoint(ctx context.Context, cp model.Checkpoint) (model.Checkpoint, error)
	DeleteCheckpoint(ctx context.Context, id string) error

	// Live player locations.
	UpsertPlayerLocation(ctx context.Context, loc model.PlayerLocation) error
	DeletePlayerLocation(ctx context.Context, sessionID string) error
	ListActivePlayers(ctx context.Context, gameID string) ([]model.PlayerLocation, error)
}

// ProfileStats summarizes a player's history for the profile screen.
type ProfileStats struct {
	GamesCreated   int `json:"gamesCreated"`
	GamesPlayed    int `json:"gamesPlayed"`
	GamesCompleted int `json:"gamesCompleted"`
}
