package server

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/geoquest/geoquest/internal/geo"
	"github.com/geoquest/geoquest/internal/model"
)

// SeedDemo creates a demo creator and a published Prague walking game when
// the database has no public games yet. Idempotent.
func SeedDemo(ctx context.Context, logger *slog.Logger, store Store) error {
	existing, err := store.ListPublicGames(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	creator, err := store.CreateProfile(ctx, "demo@geoquest.local", "demo", string(hash))
	if err != nil {
		return err
	}

	game, err := store.CreateGame(ctx, model.Game{
		CreatorID:   creator.ID,
		Title:       "Old Town Treasure Hunt",
		Description: "A short walk through Prague's Old Town.",
		IsPublic:    true,
		Difficulty:  2,
		Status:      model.GamePublished,
		Settings: model.GameSettings{
			RadiusTolerance: 10,
			AllowSkip:       true,
		},
	})
	if err != nil {
		return err
	}

	solution := geo.Solution{
		Latitude:  geo.DecimalToDMS(50.0865, true),
		Longitude: geo.DecimalToDMS(14.4114, false),
	}

	checkpoints := []model.Checkpoint{
		{
			GameID:     game.ID,
			OrderIndex: 0,
			Latitude:   50.0875,
			Longitude:  14.4213,
			Radius:     15,
			Type:       model.CheckpointInfo,
			Content: model.CheckpointContent{
				Title:       "Old Town Square",
				Description: "Start under the astronomical clock and take in the square.",
			},
		},
		{
			GameID:     game.ID,
			OrderIndex: 1,
			Latitude:   50.0870,
			Longitude:  14.4185,
			Radius:     12,
			Type:       model.CheckpointPuzzle,
			Content: model.CheckpointContent{
				Title:        "The Clockmaker's Riddle",
				Clue:         "Count the apostles that parade on the hour.",
				PuzzleAnswer: "12",
			},
		},
		{
			GameID:     game.ID,
			OrderIndex: 2,
			Latitude:   50.0865,
			Longitude:  14.4114,
			Radius:     12,
			Type:       model.CheckpointInput,
			Content: model.CheckpointContent{
				Title: "The Hidden Cache",
				Clue:  "Work out the coordinates from the plaque by the bridge tower.",
			},
			SecretSolution: &solution,
		},
	}
	for _, cp := range checkpoints {
		if _, err := store.CreateCheckpoint(ctx, cp); err != nil {
			return err
		}
	}

	logger.Info("demo game seeded", "game_id", game.ID)
	return nil
}
