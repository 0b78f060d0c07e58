// Package model holds the domain records shared by the store, the play
// engine and the HTTP layer.
package model

import (
	"github.com/geoquest/geoquest/internal/geo"
)

type GameStatus string

const (
	GameDraft     GameStatus = "draft"
	GamePublished GameStatus = "published"
	GameArchived  GameStatus = "archived"
)

// GameSettings apply game-wide. RadiusTolerance is a buffer in meters added
// to every checkpoint's own radius when testing proximity.
type GameSettings struct {
	RadiusTolerance       float64 `json:"radius_tolerance"`
	AllowSkip             bool    `json:"allow_skip"`
	MaxPlayers            *int    `json:"max_players"`
	TimeLimit             *int    `json:"time_limit"`
	ShareLocationRequired bool    `json:"share_location_required"`
}

type Game struct {
	ID          string       `json:"id"`
	CreatorID   string       `json:"creatorId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	IsPublic    bool         `json:"isPublic"`
	Difficulty  int          `json:"difficulty"`
	Settings    GameSettings `json:"settings"`
	Status      GameStatus   `json:"status"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

type CheckpointType string

const (
	CheckpointInfo   CheckpointType = "info"
	CheckpointPuzzle CheckpointType = "puzzle"
	CheckpointInput  CheckpointType = "input"
)

// CheckpointContent is the authored challenge body. PuzzleAnswer is set iff
// the checkpoint type is puzzle.
type CheckpointContent struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Clue         string `json:"clue,omitempty"`
	PuzzleAnswer string `json:"puzzle_answer,omitempty"`
}

// Checkpoint is an authored GPS waypoint. OrderIndex is 0-based and defines
// the traversal order within a game. IsFake marks decoy waypoints; the
// traversal engine treats them like any other checkpoint (map decoys only).
type Checkpoint struct {
	ID             string            `json:"id"`
	GameID         string            `json:"gameId"`
	OrderIndex     int               `json:"orderIndex"`
	Latitude       float64           `json:"latitude"`
	Longitude      float64           `json:"longitude"`
	Radius         float64           `json:"radius"`
	Type           CheckpointType    `json:"type"`
	Content        CheckpointContent `json:"content"`
	SecretSolution *geo.Solution     `json:"secretSolution,omitempty"`
	IsFake         bool              `json:"isFake,omitempty"`
	CreatedAt      string            `json:"createdAt"`
	UpdatedAt      string            `json:"updatedAt"`
}

// Location returns the checkpoint's position as a geo value.
func (c Checkpoint) Location() geo.Location {
	return geo.Location{Latitude: c.Latitude, Longitude: c.Longitude}
}

// GPSFix is one position sample from a player's device. Accuracy is the
// reported 1-sigma radius in meters; it is surfaced for display but does not
// gate engine decisions.
type GPSFix struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

// Location returns the fix position as a geo value.
func (f GPSFix) Location() geo.Location {
	return geo.Location{Latitude: f.Latitude, Longitude: f.Longitude}
}

type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// PlayerLocation is a shared live position, upserted per session while a
// player has location sharing on.
type PlayerLocation struct {
	SessionID              string  `json:"sessionId"`
	GameID                 string  `json:"gameId"`
	Latitude               float64 `json:"latitude"`
	Longitude              float64 `json:"longitude"`
	Accuracy               float64 `json:"accuracy"`
	CurrentCheckpointIndex int     `json:"currentCheckpointIndex"`
	LastSeenAt             string  `json:"lastSeenAt"`
}
