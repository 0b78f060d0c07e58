package server

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/geoquest/geoquest/internal/geo"
	"github.com/geoquest/geoquest/internal/model"
	"github.com/geoquest/geoquest/internal/play"
	"github.com/geoquest/geoquest/internal/session"
)

const anonPlayer = "anon-player-1"

// seedPlayableGame writes a published three-checkpoint game straight through
// the store: an info stop, a puzzle, and a final coordinate-input cache.
func seedPlayableGame(t *testing.T, env *testEnv, allowSkip bool) model.Game {
	t.Helper()
	ctx := context.Background()

	creator, err := env.store.CreateProfile(ctx, "creator@example.com", "creator", "x")
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	game, err := env.store.CreateGame(ctx, model.Game{
		CreatorID: creator.ID,
		Title:     "Prague Loop",
		IsPublic:  true,
		Status:    model.GamePublished,
		Settings: model.GameSettings{
			RadiusTolerance: 10,
			AllowSkip:       allowSkip,
		},
	})
	if err != nil {
		t.Fatalf("seed game: %v", err)
	}

	solution := geo.Solution{
		Latitude:  geo.DecimalToDMS(50.0840, true),
		Longitude: geo.DecimalToDMS(14.4260, false),
	}
	checkpoints := []model.Checkpoint{
		{
			GameID: game.ID, OrderIndex: 0,
			Latitude: 50.0875, Longitude: 14.4213, Radius: 10,
			Type:    model.CheckpointInfo,
			Content: model.CheckpointContent{Title: "Square"},
		},
		{
			GameID: game.ID, OrderIndex: 1,
			Latitude: 50.0813, Longitude: 14.4283, Radius: 10,
			Type:    model.CheckpointPuzzle,
			Content: model.CheckpointContent{Title: "Riddle", PuzzleAnswer: "12"},
		},
		{
			GameID: game.ID, OrderIndex: 2,
			Latitude: 50.0840, Longitude: 14.4260, Radius: 10,
			Type:           model.CheckpointInput,
			Content:        model.CheckpointContent{Title: "Cache"},
			SecretSolution: &solution,
		},
	}
	for _, cp := range checkpoints {
		if _, err := env.store.CreateCheckpoint(ctx, cp); err != nil {
			t.Fatalf("seed checkpoint: %v", err)
		}
	}
	return game
}

func TestPlayFullRun(t *testing.T) {
	env := newTestEnv(t)
	game := seedPlayableGame(t, env, false)

	// Start playing anonymously.
	w := env.do(t, http.MethodPost, "/api/play/start", StartPlayRequest{GameID: game.ID}, "", anonPlayer)
	if w.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	start := decodeJSON[StartPlayResponse](t, w)
	if start.Session == nil || start.Session.UserID != session.AnonymousUserID {
		t.Fatalf("expected an anonymous session, got %+v", start.Session)
	}
	for _, cp := range start.Checkpoints {
		if cp.Content.PuzzleAnswer != "" || cp.SecretSolution != nil {
			t.Errorf("expected sanitized checkpoints, got %+v", cp)
		}
	}
	base := "/api/play/" + start.Session.ID

	// Answering before reaching the checkpoint is rejected.
	w = env.do(t, http.MethodPost, base+"/answer", AnswerRequest{}, "", anonPlayer)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 before reaching, got %d", w.Code)
	}

	// Walk to the first checkpoint.
	w = env.do(t, http.MethodPost, base+"/position", model.GPSFix{Latitude: 50.0875, Longitude: 14.4213}, "", anonPlayer)
	state := decodeJSON[play.State](t, w)
	if !state.CheckpointReached || !state.ShowCheckpointContent {
		t.Fatalf("expected the info checkpoint to trigger, got %+v", state)
	}

	// Info checkpoints complete on presence alone.
	w = env.do(t, http.MethodPost, base+"/answer", AnswerRequest{}, "", anonPlayer)
	answer := decodeJSON[AnswerResponse](t, w)
	if !answer.Correct || answer.State.CurrentCheckpointIndex != 1 {
		t.Fatalf("expected advance to checkpoint 1, got %+v", answer)
	}

	// Walk to the puzzle and get it wrong first.
	env.do(t, http.MethodPost, base+"/position", model.GPSFix{Latitude: 50.0813, Longitude: 14.4283}, "", anonPlayer)
	w = env.do(t, http.MethodPost, base+"/answer", AnswerRequest{Answer: "seven"}, "", anonPlayer)
	answer = decodeJSON[AnswerResponse](t, w)
	if answer.Correct || answer.State.CurrentCheckpointIndex != 1 {
		t.Fatalf("expected a wrong answer to stay put, got %+v", answer)
	}

	// Case and whitespace do not matter.
	w = env.do(t, http.MethodPost, base+"/answer", AnswerRequest{Answer: " 12 "}, "", anonPlayer)
	answer = decodeJSON[AnswerResponse](t, w)
	if !answer.Correct || answer.State.CurrentCheckpointIndex != 2 {
		t.Fatalf("expected advance to checkpoint 2, got %+v", answer)
	}

	// Final input checkpoint: reach it, then enter the secret coordinates.
	env.do(t, http.MethodPost, base+"/position", model.GPSFix{Latitude: 50.0840, Longitude: 14.4260}, "", anonPlayer)
	lat := geo.DecimalToDMS(50.0840, true)
	lon := geo.DecimalToDMS(14.4260, false)
	w = env.do(t, http.MethodPost, base+"/answer", AnswerRequest{Latitude: &lat, Longitude: &lon}, "", anonPlayer)
	answer = decodeJSON[AnswerResponse](t, w)
	if !answer.Correct || !answer.State.ShowVictory {
		t.Fatalf("expected victory, got %+v", answer)
	}
	if answer.Validation == nil || !answer.Validation.IsValid {
		t.Fatalf("expected a valid coordinate validation, got %+v", answer.Validation)
	}

	// The session is completed, so no active session remains.
	local := session.NewLocalStore(env.localDir, anonPlayer)
	if _, err := local.Active(context.Background(), game.ID); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected no active session after victory, got %v", err)
	}
}

func TestPlayWrongCoordinatesNameTheAxis(t *testing.T) {
	env := newTestEnv(t)
	game := seedPlayableGame(t, env, true)

	w := env.do(t, http.MethodPost, "/api/play/start", StartPlayRequest{GameID: game.ID}, "", anonPlayer)
	start := decodeJSON[StartPlayResponse](t, w)
	base := "/api/play/" + start.Session.ID

	// Skip to the input checkpoint.
	env.do(t, http.MethodPost, base+"/skip", nil, "", anonPlayer)
	env.do(t, http.MethodPost, base+"/skip", nil, "", anonPlayer)
	env.do(t, http.MethodPost, base+"/position", model.GPSFix{Latitude: 50.0840, Longitude: 14.4260}, "", anonPlayer)

	lat := geo.DecimalToDMS(51.5, true)
	lon := geo.DecimalToDMS(14.4260, false)
	w = env.do(t, http.MethodPost, base+"/answer", AnswerRequest{Latitude: &lat, Longitude: &lon}, "", anonPlayer)
	answer := decodeJSON[AnswerResponse](t, w)
	if answer.Correct {
		t.Fatal("expected wrong latitude to fail")
	}
	if answer.Validation == nil || answer.Validation.LatitudeCorrect || !answer.Validation.LongitudeCorrect {
		t.Fatalf("expected only the longitude to be right, got %+v", answer.Validation)
	}
}

func TestPlaySkipRespectsSettings(t *testing.T) {
	env := newTestEnv(t)
	game := seedPlayableGame(t, env, false)

	w := env.do(t, http.MethodPost, "/api/play/start", StartPlayRequest{GameID: game.ID}, "", anonPlayer)
	start := decodeJSON[StartPlayResponse](t, w)

	w = env.do(t, http.MethodPost, "/api/play/"+start.Session.ID+"/skip", nil, "", anonPlayer)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 when skipping is disabled, got %d", w.Code)
	}
}

func TestPlayStartIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	game := seedPlayableGame(t, env, false)

	w := env.do(t, http.MethodPost, "/api/play/start", StartPlayRequest{GameID: game.ID}, "", anonPlayer)
	first := decodeJSON[StartPlayResponse](t, w)

	w = env.do(t, http.MethodPost, "/api/play/start", StartPlayRequest{GameID: game.ID}, "", anonPlayer)
	second := decodeJSON[StartPlayResponse](t, w)

	if first.Session.ID != second.Session.ID {
		t.Errorf("expected the same session on restart, got %q and %q", first.Session.ID, second.Session.ID)
	}
}

func TestPlaySessionIsolation(t *testing.T) {
	env := newTestEnv(t)
	game := seedPlayableGame(t, env, false)

	w := env.do(t, http.MethodPost, "/api/play/start", StartPlayRequest{GameID: game.ID}, "", anonPlayer)
	start := decodeJSON[StartPlayResponse](t, w)

	// A different anonymous player cannot drive this run.
	w = env.do(t, http.MethodGet, "/api/play/"+start.Session.ID+"/state", nil, "", "someone-else")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another player, got %d", w.Code)
	}
}

func TestPlayQuitTearsDownRun(t *testing.T) {
	env := newTestEnv(t)
	game := seedPlayableGame(t, env, false)

	w := env.do(t, http.MethodPost, "/api/play/start", StartPlayRequest{GameID: game.ID}, "", anonPlayer)
	start := decodeJSON[StartPlayResponse](t, w)
	base := "/api/play/" + start.Session.ID

	w = env.do(t, http.MethodPost, base+"/quit", nil, "", anonPlayer)
	if w.Code != http.StatusNoContent {
		t.Fatalf("quit: expected 204, got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, base+"/state", nil, "", anonPlayer)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after quit, got %d", w.Code)
	}

	// The session itself survives for resuming later.
	local := session.NewLocalStore(env.localDir, anonPlayer)
	if _, err := local.Active(context.Background(), game.ID); err != nil {
		t.Errorf("expected the session to stay active, got %v", err)
	}
}
