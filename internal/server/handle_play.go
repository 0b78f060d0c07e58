package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/geoquest/geoquest/internal/geo"
	"github.com/geoquest/geoquest/internal/model"
	"github.com/geoquest/geoquest/internal/play"
	"github.com/geoquest/geoquest/internal/session"
)

const scorePerCheckpoint = 100

type StartPlayRequest struct {
	GameID string `json:"gameId"`
}

type StartPlayResponse struct {
	Session     *session.Session   `json:"session"`
	Game        model.Game         `json:"game"`
	Checkpoints []model.Checkpoint `json:"checkpoints"`
	State       play.State         `json:"state"`
}

type AnswerRequest struct {
	Answer    string   `json:"answer,omitempty"`
	Latitude  *geo.DMS `json:"latitude,omitempty"`
	Longitude *geo.DMS `json:"longitude,omitempty"`
}

type AnswerResponse struct {
	Correct    bool        `json:"correct"`
	Message    string      `json:"message,omitempty"`
	Validation *geo.Result `json:"validation,omitempty"`
	State      play.State  `json:"state"`
}

type ContentRequest struct {
	Show bool `json:"show"`
}

func handleStartPlay(games GameReader, store Store, sessions *session.Resolver, runs *play.Registry, broker *Broker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartPlayRequest
		if err := readJSON(r, &req); err != nil || req.GameID == "" {
			writeError(w, http.StatusBadRequest, "gameId is required")
			return
		}

		id := identityFrom(r)

		game, err := games.GetGame(r.Context(), req.GameID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !gameVisibleTo(game, id) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}

		checkpoints, err := games.ListCheckpoints(r.Context(), game.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if len(checkpoints) == 0 {
			writeError(w, http.StatusConflict, "game has no checkpoints")
			return
		}

		sstore := sessionStoreFor(sessions, id)
		sess, err := session.Start(r.Context(), sstore, game.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		engine := play.New()
		engine.Init(&game, checkpoints, sess)

		run := play.NewRun(sess.ID, sstore, engine)
		runs.Put(run)

		if game.Settings.ShareLocationRequired {
			startSharing(run, store, broker, game.ID, logger)
		}

		writeJSON(w, http.StatusOK, StartPlayResponse{
			Session:     sess,
			Game:        game,
			Checkpoints: sanitizeCheckpoints(checkpoints),
			State:       run.Snapshot(),
		})
	}
}

// startSharing wires the run's ticker to the shared player_locations table.
// Subscribers get a bare notification and re-fetch the full player list.
func startSharing(run *play.Run, store Store, broker *Broker, gameID string, logger *slog.Logger) {
	sessionID := run.SessionID

	share := func(ctx context.Context, fix model.GPSFix, index int) error {
		err := store.UpsertPlayerLocation(ctx, model.PlayerLocation{
			SessionID:              sessionID,
			GameID:                 gameID,
			Latitude:               fix.Latitude,
			Longitude:              fix.Longitude,
			Accuracy:               fix.Accuracy,
			CurrentCheckpointIndex: index,
		})
		if err != nil {
			return err
		}
		broker.Publish(gameID, GameEvent{Type: "location_update", SessionID: sessionID, CheckpointIndex: index})
		return nil
	}

	cleanup := func(ctx context.Context) error {
		if err := store.DeletePlayerLocation(ctx, sessionID); err != nil {
			return err
		}
		broker.Publish(gameID, GameEvent{Type: "location_removed", SessionID: sessionID})
		return nil
	}

	// The ticker outlives the start request, so it gets its own context.
	run.StartSharing(context.Background(), play.ShareInterval, share, cleanup, logger)
}

func ownsSession(sess *session.Session, id identity) bool {
	if id.User != nil {
		return sess.UserID == id.User.ID
	}
	return sess.UserID == session.AnonymousUserID
}

// runForRequest resolves the {sessionID} route param to a live run and
// checks the caller owns it, writing the error response itself on failure.
func runForRequest(runs *play.Registry, w http.ResponseWriter, r *http.Request) (*play.Run, bool) {
	run, ok := runs.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, "no live run for this session")
		return nil, false
	}

	var sess *session.Session
	run.Locked(func(p *play.Progress) { sess = p.Session() })
	if sess == nil || !ownsSession(sess, identityFrom(r)) {
		writeError(w, http.StatusForbidden, "session belongs to another player")
		return nil, false
	}
	return run, true
}

func handlePlayState(runs *play.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := runForRequest(runs, w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, run.Snapshot())
	}
}

func handlePlayPosition(runs *play.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := runForRequest(runs, w, r)
		if !ok {
			return
		}

		var fix model.GPSFix
		if err := readJSON(r, &fix); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		writeJSON(w, http.StatusOK, run.UpdatePosition(fix))
	}
}

func handlePlayAnswer(runs *play.Registry, broker *Broker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := runForRequest(runs, w, r)
		if !ok {
			return
		}

		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var (
			cp      *model.Checkpoint
			reached bool
			victory bool
		)
		run.Locked(func(p *play.Progress) {
			cp = p.Current()
			reached = p.Reached()
			victory = p.Victory()
		})

		if victory || cp == nil {
			writeError(w, http.StatusConflict, "game already complete")
			return
		}
		if !reached {
			writeError(w, http.StatusConflict, "checkpoint not reached yet")
			return
		}

		var resp AnswerResponse
		switch cp.Type {
		case model.CheckpointInfo:
			// Info checkpoints only require presence.
			resp.Correct = true
		case model.CheckpointPuzzle:
			answer := strings.TrimSpace(req.Answer)
			if answer == "" {
				writeError(w, http.StatusBadRequest, "answer is required")
				return
			}
			resp.Correct = strings.EqualFold(answer, strings.TrimSpace(cp.Content.PuzzleAnswer))
			if !resp.Correct {
				resp.Message = "That is not the answer. Try again."
			}
		case model.CheckpointInput:
			if req.Latitude == nil || req.Longitude == nil {
				writeError(w, http.StatusBadRequest, "latitude and longitude are required")
				return
			}
			if cp.SecretSolution == nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			res := geo.ValidateInput(*req.Latitude, *req.Longitude, *cp.SecretSolution, geo.DefaultToleranceSeconds)
			resp.Correct = res.IsValid
			resp.Message = res.Message
			resp.Validation = &res
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		var (
			sess       *session.Session
			index      int
			nowVictory bool
		)
		run.Locked(func(p *play.Progress) {
			if resp.Correct {
				p.CompleteCurrent()
			}
			sess = p.Session()
			index = p.Index()
			nowVictory = p.Victory()
			resp.State = p.Snapshot()
		})

		if sess != nil {
			if resp.Correct {
				sess.Metadata.CheckpointsCompleted = append(sess.Metadata.CheckpointsCompleted, cp.ID)
			} else if cp.Type != model.CheckpointInfo {
				sess.Metadata.WrongAttempts++
			}
			if _, err := run.Store.UpdateProgress(r.Context(), sess.ID, index, &sess.Metadata); err != nil {
				logger.Warn("persisting progress failed", "session_id", sess.ID, "error", err)
			}

			if resp.Correct {
				broker.Publish(sess.GameID, GameEvent{Type: "checkpoint_completed", SessionID: sess.ID, CheckpointIndex: index})
			}
			if nowVictory {
				score := resp.State.TotalCheckpoints * scorePerCheckpoint
				if _, err := run.Store.Complete(r.Context(), sess.ID, score); err != nil {
					logger.Warn("completing session failed", "session_id", sess.ID, "error", err)
				}
				broker.Publish(sess.GameID, GameEvent{Type: "game_completed", SessionID: sess.ID})
				run.StopSharing()
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handlePlaySkip(runs *play.Registry, broker *Broker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := runForRequest(runs, w, r)
		if !ok {
			return
		}

		var (
			allowed    bool
			before     int
			index      int
			nowVictory bool
			sess       *session.Session
			state      play.State
		)
		run.Locked(func(p *play.Progress) {
			if p.Game() != nil {
				allowed = p.Game().Settings.AllowSkip
			}
			before = p.Index()
			p.Skip()
			index = p.Index()
			nowVictory = p.Victory()
			sess = p.Session()
			state = p.Snapshot()
		})

		if !allowed {
			writeError(w, http.StatusConflict, "skipping is not allowed in this game")
			return
		}

		// A skipped checkpoint advances the index but is never recorded as
		// completed.
		if sess != nil && (index != before || nowVictory) {
			if _, err := run.Store.UpdateProgress(r.Context(), sess.ID, index, nil); err != nil {
				logger.Warn("persisting progress failed", "session_id", sess.ID, "error", err)
			}
			if nowVictory {
				score := state.TotalCheckpoints * scorePerCheckpoint
				if _, err := run.Store.Complete(r.Context(), sess.ID, score); err != nil {
					logger.Warn("completing session failed", "session_id", sess.ID, "error", err)
				}
				broker.Publish(sess.GameID, GameEvent{Type: "game_completed", SessionID: sess.ID})
				run.StopSharing()
			}
		}

		writeJSON(w, http.StatusOK, state)
	}
}

func handlePlayContent(runs *play.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := runForRequest(runs, w, r)
		if !ok {
			return
		}

		var req ContentRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var state play.State
		run.Locked(func(p *play.Progress) {
			if req.Show {
				p.Show()
			} else {
				p.Hide()
			}
			state = p.Snapshot()
		})
		writeJSON(w, http.StatusOK, state)
	}
}

func handlePlayQuit(runs *play.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := runForRequest(runs, w, r)
		if !ok {
			return
		}

		// The session stays active so the player can resume later; only the
		// in-memory run and its location sharing are torn down.
		runs.Remove(run.SessionID)
		run.Close()
		w.WriteHeader(http.StatusNoContent)
	}
}

func handlePlayAbandon(runs *play.Registry, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := runForRequest(runs, w, r)
		if !ok {
			return
		}

		var sess *session.Session
		run.Locked(func(p *play.Progress) { sess = p.Session() })

		if sess != nil {
			if err := run.Store.Abandon(r.Context(), sess.ID); err != nil {
				logger.Warn("abandoning session failed", "session_id", sess.ID, "error", err)
			}
		}

		runs.Remove(run.SessionID)
		run.Close()
		w.WriteHeader(http.StatusNoContent)
	}
}
