package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/geoquest/geoquest/internal/geo"
	"github.com/geoquest/geoquest/internal/model"
)

type CheckpointRequest struct {
	OrderIndex     int                     `json:"orderIndex"`
	Latitude       float64                 `json:"latitude"`
	Longitude      float64                 `json:"longitude"`
	Radius         float64                 `json:"radius"`
	Type           model.CheckpointType    `json:"type"`
	Content        model.CheckpointContent `json:"content"`
	SecretSolution *geo.Solution           `json:"secretSolution,omitempty"`
	IsFake         bool                    `json:"isFake"`
}

func validCheckpointRequest(req *CheckpointRequest) (string, bool) {
	if req.Latitude < -90 || req.Latitude > 90 {
		return "latitude must be between -90 and 90", false
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return "longitude must be between -180 and 180", false
	}
	if req.OrderIndex < 0 {
		return "orderIndex must not be negative", false
	}
	if req.Radius <= 0 {
		req.Radius = 10
	}
	req.Content.Title = strings.TrimSpace(req.Content.Title)
	if req.Content.Title == "" {
		return "content.title is required", false
	}

	switch req.Type {
	case model.CheckpointInfo:
	case model.CheckpointPuzzle:
		if strings.TrimSpace(req.Content.PuzzleAnswer) == "" {
			return "puzzle checkpoints need content.puzzle_answer", false
		}
	case model.CheckpointInput:
		if req.SecretSolution == nil {
			return "input checkpoints need a secretSolution", false
		}
	default:
		return "type must be info, puzzle or input", false
	}
	return "", true
}

// sanitizeCheckpoint strips everything a player could use to cheat: the
// secret coordinates and the puzzle answer. Decoy checkpoints get a shifted
// fake solution instead so the map still renders something convincing.
func sanitizeCheckpoint(cp model.Checkpoint) model.Checkpoint {
	cp.Content.PuzzleAnswer = ""
	if cp.IsFake && cp.SecretSolution != nil {
		fake := geo.FakeSolution(*cp.SecretSolution, geo.DefaultFakeOffset)
		cp.SecretSolution = &fake
	} else {
		cp.SecretSolution = nil
	}
	return cp
}

func sanitizeCheckpoints(cps []model.Checkpoint) []model.Checkpoint {
	out := make([]model.Checkpoint, len(cps))
	for i, cp := range cps {
		out[i] = sanitizeCheckpoint(cp)
	}
	return out
}

func handleListCheckpoints(games GameReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, err := games.GetGame(r.Context(), chi.URLParam(r, "gameID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		id := identityFrom(r)
		if !gameVisibleTo(game, id) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}

		cps, err := games.ListCheckpoints(r.Context(), game.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if cps == nil {
			cps = []model.Checkpoint{}
		}
		if !isCreator(game, id) {
			cps = sanitizeCheckpoints(cps)
		}
		writeJSON(w, http.StatusOK, cps)
	}
}

func handleCreateCheckpoint(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, ok := ownedGame(store, w, r)
		if !ok {
			return
		}

		var req CheckpointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg, ok := validCheckpointRequest(&req); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		created, err := store.CreateCheckpoint(r.Context(), model.Checkpoint{
			GameID:         game.ID,
			OrderIndex:     req.OrderIndex,
			Latitude:       req.Latitude,
			Longitude:      req.Longitude,
			Radius:         req.Radius,
			Type:           req.Type,
			Content:        req.Content,
			SecretSolution: req.SecretSolution,
			IsFake:         req.IsFake,
		})
		if err != nil {
			// UNIQUE(game_id, order_index) makes duplicate positions a clash.
			writeError(w, http.StatusConflict, "a checkpoint already exists at this orderIndex")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func handleUpdateCheckpoint(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cp, ok := ownedCheckpoint(store, w, r)
		if !ok {
			return
		}

		var req CheckpointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg, ok := validCheckpointRequest(&req); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		cp.OrderIndex = req.OrderIndex
		cp.Latitude = req.Latitude
		cp.Longitude = req.Longitude
		cp.Radius = req.Radius
		cp.Type = req.Type
		cp.Content = req.Content
		cp.SecretSolution = req.SecretSolution
		cp.IsFake = req.IsFake

		updated, err := store.UpdateCheckpoint(r.Context(), cp)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func handleDeleteCheckpoint(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cp, ok := ownedCheckpoint(store, w, r)
		if !ok {
			return
		}
		if err := store.DeleteCheckpoint(r.Context(), cp.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ownedCheckpoint(store Store, w http.ResponseWriter, r *http.Request) (model.Checkpoint, bool) {
	cp, err := store.GetCheckpoint(r.Context(), chi.URLParam(r, "checkpointID"))
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "checkpoint not found")
		return cp, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return cp, false
	}

	game, err := store.GetGame(r.Context(), cp.GameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return cp, false
	}
	if !isCreator(game, identityFrom(r)) {
		writeError(w, http.StatusForbidden, "only the creator can modify checkpoints")
		return cp, false
	}
	return cp, true
}
