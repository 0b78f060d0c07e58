package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/geoquest/geoquest/internal/model"
)

type GameRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	IsPublic    bool               `json:"isPublic"`
	Difficulty  int                `json:"difficulty"`
	Settings    model.GameSettings `json:"settings"`
	Status      *model.GameStatus  `json:"status,omitempty"`
}

func isCreator(g model.Game, id identity) bool {
	return id.User != nil && g.CreatorID == id.User.ID
}

// gameVisibleTo hides unpublished and private games from everyone except
// their creator. Hidden games read as not found, not forbidden.
func gameVisibleTo(g model.Game, id identity) bool {
	if isCreator(g, id) {
		return true
	}
	return g.IsPublic && g.Status == model.GamePublished
}

func validGameRequest(req *GameRequest) (string, bool) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required", false
	}
	if req.Difficulty == 0 {
		req.Difficulty = 1
	}
	if req.Difficulty < 1 || req.Difficulty > 5 {
		return "difficulty must be between 1 and 5", false
	}
	if req.Status != nil {
		switch *req.Status {
		case model.GameDraft, model.GamePublished, model.GameArchived:
		default:
			return "invalid status", false
		}
	}
	return "", true
}

func handleListGames(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := store.ListPublicGames(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if games == nil {
			games = []model.Game{}
		}
		writeJSON(w, http.StatusOK, games)
	}
}

func handleMyGames(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := identityFrom(r)

		games, err := store.ListGamesByCreator(r.Context(), id.User.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if games == nil {
			games = []model.Game{}
		}
		writeJSON(w, http.StatusOK, games)
	}
}

func handleGetGame(games GameReader) http.HandlerFunc {
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
		if !gameVisibleTo(game, identityFrom(r)) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeJSON(w, http.StatusOK, game)
	}
}

func handleCreateGame(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg, ok := validGameRequest(&req); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		id := identityFrom(r)

		game := model.Game{
			CreatorID:   id.User.ID,
			Title:       req.Title,
			Description: req.Description,
			IsPublic:    req.IsPublic,
			Difficulty:  req.Difficulty,
			Settings:    req.Settings,
			Status:      model.GameDraft,
		}
		if req.Status != nil {
			game.Status = *req.Status
		}

		created, err := store.CreateGame(r.Context(), game)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func handleUpdateGame(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, ok := ownedGame(store, w, r)
		if !ok {
			return
		}

		var req GameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg, ok := validGameRequest(&req); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		game.Title = req.Title
		game.Description = req.Description
		game.IsPublic = req.IsPublic
		game.Difficulty = req.Difficulty
		game.Settings = req.Settings
		if req.Status != nil {
			game.Status = *req.Status
		}

		updated, err := store.UpdateGame(r.Context(), game)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func handleDeleteGame(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, ok := ownedGame(store, w, r)
		if !ok {
			return
		}
		if err := store.DeleteGame(r.Context(), game.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ownedGame loads the {gameID} route param and enforces creator ownership,
// writing the error response itself when the check fails.
func ownedGame(store Store, w http.ResponseWriter, r *http.Request) (model.Game, bool) {
	game, err := store.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "game not found")
		return game, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return game, false
	}
	if !isCreator(game, identityFrom(r)) {
		writeError(w, http.StatusForbidden, "only the creator can modify a game")
		return game, false
	}
	return game, true
}
