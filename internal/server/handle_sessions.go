package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geoquest/geoquest/internal/session"
)

// sessionStoreFor picks the persistence backend for the caller: SQL for
// signed-in players, a server-local file store for anonymous ones.
func sessionStoreFor(sessions *session.Resolver, id identity) session.Store {
	if id.User != nil {
		return sessions.ForUser(id.User.ID)
	}
	return sessions.ForAnonymous(id.AnonID)
}

// visibleGameID loads the {gameID} route param and hides games the caller
// may not see. Returns the ID with ok=false after writing the error.
func visibleGameID(games GameReader, w http.ResponseWriter, r *http.Request) (string, bool) {
	gameID := chi.URLParam(r, "gameID")

	game, err := games.GetGame(r.Context(), gameID)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "game not found")
		return gameID, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return gameID, false
	}
	if !gameVisibleTo(game, identityFrom(r)) {
		writeError(w, http.StatusNotFound, "game not found")
		return gameID, false
	}
	return gameID, true
}

func handleActiveSession(games GameReader, sessions *session.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, ok := visibleGameID(games, w, r)
		if !ok {
			return
		}

		sstore := sessionStoreFor(sessions, identityFrom(r))
		sess, err := sstore.Active(r.Context(), gameID)
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no active session")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func handleStartSession(games GameReader, sessions *session.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, ok := visibleGameID(games, w, r)
		if !ok {
			return
		}

		sstore := sessionStoreFor(sessions, identityFrom(r))
		sess, err := session.Start(r.Context(), sstore, gameID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}
