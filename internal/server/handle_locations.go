package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/geoquest/geoquest/internal/model"
)

func handleListPlayers(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, ok := visibleGameID(store, w, r)
		if !ok {
			return
		}

		players, err := store.ListActivePlayers(r.Context(), gameID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if players == nil {
			players = []model.PlayerLocation{}
		}
		writeJSON(w, http.StatusOK, players)
	}
}

// handleGameEvents is the SSE stream for one game: location updates and
// checkpoint completions arrive as bare notifications and the client
// re-fetches whatever list changed.
func handleGameEvents(games GameReader, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, ok := visibleGameID(games, w, r)
		if !ok {
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		ch := broker.Subscribe(gameID)
		defer broker.Unsubscribe(gameID, ch)

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: game\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
