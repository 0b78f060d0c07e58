package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/geoquest/geoquest/internal/model"
	"github.com/geoquest/geoquest/internal/play"
)

// handlePlayWS streams the play loop over one socket: the client sends GPS
// fixes as JSON and the server answers each with the fresh engine state.
// The first message is the current state so reconnecting clients resync.
func handlePlayWS(runs *play.Registry, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := runForRequest(runs, w, r)
		if !ok {
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 4*time.Hour)
		defer cancel()

		if err := wsjson.Write(ctx, conn, run.Snapshot()); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		for {
			var fix model.GPSFix
			if err := wsjson.Read(ctx, conn, &fix); err != nil {
				logger.Debug("websocket read ended", "error", err)
				return
			}

			state := run.UpdatePosition(fix)
			if err := wsjson.Write(ctx, conn, state); err != nil {
				logger.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}
