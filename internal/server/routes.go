package server

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
	"golang.org/x/time/rate"
)

func addRoutes(r chi.Router, d Deps) {
	broker := NewBroker()
	limiter := newLoginLimiter(rate.Every(time.Second), 5)

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("GeoQuest API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(d.Logger, d.DB, d.Redis))

	r.Route("/api", func(r chi.Router) {
		r.Use(identityMiddleware(d.Store))

		r.Route("/auth", func(r chi.Router) {
			r.With(limiter.middleware).Post("/register", handleRegister(d.Store))
			r.With(limiter.middleware).Post("/login", handleLogin(d.Store))
			r.Post("/logout", handleLogout(d.Store))
			r.With(requireUser).Get("/me", handleMe(d.Store))
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/", handleListGames(d.Store))
			r.With(requireUser).Post("/", handleCreateGame(d.Store))
			r.With(requireUser).Get("/mine", handleMyGames(d.Store))

			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", handleGetGame(d.Games))
				r.With(requireUser).Put("/", handleUpdateGame(d.Store))
				r.With(requireUser).Delete("/", handleDeleteGame(d.Store))

				r.Get("/checkpoints", handleListCheckpoints(d.Games))
				r.With(requireUser).Post("/checkpoints", handleCreateCheckpoint(d.Store))

				r.Get("/players", handleListPlayers(d.Store))
				r.Get("/events", handleGameEvents(d.Games, broker))

				r.Get("/session", handleActiveSession(d.Games, d.Sessions))
				r.Post("/session", handleStartSession(d.Games, d.Sessions))
			})
		})

		r.Route("/checkpoints/{checkpointID}", func(r chi.Router) {
			r.Use(requireUser)
			r.Put("/", handleUpdateCheckpoint(d.Store))
			r.Delete("/", handleDeleteCheckpoint(d.Store))
		})

		r.Route("/play", func(r chi.Router) {
			r.Post("/start", handleStartPlay(d.Games, d.Store, d.Sessions, d.Runs, broker, d.Logger))

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/state", handlePlayState(d.Runs))
				r.Post("/position", handlePlayPosition(d.Runs))
				r.Post("/answer", handlePlayAnswer(d.Runs, broker, d.Logger))
				r.Post("/skip", handlePlaySkip(d.Runs, broker, d.Logger))
				r.Post("/content", handlePlayContent(d.Runs))
				r.Post("/quit", handlePlayQuit(d.Runs))
				r.Post("/abandon", handlePlayAbandon(d.Runs, d.Logger))
				r.Get("/ws", handlePlayWS(d.Runs, d.Logger))
			})
		})

		r.Route("/uploads", func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/", handleUpload(d.DataDir))
			r.Delete("/{name}", handleDeleteUpload(d.DataDir))
		})
	})

	if d.DataDir != "" {
		uploads := http.FileServer(http.Dir(filepath.Join(d.DataDir, "uploads")))
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", uploads))
	}

	if d.SPADir != "" {
		if info, err := os.Stat(d.SPADir); err == nil && info.IsDir() {
			d.Logger.Info("serving SPA", "dir", d.SPADir)
			r.NotFound(handleSPA(d.SPADir))
		}
	}
}
