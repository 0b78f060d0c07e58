package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/geoquest/geoquest/internal/model"
	"github.com/geoquest/geoquest/internal/play"
	"github.com/geoquest/geoquest/internal/session"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "GeoQuest API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the GeoQuest treasure hunt game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/auth/register
	postRegister, _ := r.NewOperationContext(http.MethodPost, "/api/auth/register")
	postRegister.SetSummary("Register")
	postRegister.SetDescription("Creates a profile and returns a bearer token.")
	postRegister.AddReqStructure(RegisterRequest{})
	postRegister.AddRespStructure(AuthResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postRegister)

	// POST /api/auth/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/auth/login")
	postLogin.SetSummary("Log in")
	postLogin.SetDescription("Authenticates with email and password and returns a bearer token.")
	postLogin.AddReqStructure(LoginRequest{})
	postLogin.AddRespStructure(AuthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/auth/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/auth/logout")
	postLogout.SetSummary("Log out")
	postLogout.SetDescription("Invalidates the bearer token.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(postLogout)

	// GET /api/auth/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/auth/me")
	getMe.SetSummary("Current profile")
	getMe.SetDescription("Returns the signed-in profile with play statistics. Requires Bearer token.")
	getMe.AddRespStructure(MeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/games
	listGames, _ := r.NewOperationContext(http.MethodGet, "/api/games")
	listGames.SetSummary("List public games")
	listGames.SetDescription("Returns all published public games.")
	listGames.AddRespStructure([]model.Game{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listGames)

	// POST /api/games
	createGame, _ := r.NewOperationContext(http.MethodPost, "/api/games")
	createGame.SetSummary("Create game")
	createGame.SetDescription("Creates a draft game owned by the caller. Requires Bearer token.")
	createGame.AddReqStructure(GameRequest{})
	createGame.AddRespStructure(model.Game{}, openapi.WithHTTPStatus(http.StatusCreated))
	createGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createGame)

	// GET /api/games/mine
	myGames, _ := r.NewOperationContext(http.MethodGet, "/api/games/mine")
	myGames.SetSummary("List own games")
	myGames.SetDescription("Returns every game created by the caller, drafts included. Requires Bearer token.")
	myGames.AddRespStructure([]model.Game{}, openapi.WithHTTPStatus(http.StatusOK))
	myGames.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(myGames)

	// GET /api/games/{gameID}
	getGame, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}")
	getGame.SetSummary("Get game")
	getGame.SetDescription("Returns one game. Unpublished games are visible to their creator only.")
	getGame.AddRespStructure(model.Game{}, openapi.WithHTTPStatus(http.StatusOK))
	getGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getGame)

	// PUT /api/games/{gameID}
	updateGame, _ := r.NewOperationContext(http.MethodPut, "/api/games/{gameID}")
	updateGame.SetSummary("Update game")
	updateGame.SetDescription("Replaces the game's editable fields. Creator only.")
	updateGame.AddReqStructure(GameRequest{})
	updateGame.AddRespStructure(model.Game{}, openapi.WithHTTPStatus(http.StatusOK))
	updateGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	updateGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(updateGame)

	// DELETE /api/games/{gameID}
	deleteGame, _ := r.NewOperationContext(http.MethodDelete, "/api/games/{gameID}")
	deleteGame.SetSummary("Delete game")
	deleteGame.SetDescription("Deletes the game and its checkpoints. Creator only.")
	deleteGame.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	deleteGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteGame)

	// GET /api/games/{gameID}/checkpoints
	listCheckpoints, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/checkpoints")
	listCheckpoints.SetSummary("List checkpoints")
	listCheckpoints.SetDescription("Returns the game's checkpoints in traversal order. Secrets are stripped unless the caller is the creator.")
	listCheckpoints.AddRespStructure([]model.Checkpoint{}, openapi.WithHTTPStatus(http.StatusOK))
	listCheckpoints.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(listCheckpoints)

	// POST /api/games/{gameID}/checkpoints
	createCheckpoint, _ := r.NewOperationContext(http.MethodPost, "/api/games/{gameID}/checkpoints")
	createCheckpoint.SetSummary("Create checkpoint")
	createCheckpoint.SetDescription("Adds a checkpoint to the game. Creator only.")
	createCheckpoint.AddReqStructure(CheckpointRequest{})
	createCheckpoint.AddRespStructure(model.Checkpoint{}, openapi.WithHTTPStatus(http.StatusCreated))
	createCheckpoint.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createCheckpoint.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(createCheckpoint)

	// PUT /api/checkpoints/{checkpointID}
	updateCheckpoint, _ := r.NewOperationContext(http.MethodPut, "/api/checkpoints/{checkpointID}")
	updateCheckpoint.SetSummary("Update checkpoint")
	updateCheckpoint.SetDescription("Replaces a checkpoint's fields. Creator only.")
	updateCheckpoint.AddReqStructure(CheckpointRequest{})
	updateCheckpoint.AddRespStructure(model.Checkpoint{}, openapi.WithHTTPStatus(http.StatusOK))
	updateCheckpoint.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(updateCheckpoint)

	// DELETE /api/checkpoints/{checkpointID}
	deleteCheckpoint, _ := r.NewOperationContext(http.MethodDelete, "/api/checkpoints/{checkpointID}")
	deleteCheckpoint.SetSummary("Delete checkpoint")
	deleteCheckpoint.SetDescription("Removes a checkpoint. Creator only.")
	deleteCheckpoint.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteCheckpoint.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteCheckpoint)

	// GET /api/games/{gameID}/players
	listPlayers, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/players")
	listPlayers.SetSummary("List active players")
	listPlayers.SetDescription("Returns the shared live locations of players currently in the game.")
	listPlayers.AddRespStructure([]model.PlayerLocation{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listPlayers)

	// GET /api/games/{gameID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of live game notifications. Clients re-fetch the affected list on each event.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/games/{gameID}/session
	getSession, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/session")
	getSession.SetSummary("Get active session")
	getSession.SetDescription("Returns the caller's active session for the game, if any.")
	getSession.AddRespStructure(session.Session{}, openapi.WithHTTPStatus(http.StatusOK))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSession)

	// POST /api/games/{gameID}/session
	startSession, _ := r.NewOperationContext(http.MethodPost, "/api/games/{gameID}/session")
	startSession.SetSummary("Start session")
	startSession.SetDescription("Returns the caller's active session for the game, creating one if none exists. Idempotent.")
	startSession.AddRespStructure(session.Session{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(startSession)

	// POST /api/play/start
	startPlay, _ := r.NewOperationContext(http.MethodPost, "/api/play/start")
	startPlay.SetSummary("Start playing")
	startPlay.SetDescription("Loads the game, resumes or creates the session, and spins up the live play engine.")
	startPlay.AddReqStructure(StartPlayRequest{})
	startPlay.AddRespStructure(StartPlayResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	startPlay.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	startPlay.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(startPlay)

	// GET /api/play/{sessionID}/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/play/{sessionID}/state")
	getState.SetSummary("Get play state")
	getState.SetDescription("Returns the current engine state for a live run.")
	getState.AddRespStructure(play.State{}, openapi.WithHTTPStatus(http.StatusOK))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getState)

	// POST /api/play/{sessionID}/position
	postPosition, _ := r.NewOperationContext(http.MethodPost, "/api/play/{sessionID}/position")
	postPosition.SetSummary("Report position")
	postPosition.SetDescription("Feeds one GPS fix to the engine and returns the updated state.")
	postPosition.AddReqStructure(model.GPSFix{})
	postPosition.AddRespStructure(play.State{}, openapi.WithHTTPStatus(http.StatusOK))
	postPosition.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postPosition)

	// POST /api/play/{sessionID}/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/play/{sessionID}/answer")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Answers the active checkpoint's challenge. Correct answers advance the run.")
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// POST /api/play/{sessionID}/skip
	postSkip, _ := r.NewOperationContext(http.MethodPost, "/api/play/{sessionID}/skip")
	postSkip.SetSummary("Skip checkpoint")
	postSkip.SetDescription("Advances past the active checkpoint when the game allows skipping.")
	postSkip.AddRespStructure(play.State{}, openapi.WithHTTPStatus(http.StatusOK))
	postSkip.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postSkip)

	// POST /api/play/{sessionID}/content
	postContent, _ := r.NewOperationContext(http.MethodPost, "/api/play/{sessionID}/content")
	postContent.SetSummary("Show or hide challenge")
	postContent.SetDescription("Opens or closes the checkpoint challenge without touching progression.")
	postContent.AddReqStructure(ContentRequest{})
	postContent.AddRespStructure(play.State{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postContent)

	// POST /api/play/{sessionID}/quit
	postQuit, _ := r.NewOperationContext(http.MethodPost, "/api/play/{sessionID}/quit")
	postQuit.SetSummary("Quit run")
	postQuit.SetDescription("Tears down the live run. The session stays active for resuming later.")
	postQuit.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(postQuit)

	// POST /api/play/{sessionID}/abandon
	postAbandon, _ := r.NewOperationContext(http.MethodPost, "/api/play/{sessionID}/abandon")
	postAbandon.SetSummary("Abandon session")
	postAbandon.SetDescription("Marks the session abandoned and tears down the live run.")
	postAbandon.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(postAbandon)

	// GET /api/play/{sessionID}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/play/{sessionID}/ws")
	getWS.SetSummary("Play WebSocket")
	getWS.SetDescription("Upgrades to a WebSocket that accepts GPS fixes and streams engine state.")
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// POST /api/uploads
	postUpload, _ := r.NewOperationContext(http.MethodPost, "/api/uploads")
	postUpload.SetSummary("Upload image")
	postUpload.SetDescription("Stores a checkpoint image and returns its URL. Requires Bearer token.")
	postUpload.AddRespStructure(UploadResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postUpload.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postUpload)

	// DELETE /api/uploads/{name}
	deleteUpload, _ := r.NewOperationContext(http.MethodDelete, "/api/uploads/{name}")
	deleteUpload.SetSummary("Delete image")
	deleteUpload.SetDescription("Removes an uploaded image. Requires Bearer token.")
	deleteUpload.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteUpload.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteUpload)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
