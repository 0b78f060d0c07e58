package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/geoquest/geoquest/internal/geo"
	"github.com/geoquest/geoquest/internal/model"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// --- Profiles and auth ---

func (s *SQLiteStore) CreateProfile(ctx context.Context, email, username, passwordHash string) (model.Profile, error) {
	p := model.Profile{ID: uuid.NewString(), Email: email, Username: username}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO profiles (id, email, username, password_hash)
		VALUES (?, ?, NULLIF(?, ''), ?)
		RETURNING created_at
	`, p.ID, email, username, passwordHash).Scan(&p.CreatedAt)
	return p, err
}

func (s *SQLiteStore) ProfileByEmail(ctx context.Context, email string) (model.Profile, string, error) {
	var p model.Profile
	var username, avatar sql.NullString
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, username, avatar_url, password_hash, created_at
		FROM profiles WHERE email = ?
	`, email).Scan(&p.ID, &p.Email, &username, &avatar, &hash, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, "", ErrNotFound
	}
	p.Username = username.String
	p.AvatarURL = avatar.String
	return p, hash, err
}

func (s *SQLiteStore) ProfileByID(ctx context.Context, id string) (model.Profile, error) {
	var p model.Profile
	var username, avatar sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, username, avatar_url, created_at
		FROM profiles WHERE id = ?
	`, id).Scan(&p.ID, &p.Email, &username, &avatar, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	p.Username = username.String
	p.AvatarURL = avatar.String
	return p, err
}

func (s *SQLiteStore) CreateAuthSession(ctx context.Context, userID string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO auth_sessions (user_id)
		VALUES (?)
		RETURNING id
	`, userID).Scan(&token)
	return token, err
}

func (s *SQLiteStore) UserFromToken(ctx context.Context, token string) (model.Profile, error) {
	var p model.Profile
	var username, avatar sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.email, p.username, p.avatar_url, p.created_at
		FROM auth_sessions s
		JOIN profiles p ON p.id = s.user_id
		WHERE s.id = ?
	`, token).Scan(&p.ID, &p.Email, &username, &avatar, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	p.Username = username.String
	p.AvatarURL = avatar.String
	return p, err
}

func (s *SQLiteStore) DeleteAuthSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE id = ?`, token)
	return err
}

func (s *SQLiteStore) ProfileStats(ctx context.Context, userID string) (ProfileStats, error) {
	var stats ProfileStats

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM games WHERE creator_id = ?
	`, userID).Scan(&stats.GamesCreated)
	if err != nil {
		return stats, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT game_id) FROM game_sessions WHERE user_id = ?
	`, userID).Scan(&stats.GamesPlayed)
	if err != nil {
		return stats, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM game_sessions WHERE user_id = ? AND status = 'completed'
	`, userID).Scan(&stats.GamesCompleted)
	return stats, err
}

// --- Games ---

const gameColumns = `id, creator_id, title, COALESCE(description, ''), is_public, difficulty, settings, status, created_at, updated_at`

func scanGame(scan func(dest ...any) error) (model.Game, error) {
	var g model.Game
	var isPublic int
	var settingsJSON string
	err := scan(&g.ID, &g.CreatorID, &g.Title, &g.Description, &isPublic,
		&g.Difficulty, &settingsJSON, &g.Status, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return g, err
	}
	g.IsPublic = isPublic != 0
	json.Unmarshal([]byte(settingsJSON), &g.Settings)
	return g, nil
}

func (s *SQLiteStore) GetGame(ctx context.Context, id string) (model.Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	g, err := scanGame(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrNotFound
	}
	return g, err
}

func (s *SQLiteStore) listGames(ctx context.Context, query string, args ...any) ([]model.Game, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []model.Game{}
	for rows.Next() {
		g, err := scanGame(rows.Scan)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *SQLiteStore) ListPublicGames(ctx context.Context) ([]model.Game, error) {
	return s.listGames(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE is_public = 1 AND status = 'published'
		ORDER BY created_at DESC
	`)
}

func (s *SQLiteStore) ListGamesByCreator(ctx context.Context, creatorID string) ([]model.Game, error) {
	return s.listGames(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE creator_id = ?
		ORDER BY created_at DESC
	`, creatorID)
}

func (s *SQLiteStore) CreateGame(ctx context.Context, g model.Game) (model.Game, error) {
	g.ID = uuid.NewString()
	settings, err := json.Marshal(g.Settings)
	if err != nil {
		return g, err
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO games (id, creator_id, title, description, is_public, difficulty, settings, status)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?)
		RETURNING created_at, updated_at
	`, g.ID, g.CreatorID, g.Title, g.Description, boolInt(g.IsPublic), g.Difficulty,
		string(settings), g.Status).Scan(&g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (s *SQLiteStore) UpdateGame(ctx context.Context, g model.Game) (model.Game, error) {
	settings, err := json.Marshal(g.Settings)
	if err != nil {
		return g, err
	}

	err = s.db.QueryRowContext(ctx, `
		UPDATE games
		SET title = ?, description = NULLIF(?, ''), is_public = ?, difficulty = ?,
			settings = ?, status = ?, updated_at = ?
		WHERE id = ?
		RETURNING created_at, updated_at
	`, g.Title, g.Description, boolInt(g.IsPublic), g.Difficulty, string(settings),
		g.Status, nowStamp(), g.ID).Scan(&g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrNotFound
	}
	return g, err
}

func (s *SQLiteStore) DeleteGame(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Checkpoints ---

const checkpointColumns = `id, game_id, order_index, latitude, longitude, radius, type, content, secret_solution, is_fake, created_at, updated_at`

func scanCheckpoint(scan func(dest ...any) error) (model.Checkpoint, error) {
	var cp model.Checkpoint
	var contentJSON string
	var secretJSON sql.NullString
	var isFake int
	err := scan(&cp.ID, &cp.GameID, &cp.OrderIndex, &cp.Latitude, &cp.Longitude,
		&cp.Radius, &cp.Type, &contentJSON, &secretJSON, &isFake, &cp.CreatedAt, &cp.UpdatedAt)
	if err != nil {
		return cp, err
	}
	cp.IsFake = isFake != 0
	json.Unmarshal([]byte(contentJSON), &cp.Content)
	if secretJSON.Valid && secretJSON.String != "" {
		var sol geo.Solution
		if json.Unmarshal([]byte(secretJSON.String), &sol) == nil {
			cp.SecretSolution = &sol
		}
	}
	return cp, nil
}

func (s *SQLiteStore) ListCheckpoints(ctx context.Context, gameID string) ([]model.Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+checkpointColumns+` FROM checkpoints
		WHERE game_id = ?
		ORDER BY order_index ASC
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	checkpoints := []model.Checkpoint{}
	for rows.Next() {
		cp, err := scanCheckpoint(rows.Scan)
		if err != nil {
			return nil, err
		}
		checkpoints = append(checkpoints, cp)
	}
	return checkpoints, rows.Err()
}

func (s *SQLiteStore) GetCheckpoint(ctx context.Context, id string) (model.Checkpoint, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+checkpointColumns+` FROM checkpoints WHERE id = ?`, id)
	cp, err := scanCheckpoint(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return cp, ErrNotFound
	}
	return cp, err
}

func (s *SQLiteStore) CreateCheckpoint(ctx context.Context, cp model.Checkpoint) (model.Checkpoint, error) {
	cp.ID = uuid.NewString()
	content, err := json.Marshal(cp.Content)
	if err != nil {
		return cp, err
	}
	var secret any
	if cp.SecretSolution != nil {
		data, err := json.Marshal(cp.SecretSolution)
		if err != nil {
			return cp, err
		}
		secret = string(data)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO checkpoints (id, game_id, order_index, latitude, longitude, radius, type, content, secret_solution, is_fake)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at
	`, cp.ID, cp.GameID, cp.OrderIndex, cp.Latitude, cp.Longitude, cp.Radius,
		cp.Type, string(content), secret, boolInt(cp.IsFake)).Scan(&cp.CreatedAt, &cp.UpdatedAt)
	return cp, err
}

func (s *SQLiteStore) UpdateCheckpoint(ctx context.Context, cp model.Checkpoint) (model.Checkpoint, error) {
	content, err := json.Marshal(cp.Content)
	if err != nil {
		return cp, err
	}
	var secret any
	if cp.SecretSolution != nil {
		data, err := json.Marshal(cp.SecretSolution)
		if err != nil {
			return cp, err
		}
		secret = string(data)
	}

	err = s.db.QueryRowContext(ctx, `
		UPDATE checkpoints
		SET order_index = ?, latitude = ?, longitude = ?, radius = ?, type = ?,
			content = ?, secret_solution = ?, is_fake = ?, updated_at = ?
		WHERE id = ?
		RETURNING game_id, created_at, updated_at
	`, cp.OrderIndex, cp.Latitude, cp.Longitude, cp.Radius, cp.Type, string(content),
		secret, boolInt(cp.IsFake), nowStamp(), cp.ID).Scan(&cp.GameID, &cp.CreatedAt, &cp.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return cp, ErrNotFound
	}
	return cp, err
}

func (s *SQLiteStore) DeleteCheckpoint(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Player locations ---

func (s *SQLiteStore) UpsertPlayerLocation(ctx context.Context, loc model.PlayerLocation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO player_locations (session_id, game_id, latitude, longitude, accuracy, current_checkpoint_index, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			accuracy = excluded.accuracy,
			current_checkpoint_index = excluded.current_checkpoint_index,
			last_seen_at = excluded.last_seen_at
	`, loc.SessionID, loc.GameID, loc.Latitude, loc.Longitude, loc.Accuracy,
		loc.CurrentCheckpointIndex, nowStamp())
	return err
}

func (s *SQLiteStore) DeletePlayerLocation(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM player_locations WHERE session_id = ?`, sessionID)
	return err
}

func (s *SQLiteStore) ListActivePlayers(ctx context.Context, gameID string) ([]model.PlayerLocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, game_id, latitude, longitude, COALESCE(accuracy, 0), current_checkpoint_index, last_seen_at
		FROM player_locations
		WHERE game_id = ?
		ORDER BY last_seen_at DESC
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []model.PlayerLocation{}
	for rows.Next() {
		var loc model.PlayerLocation
		if err := rows.Scan(&loc.SessionID, &loc.GameID, &loc.Latitude, &loc.Longitude,
			&loc.Accuracy, &loc.CurrentCheckpointIndex, &loc.LastSeenAt); err != nil {
			return nil, err
		}
		players = append(players, loc)
	}
	return players, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
