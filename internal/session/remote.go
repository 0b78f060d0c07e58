package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RemoteStore persists sessions in the game_sessions table, scoped to one
// signed-in user.
type RemoteStore struct {
	db     *sql.DB
	userID string
}

func NewRemoteStore(db *sql.DB, userID string) *RemoteStore {
	return &RemoteStore{db: db, userID: userID}
}

func (s *RemoteStore) Active(ctx context.Context, gameID string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, game_id, current_checkpoint_index, status,
			start_time, end_time, score, metadata
		FROM game_sessions
		WHERE user_id = ? AND game_id = ? AND status = 'active'
	`, s.userID, gameID)
	return scanSession(row)
}

func (s *RemoteStore) Create(ctx context.Context, gameID string) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    s.userID,
		GameID:    gameID,
		Status:    StatusActive,
		StartTime: time.Now().UTC(),
		Metadata:  Metadata{CheckpointsCompleted: []string{}},
	}

	meta, err := json.Marshal(sess.Metadata)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO game_sessions (id, user_id, game_id, current_checkpoint_index, status, start_time, metadata)
		VALUES (?, ?, ?, 0, 'active', ?, ?)
	`, sess.ID, sess.UserID, sess.GameID, sess.StartTime.Format(time.RFC3339Nano), string(meta))
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RemoteStore) UpdateProgress(ctx context.Context, id string, checkpointIndex int, meta *Metadata) (*Session, error) {
	if meta != nil {
		data, err := json.Marshal(meta)
		if err != nil {
			return nil, err
		}
		_, err = s.db.ExecContext(ctx, `
			UPDATE game_sessions SET current_checkpoint_index = ?, metadata = ?
			WHERE id = ? AND user_id = ?
		`, checkpointIndex, string(data), id, s.userID)
		if err != nil {
			return nil, err
		}
	} else {
		_, err := s.db.ExecContext(ctx, `
			UPDATE game_sessions SET current_checkpoint_index = ?
			WHERE id = ? AND user_id = ?
		`, checkpointIndex, id, s.userID)
		if err != nil {
			return nil, err
		}
	}
	return s.byID(ctx, id)
}

func (s *RemoteStore) Complete(ctx context.Context, id string, score int) (*Session, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE game_sessions SET status = 'completed', end_time = ?, score = ?
		WHERE id = ? AND user_id = ?
	`, time.Now().UTC().Format(time.RFC3339Nano), score, id, s.userID)
	if err != nil {
		return nil, err
	}
	return s.byID(ctx, id)
}

func (s *RemoteStore) Abandon(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE game_sessions SET status = 'abandoned', end_time = ?
		WHERE id = ? AND user_id = ?
	`, time.Now().UTC().Format(time.RFC3339Nano), id, s.userID)
	return err
}

func (s *RemoteStore) byID(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, game_id, current_checkpoint_index, status,
			start_time, end_time, score, metadata
		FROM game_sessions
		WHERE id = ? AND user_id = ?
	`, id, s.userID)
	return scanSession(row)
}

func scanSession(row *sql.Row) (*Session, error) {
	var sess Session
	var status, startTime, metaJSON string
	var endTime sql.NullString
	var score sql.NullInt64

	err := row.Scan(&sess.ID, &sess.UserID, &sess.GameID, &sess.CurrentCheckpointIndex,
		&status, &startTime, &endTime, &score, &metaJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sess.Status = Status(status)
	sess.StartTime, _ = time.Parse(time.RFC3339Nano, startTime)
	if endTime.Valid {
		t, err := time.Parse(time.RFC3339Nano, endTime.String)
		if err == nil {
			sess.EndTime = &t
		}
	}
	if score.Valid {
		v := int(score.Int64)
		sess.Score = &v
	}
	json.Unmarshal([]byte(metaJSON), &sess.Metadata)

	return &sess, nil
}
