package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// LocalStore keeps anonymous sessions as JSON files on the server's disk,
// one file per (owner, game) pair. This mirrors the browser localStorage
// strategy the game originally shipped with: progress survives restarts but
// is lost if the data directory is cleared, and there is no cross-device
// continuity.
type LocalStore struct {
	dir   string
	owner string
}

// NewLocalStore scopes a store to one anonymous owner token. Files live
// under dir/<owner>/.
func NewLocalStore(dir, owner string) *LocalStore {
	return &LocalStore{dir: dir, owner: owner}
}

func (s *LocalStore) path(gameID string) string {
	return filepath.Join(s.dir, s.owner, fmt.Sprintf("geoquest_anonymous_session_%s.json", gameID))
}

func (s *LocalStore) load(gameID string) (*Session, error) {
	data, err := os.ReadFile(s.path(gameID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decoding anonymous session: %w", err)
	}
	return &sess, nil
}

func (s *LocalStore) save(sess *Session) error {
	if sess.GameID == "" {
		return errors.New("game id is required")
	}
	if err := os.MkdirAll(filepath.Join(s.dir, s.owner), 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(sess.GameID), data, 0o644)
}

func (s *LocalStore) Active(ctx context.Context, gameID string) (*Session, error) {
	sess, err := s.load(gameID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusActive {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *LocalStore) Create(ctx context.Context, gameID string) (*Session, error) {
	sess := &Session{
		ID:        fmt.Sprintf("anonymous_%s_%d", gameID, time.Now().UnixNano()),
		UserID:    AnonymousUserID,
		GameID:    gameID,
		Status:    StatusActive,
		StartTime: time.Now().UTC(),
		Metadata:  Metadata{CheckpointsCompleted: []string{}},
	}
	if err := s.save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *LocalStore) UpdateProgress(ctx context.Context, id string, checkpointIndex int, meta *Metadata) (*Session, error) {
	sess, err := s.find(id)
	if err != nil {
		return nil, err
	}
	sess.CurrentCheckpointIndex = checkpointIndex
	if meta != nil {
		sess.Metadata = *meta
	}
	if err := s.save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *LocalStore) Complete(ctx context.Context, id string, score int) (*Session, error) {
	sess, err := s.find(id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess.Status = StatusCompleted
	sess.EndTime = &now
	sess.Score = &score
	if err := s.save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *LocalStore) Abandon(ctx context.Context, id string) error {
	sess, err := s.find(id)
	if err != nil {
		return err
	}
	sess.Status = StatusAbandoned
	return s.save(sess)
}

// find locates a session by ID by scanning the owner's files. Anonymous IDs
// embed the game ID, so the common case is a single direct read.
func (s *LocalStore) find(id string) (*Session, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, s.owner))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(s.dir, s.owner, e.Name()))
		if err != nil {
			continue
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		if sess.ID == id {
			return &sess, nil
		}
	}
	return nil, ErrNotFound
}
