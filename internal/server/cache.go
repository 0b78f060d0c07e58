package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geoquest/geoquest/internal/model"
)

// cacheTTL bounds how stale an offline copy may get before it expires.
const cacheTTL = 7 * 24 * time.Hour

// CachedGameReader is a read-through wrapper for the play screen's load
// path: reads go to the primary store first and refresh the Redis copy on
// success; when the primary fails, the last-known copy is served silently.
// An error surfaces only when both fail. There is no sync-back; the next
// successful primary read simply overwrites the cache.
type CachedGameReader struct {
	primary GameReader
	rdb     *redis.Client
	logger  *slog.Logger
}

func NewCachedGameReader(primary GameReader, rdb *redis.Client, logger *slog.Logger) *CachedGameReader {
	return &CachedGameReader{primary: primary, rdb: rdb, logger: logger}
}

func gameKey(id string) string        { return "geoquest:game:" + id }
func checkpointsKey(id string) string { return "geoquest:checkpoints:" + id }

func (c *CachedGameReader) GetGame(ctx context.Context, id string) (model.Game, error) {
	g, err := c.primary.GetGame(ctx, id)
	if err == nil {
		c.put(ctx, gameKey(id), g)
		return g, nil
	}
	if errors.Is(err, ErrNotFound) {
		return g, err
	}

	c.logger.Warn("primary game read failed, trying cache", "game_id", id, "error", err)

	var cached model.Game
	if cacheErr := c.get(ctx, gameKey(id), &cached); cacheErr != nil {
		return g, fmt.Errorf("game read failed and no cached copy: %w", err)
	}
	return cached, nil
}

func (c *CachedGameReader) ListCheckpoints(ctx context.Context, gameID string) ([]model.Checkpoint, error) {
	cps, err := c.primary.ListCheckpoints(ctx, gameID)
	if err == nil {
		c.put(ctx, checkpointsKey(gameID), cps)
		return cps, nil
	}

	c.logger.Warn("primary checkpoint read failed, trying cache", "game_id", gameID, "error", err)

	var cached []model.Checkpoint
	if cacheErr := c.get(ctx, checkpointsKey(gameID), &cached); cacheErr != nil {
		return nil, fmt.Errorf("checkpoint read failed and no cached copy: %w", err)
	}
	return cached, nil
}

func (c *CachedGameReader) put(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	// Cache refresh is best-effort; a dead Redis must not break reads.
	if err := c.rdb.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		c.logger.Debug("cache refresh failed", "key", key, "error", err)
	}
}

func (c *CachedGameReader) get(ctx context.Context, key string, v any) error {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
