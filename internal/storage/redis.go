package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/calebdray/storywalk/pkg/puzzle"
	"github.com/calebdray/storywalk/pkg/storage"
	"github.com/calebdray/storywalk/pkg/story"
)

// RedisStorage implements the Storage interface using Redis for progression
// state and the filesystem for static content (stories, puzzles, catalog)
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		dataDir: dataDir,
	}
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Progression state operations (Redis-backed). Values are opaque strings;
// the progression core owns their encoding.

func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	cmd := r.client.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return "", nil // Return empty string for not found, not an error
		}
		r.logger.Error("Failed to read key", "key", key, "error", err)
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return cmd.Val(), nil
}

func (r *RedisStorage) Set(ctx context.Context, key string, value string) error {
	// Progression state has no TTL; it lives until an explicit reset.
	cmd := r.client.Set(ctx, key, value, 0)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to write key", "key", key, "error", err)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) RemoveMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	cmd := r.client.Del(ctx, keys...)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to remove keys", "keys", keys, "error", err)
		return fmt.Errorf("failed to remove keys: %w", err)
	}
	r.logger.Debug("Removed keys", "count", len(keys), "deleted", cmd.Val())
	return nil
}

// Story content (filesystem-backed)

func (r *RedisStorage) ListStories(ctx context.Context) ([]story.Pin, error) {
	path := filepath.Join(r.dataDir, "stories.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []story.Pin{}, nil
		}
		return nil, fmt.Errorf("failed to read stories file: %w", err)
	}

	var pins []story.Pin
	if err := json.Unmarshal(data, &pins); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stories: %w", err)
	}

	return pins, nil
}

func (r *RedisStorage) GetStory(ctx context.Context, id string) (*story.Pin, error) {
	pins, err := r.ListStories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range pins {
		if pins[i].ID == id {
			return &pins[i], nil
		}
	}
	return nil, fmt.Errorf("story not found: %s", id)
}

// Puzzle content (filesystem-backed)

func (r *RedisStorage) ListPuzzles(ctx context.Context) ([]puzzle.Puzzle, error) {
	path := filepath.Join(r.dataDir, "puzzles.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []puzzle.Puzzle{}, nil
		}
		return nil, fmt.Errorf("failed to read puzzles file: %w", err)
	}

	var puzzles []puzzle.Puzzle
	if err := json.Unmarshal(data, &puzzles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal puzzles: %w", err)
	}

	return puzzles, nil
}

func (r *RedisStorage) GetPuzzle(ctx context.Context, key string) (*puzzle.Puzzle, error) {
	puzzles, err := r.ListPuzzles(ctx)
	if err != nil {
		return nil, err
	}
	for i := range puzzles {
		if puzzles[i].Key == key {
			return &puzzles[i], nil
		}
	}
	return nil, fmt.Errorf("puzzle not found: %s", key)
}
