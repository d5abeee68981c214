package storage

import (
	"context"

	"github.com/calebdray/storywalk/pkg/puzzle"
	"github.com/calebdray/storywalk/pkg/story"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// KV is the string-keyed persistence contract consumed by the progression
// core. Values are whole strings; there is no transactional guarantee beyond
// per-key atomicity.
type KV interface {
	// Get retrieves the value for a key.
	// Returns "" (not an error) if the key doesn't exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value under a key. The write must be acknowledged
	// before Set returns nil.
	Set(ctx context.Context, key string, value string) error

	// RemoveMany deletes all of the given keys in one operation.
	RemoveMany(ctx context.Context, keys ...string) error
}

// Storage defines a unified interface for all storage operations.
// This interface combines progression persistence (Redis) with static
// content loading (filesystem).
type Storage interface {
	HealthChecker
	Closer
	KV

	// Story content (filesystem-backed)
	ListStories(ctx context.Context) ([]story.Pin, error)
	GetStory(ctx context.Context, id string) (*story.Pin, error)

	// Puzzle content (filesystem-backed)
	ListPuzzles(ctx context.Context) ([]puzzle.Puzzle, error)
	GetPuzzle(ctx context.Context, key string) (*puzzle.Puzzle, error)
}
