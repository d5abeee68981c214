package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/calebdray/storywalk/pkg/puzzle"
	"github.com/calebdray/storywalk/pkg/story"
)

// Mock is an in-memory implementation of Storage for testing. The optional
// Func fields override individual operations, which is how tests inject
// storage failures; when nil, the map-backed default behavior applies.
type Mock struct {
	mu      sync.RWMutex
	values  map[string]string
	stories []story.Pin
	puzzles []puzzle.Puzzle

	PingErr        error
	GetFunc        func(ctx context.Context, key string) (string, error)
	SetFunc        func(ctx context.Context, key, value string) error
	RemoveManyFunc func(ctx context.Context, keys ...string) error
}

// Ensure Mock implements Storage interface
var _ Storage = (*Mock)(nil)

// NewMock creates an empty mock store.
func NewMock() *Mock {
	return &Mock{values: make(map[string]string)}
}

// SetStories seeds the static story content.
func (m *Mock) SetStories(pins []story.Pin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stories = pins
}

// SetPuzzles seeds the static puzzle content.
func (m *Mock) SetPuzzles(puzzles []puzzle.Puzzle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puzzles = puzzles
}

// Seed stores a raw value directly, bypassing any SetFunc override.
func (m *Mock) Seed(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Value reads a raw stored value directly for assertions.
func (m *Mock) Value(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Mock) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PingErr
}

func (m *Mock) Close() error {
	return nil
}

func (m *Mock) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *Mock) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Mock) RemoveMany(ctx context.Context, keys ...string) error {
	if m.RemoveManyFunc != nil {
		return m.RemoveManyFunc(ctx, keys...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *Mock) ListStories(ctx context.Context) ([]story.Pin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stories, nil
}

func (m *Mock) GetStory(ctx context.Context, id string) (*story.Pin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.stories {
		if m.stories[i].ID == id {
			pin := m.stories[i]
			return &pin, nil
		}
	}
	return nil, fmt.Errorf("story not found: %s", id)
}

func (m *Mock) ListPuzzles(ctx context.Context) ([]puzzle.Puzzle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puzzles, nil
}

func (m *Mock) GetPuzzle(ctx context.Context, key string) (*puzzle.Puzzle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.puzzles {
		if m.puzzles[i].Key == key {
			p := m.puzzles[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("puzzle not found: %s", key)
}
