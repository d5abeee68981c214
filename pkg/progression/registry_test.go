package progression

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebdray/storywalk/pkg/storage"
)

var storyEntry = CatalogEntry{
	Key:      "story_8",
	Kind:     KindStory,
	TargetID: "8",
	Cost:     10,
}

var extraEntry = CatalogEntry{
	Key:      "xw_extra_1",
	Kind:     KindExtra,
	TargetID: "extra_1",
	Cost:     5,
}

func newTestRegistry(mock *storage.Mock) *Registry {
	logger := testLogger()
	return NewRegistry(mock, NewLedger(mock, logger), logger)
}

func TestRegistry_Purchase(t *testing.T) {
	ctx := context.Background()

	t.Run("story purchase debits and records the story id", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "10")
		registry := newTestRegistry(mock)

		balance, err := registry.Purchase(ctx, storyEntry)
		require.NoError(t, err)
		assert.Equal(t, 0, balance)

		unlocked, err := registry.IsUnlocked(ctx, KindStory, "8")
		require.NoError(t, err)
		assert.True(t, unlocked)

		raw, ok := mock.Value(KeyUnlockedStories)
		require.True(t, ok, "unlock must persist before Purchase returns")
		set, err := DecodeSet(raw)
		require.NoError(t, err)
		assert.True(t, set.Has("8"))
	})

	t.Run("extra purchase records the catalog key, not the puzzle key", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "5")
		registry := newTestRegistry(mock)

		_, err := registry.Purchase(ctx, extraEntry)
		require.NoError(t, err)

		raw, _ := mock.Value(KeyUnlockedExtras)
		set, err := DecodeSet(raw)
		require.NoError(t, err)
		assert.True(t, set.Has("xw_extra_1"))
		assert.False(t, set.Has("extra_1"))
	})

	t.Run("second purchase fails without a second charge", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "10")
		registry := newTestRegistry(mock)

		balance, err := registry.Purchase(ctx, storyEntry)
		require.NoError(t, err)
		assert.Equal(t, 0, balance)

		_, err = registry.Purchase(ctx, storyEntry)
		assert.ErrorIs(t, err, ErrAlreadyUnlocked)

		raw, _ := mock.Value(KeyTicketsBalance)
		assert.Equal(t, "0", raw, "balance must not be double-charged or go negative")
	})

	t.Run("insufficient funds leaves balance and lock state unchanged", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "4")
		registry := newTestRegistry(mock)

		_, err := registry.Purchase(ctx, extraEntry)
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		raw, _ := mock.Value(KeyTicketsBalance)
		assert.Equal(t, "4", raw)

		unlocked, err := registry.IsUnlocked(ctx, KindExtra, extraEntry.Key)
		require.NoError(t, err)
		assert.False(t, unlocked)
	})

	t.Run("unlock persist failure is retried once", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "10")
		registry := newTestRegistry(mock)

		failures := 1
		mock.SetFunc = func(ctx context.Context, key, value string) error {
			if key == KeyUnlockedStories && failures > 0 {
				failures--
				return errors.New("transient write failure")
			}
			mock.Seed(key, value)
			return nil
		}

		balance, err := registry.Purchase(ctx, storyEntry)
		require.NoError(t, err)
		assert.Equal(t, 0, balance)

		unlocked, err := registry.IsUnlocked(ctx, KindStory, "8")
		require.NoError(t, err)
		assert.True(t, unlocked)
	})

	t.Run("persistent unlock failure refunds the debit", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "10")
		registry := newTestRegistry(mock)

		mock.SetFunc = func(ctx context.Context, key, value string) error {
			if key == KeyUnlockedStories {
				return errors.New("storage unavailable")
			}
			mock.Seed(key, value)
			return nil
		}

		_, err := registry.Purchase(ctx, storyEntry)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInsufficientFunds)

		raw, _ := mock.Value(KeyTicketsBalance)
		assert.Equal(t, "10", raw, "charged tickets must not be silently lost")
	})
}

func TestRegistry_IsUnlocked(t *testing.T) {
	ctx := context.Background()

	t.Run("namespaces are disjoint", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyUnlockedStories, `{"8":true}`)
		registry := newTestRegistry(mock)

		unlocked, err := registry.IsUnlocked(ctx, KindStory, "8")
		require.NoError(t, err)
		assert.True(t, unlocked)

		unlocked, err = registry.IsUnlocked(ctx, KindExtra, "8")
		require.NoError(t, err)
		assert.False(t, unlocked, "a story unlock must not leak into the extra namespace")
	})

	t.Run("corrupt set reads as empty without failing", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyUnlockedExtras, "{broken")
		registry := newTestRegistry(mock)

		unlocked, err := registry.IsUnlocked(ctx, KindExtra, "xw_extra_1")
		require.NoError(t, err)
		assert.False(t, unlocked)
	})
}

func TestIsExpected(t *testing.T) {
	assert.True(t, IsExpected(ErrInsufficientFunds))
	assert.True(t, IsExpected(ErrAlreadyUnlocked))
	assert.True(t, IsExpected(ErrUnknownItem))
	assert.False(t, IsExpected(errors.New("connection refused")))
}
