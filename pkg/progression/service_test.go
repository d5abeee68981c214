package progression

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebdray/storywalk/pkg/storage"
)

var testCatalog = Catalog{
	{Key: "story_8", Kind: KindStory, TargetID: "8", Cost: 10},
	{Key: "xw_extra_1", Kind: KindExtra, TargetID: "extra_1", Cost: 5},
}

func newTestService(mock *storage.Mock) *Service {
	return NewService(mock, testCatalog, testLogger())
}

func TestService_Purchase(t *testing.T) {
	ctx := context.Background()

	t.Run("purchase by catalog key", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "10")
		service := newTestService(mock)

		result, err := service.Purchase(ctx, "story_8")
		require.NoError(t, err)
		assert.Equal(t, 0, result.Balance)
		assert.Equal(t, "story_8", result.Entry.Key)

		unlocked, err := service.IsStoryUnlocked(ctx, "8")
		require.NoError(t, err)
		assert.True(t, unlocked)
	})

	t.Run("unknown key fails before any charge", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "10")
		service := newTestService(mock)

		_, err := service.Purchase(ctx, "story_99")
		assert.ErrorIs(t, err, ErrUnknownItem)

		raw, _ := mock.Value(KeyTicketsBalance)
		assert.Equal(t, "10", raw)
	})
}

func TestService_IsExtraPuzzleUnlocked(t *testing.T) {
	ctx := context.Background()
	mock := storage.NewMock()
	mock.Seed(KeyTicketsBalance, "5")
	service := newTestService(mock)

	unlocked, err := service.IsExtraPuzzleUnlocked(ctx, "extra_1")
	require.NoError(t, err)
	assert.False(t, unlocked)

	_, err = service.Purchase(ctx, "xw_extra_1")
	require.NoError(t, err)

	// The unlock is recorded under the catalog key, but lookups go by
	// puzzle key.
	unlocked, err = service.IsExtraPuzzleUnlocked(ctx, "extra_1")
	require.NoError(t, err)
	assert.True(t, unlocked)

	unlocked, err = service.IsExtraPuzzleUnlocked(ctx, "extra_2")
	require.NoError(t, err)
	assert.False(t, unlocked, "extra without a catalog entry is not unlocked")
}

func TestService_ResetProgress(t *testing.T) {
	ctx := context.Background()
	mock := storage.NewMock()
	service := newTestService(mock)

	// Build up a full progression history.
	_, err := service.SubmitAnswer(ctx, "main_1", "LOTUS", "LOTUS")
	require.NoError(t, err)
	_, err = service.SubmitAnswer(ctx, "main_2", "HERD", "HERD")
	require.NoError(t, err)
	_, err = service.Purchase(ctx, "xw_extra_1")
	require.NoError(t, err)
	mock.Seed(KeyOnboardingSeen, "1")
	mock.Seed(KeySettingsVibration, "0")

	require.NoError(t, service.ResetProgress(ctx))

	balance, err := service.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	solved, err := service.IsSolved(ctx, "main_1")
	require.NoError(t, err)
	assert.False(t, solved)

	unlocked, err := service.IsUnlocked(ctx, KindExtra, "xw_extra_1")
	require.NoError(t, err)
	assert.False(t, unlocked)

	_, ok := mock.Value(KeyOnboardingSeen)
	assert.False(t, ok, "preference keys are cleared with the progression state")
	_, ok = mock.Value(KeySettingsVibration)
	assert.False(t, ok)
}

func TestService_ResetProgress_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	mock := storage.NewMock()
	service := newTestService(mock)

	_, err := service.SubmitAnswer(ctx, "main_1", "LOTUS", "LOTUS")
	require.NoError(t, err)

	mock.RemoveManyFunc = func(ctx context.Context, keys ...string) error {
		return errors.New("storage unavailable")
	}

	assert.Error(t, service.ResetProgress(ctx))

	// Nothing was cleared piecemeal.
	mock.RemoveManyFunc = nil
	balance, err := service.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
}

// Crediting and solving, then re-reading the same store through a fresh
// service, reproduces identical state.
func TestService_RoundTripPersistence(t *testing.T) {
	ctx := context.Background()
	mock := storage.NewMock()

	first := newTestService(mock)
	_, err := first.SubmitAnswer(ctx, "main_1", "LOTUS", "LOTUS")
	require.NoError(t, err)
	_, err = first.SubmitAnswer(ctx, "main_2", "HERD", "HERD")
	require.NoError(t, err)
	_, err = first.Purchase(ctx, "xw_extra_1")
	require.NoError(t, err)
	before := first.Snapshot(ctx)

	// Simulate an app relaunch: new in-memory state over the same store.
	second := newTestService(mock)
	after := second.Snapshot(ctx)

	assert.Equal(t, before, after)
	assert.Equal(t, 5, after.Balance)
	assert.Equal(t, []string{"main_1", "main_2"}, after.Solved)
	assert.Equal(t, []string{"xw_extra_1"}, after.UnlockedExtras)
}

func TestService_Snapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store yields zero values", func(t *testing.T) {
		service := newTestService(storage.NewMock())
		snap := service.Snapshot(ctx)
		assert.Equal(t, 0, snap.Balance)
		assert.Empty(t, snap.Solved)
		assert.Empty(t, snap.UnlockedExtras)
		assert.Empty(t, snap.UnlockedStories)
	})

	t.Run("storage failure degrades to defaults instead of failing", func(t *testing.T) {
		mock := storage.NewMock()
		mock.GetFunc = func(ctx context.Context, key string) (string, error) {
			return "", errors.New("connection refused")
		}
		service := newTestService(mock)

		snap := service.Snapshot(ctx)
		assert.Equal(t, 0, snap.Balance)
		assert.Empty(t, snap.Solved)
	})

	t.Run("one corrupt key does not affect the others", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "15")
		mock.Seed(KeySolvedPuzzles, "{broken")
		mock.Seed(KeyUnlockedStories, `{"8":true}`)
		service := newTestService(mock)

		snap := service.Snapshot(ctx)
		assert.Equal(t, 15, snap.Balance)
		assert.Empty(t, snap.Solved)
		assert.Equal(t, []string{"8"}, snap.UnlockedStories)
	})
}

func TestCatalog(t *testing.T) {
	t.Run("lookup by key and by target", func(t *testing.T) {
		entry, ok := testCatalog.Get("xw_extra_1")
		require.True(t, ok)
		assert.Equal(t, 5, entry.Cost)

		entry, ok = testCatalog.ByTarget(KindExtra, "extra_1")
		require.True(t, ok)
		assert.Equal(t, "xw_extra_1", entry.Key)

		_, ok = testCatalog.ByTarget(KindStory, "extra_1")
		assert.False(t, ok)
	})

	t.Run("validation catches bad entries", func(t *testing.T) {
		bad := Catalog{
			{Key: "a", Kind: KindStory, TargetID: "1", Cost: 0},
			{Key: "a", Kind: "weird", TargetID: "", Cost: 5},
		}
		errs := bad.Validate()
		assert.NotEmpty(t, errs)
		assert.Len(t, errs, 4) // zero cost, duplicate key, bad kind, missing target
	})

	t.Run("valid catalog passes", func(t *testing.T) {
		assert.Empty(t, testCatalog.Validate())
	})
}
