package progression

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebdray/storywalk/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func TestLedger_Balance(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key reads as zero", func(t *testing.T) {
		ledger := NewLedger(storage.NewMock(), testLogger())
		balance, err := ledger.Balance(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, balance)
	})

	t.Run("reads persisted decimal value", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "35")
		ledger := NewLedger(mock, testLogger())

		balance, err := ledger.Balance(ctx)
		require.NoError(t, err)
		assert.Equal(t, 35, balance)
	})

	t.Run("corrupt value coerces to zero", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "not a number")
		ledger := NewLedger(mock, testLogger())

		balance, err := ledger.Balance(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, balance)
	})

	t.Run("negative stored value coerces to zero", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "-7")
		ledger := NewLedger(mock, testLogger())

		balance, err := ledger.Balance(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, balance)
	})

	t.Run("read failure propagates", func(t *testing.T) {
		mock := storage.NewMock()
		mock.GetFunc = func(ctx context.Context, key string) (string, error) {
			return "", errors.New("connection refused")
		}
		ledger := NewLedger(mock, testLogger())

		_, err := ledger.Balance(ctx)
		assert.Error(t, err)
	})
}

func TestLedger_Credit(t *testing.T) {
	ctx := context.Background()

	t.Run("adds and persists", func(t *testing.T) {
		mock := storage.NewMock()
		ledger := NewLedger(mock, testLogger())

		balance, err := ledger.Credit(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, balance)

		raw, ok := mock.Value(KeyTicketsBalance)
		require.True(t, ok, "credit must persist before returning")
		assert.Equal(t, "5", raw)

		balance, err = ledger.Credit(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 15, balance)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		ledger := NewLedger(storage.NewMock(), testLogger())

		_, err := ledger.Credit(ctx, 0)
		assert.ErrorIs(t, err, ErrNonPositiveAmount)

		_, err = ledger.Credit(ctx, -5)
		assert.ErrorIs(t, err, ErrNonPositiveAmount)
	})

	t.Run("persist failure surfaces", func(t *testing.T) {
		mock := storage.NewMock()
		mock.SetFunc = func(ctx context.Context, key, value string) error {
			return errors.New("write failed")
		}
		ledger := NewLedger(mock, testLogger())

		_, err := ledger.Credit(ctx, 5)
		assert.Error(t, err)
	})
}

func TestLedger_Debit(t *testing.T) {
	ctx := context.Background()

	t.Run("subtracts and persists", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "10")
		ledger := NewLedger(mock, testLogger())

		balance, err := ledger.Debit(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, 6, balance)

		raw, _ := mock.Value(KeyTicketsBalance)
		assert.Equal(t, "6", raw)
	})

	t.Run("overdraw fails and leaves balance unchanged", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "4")
		ledger := NewLedger(mock, testLogger())

		_, err := ledger.Debit(ctx, 5)
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		balance, err := ledger.Balance(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, balance)
	})

	t.Run("debit to exactly zero succeeds", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "10")
		ledger := NewLedger(mock, testLogger())

		balance, err := ledger.Debit(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 0, balance)
	})

	t.Run("reads the stored balance, not a stale value", func(t *testing.T) {
		mock := storage.NewMock()
		mock.Seed(KeyTicketsBalance, "3")
		ledger := NewLedger(mock, testLogger())

		// Another screen credits behind this ledger's back.
		mock.Seed(KeyTicketsBalance, "8")

		balance, err := ledger.Debit(ctx, 8)
		require.NoError(t, err)
		assert.Equal(t, 0, balance)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		ledger := NewLedger(storage.NewMock(), testLogger())
		_, err := ledger.Debit(ctx, 0)
		assert.ErrorIs(t, err, ErrNonPositiveAmount)
	})
}

// Balance stays non-negative across any credit/debit sequence; a rejected
// debit leaves it untouched.
func TestLedger_NonNegativity(t *testing.T) {
	ctx := context.Background()
	mock := storage.NewMock()
	ledger := NewLedger(mock, testLogger())

	ops := []struct {
		credit bool
		amount int
	}{
		{true, 5}, {false, 3}, {false, 10}, {true, 2}, {false, 4}, {false, 1}, {false, 1},
	}

	for _, op := range ops {
		if op.credit {
			_, _ = ledger.Credit(ctx, op.amount)
		} else {
			_, _ = ledger.Debit(ctx, op.amount)
		}
		balance, err := ledger.Balance(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, balance, 0)
	}

	balance, err := ledger.Balance(ctx)
	require.NoError(t, err)
	// 5 - 3 + 2 - 4 = 0; the overdraws were rejected.
	assert.Equal(t, 0, balance)
}
