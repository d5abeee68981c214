package progression

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/calebdray/storywalk/pkg/storage"
)

// Ledger owns the ticket balance. The balance is persisted as a decimal
// string under a fixed key and is never allowed to go negative: a debit
// that would overdraw fails with ErrInsufficientFunds instead of clamping.
//
// The ledger holds no in-memory copy of the balance. Every operation reads
// the stored value fresh, because the same key is read and written from
// multiple independent screens that are not otherwise synchronized.
type Ledger struct {
	kv     storage.KV
	logger *slog.Logger
}

// NewLedger creates a ledger over the given backing store.
func NewLedger(kv storage.KV, logger *slog.Logger) *Ledger {
	return &Ledger{kv: kv, logger: logger}
}

// Balance returns the current ticket balance. A missing key reads as 0.
// A value that fails to parse as a non-negative integer is treated as
// corrupt and coerced to 0 rather than propagated.
func (l *Ledger) Balance(ctx context.Context) (int, error) {
	raw, err := l.kv.Get(ctx, KeyTicketsBalance)
	if err != nil {
		return 0, fmt.Errorf("failed to read ticket balance: %w", err)
	}
	if raw == "" {
		return 0, nil
	}

	balance, err := strconv.Atoi(raw)
	if err != nil {
		l.logger.Warn("Stored ticket balance is corrupt, resetting to 0", "value", raw, "error", err)
		return 0, nil
	}
	if balance < 0 {
		l.logger.Warn("Stored ticket balance is negative, resetting to 0", "value", balance)
		return 0, nil
	}
	return balance, nil
}

// Credit adds amount tickets and persists the new balance. There is no
// upper bound. The write is acknowledged before Credit returns.
func (l *Ledger) Credit(ctx context.Context, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit of %d: %w", amount, ErrNonPositiveAmount)
	}

	balance, err := l.Balance(ctx)
	if err != nil {
		return 0, err
	}

	next := balance + amount
	if err := l.persist(ctx, next); err != nil {
		return 0, err
	}

	l.logger.Debug("Credited tickets", "amount", amount, "balance", next)
	return next, nil
}

// Debit subtracts amount tickets and persists the new balance. The stored
// balance is re-read immediately before the check, never trusted from a
// stale cached value. Fails with ErrInsufficientFunds if amount exceeds the
// balance, leaving it unchanged.
func (l *Ledger) Debit(ctx context.Context, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit of %d: %w", amount, ErrNonPositiveAmount)
	}

	balance, err := l.Balance(ctx)
	if err != nil {
		return 0, err
	}
	if amount > balance {
		return 0, fmt.Errorf("debit of %d from balance %d: %w", amount, balance, ErrInsufficientFunds)
	}

	next := balance - amount
	if err := l.persist(ctx, next); err != nil {
		return 0, err
	}

	l.logger.Debug("Debited tickets", "amount", amount, "balance", next)
	return next, nil
}

func (l *Ledger) persist(ctx context.Context, balance int) error {
	if err := l.kv.Set(ctx, KeyTicketsBalance, strconv.Itoa(balance)); err != nil {
		return fmt.Errorf("failed to persist ticket balance: %w", err)
	}
	return nil
}
