package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/calebdray/storywalk/pkg/storage"
)

// Registry owns the two unlock sets: purchased extra puzzles and purchased
// story locations. Membership in a set implies the matching catalog cost
// was debited exactly once.
type Registry struct {
	kv     storage.KV
	ledger *Ledger
	logger *slog.Logger
}

// NewRegistry creates a registry over the given backing store and ledger.
func NewRegistry(kv storage.KV, ledger *Ledger, logger *slog.Logger) *Registry {
	return &Registry{kv: kv, ledger: ledger, logger: logger}
}

func setKeyFor(kind Kind) string {
	if kind == KindStory {
		return KeyUnlockedStories
	}
	return KeyUnlockedExtras
}

// IsUnlocked reports whether the given id is a member of the kind's unlock
// set. For stories the id is the story id; for extras it is the catalog
// entry key. Both are opaque strings to the registry.
func (r *Registry) IsUnlocked(ctx context.Context, kind Kind, id string) (bool, error) {
	set, err := r.loadSet(ctx, setKeyFor(kind))
	if err != nil {
		return false, err
	}
	return set.Has(id), nil
}

// Purchase unlocks the catalog entry's target: already-owned content fails
// with ErrAlreadyUnlocked before any charge, the cost is debited against a
// freshly read balance, and the unlock set update is persisted before the
// purchase reports success. Returns the balance after the debit.
//
// The debit and the set update must land together from the caller's point
// of view. If the set write fails after a successful debit, it is retried
// once; if it still fails, the debit is reversed so the user does not lose
// charged tickets, and the error is surfaced.
func (r *Registry) Purchase(ctx context.Context, entry CatalogEntry) (int, error) {
	key := setKeyFor(entry.Kind)

	set, err := r.loadSet(ctx, key)
	if err != nil {
		return 0, err
	}
	if set.Has(entry.unlockID()) {
		return 0, fmt.Errorf("purchase of %q: %w", entry.Key, ErrAlreadyUnlocked)
	}

	balance, err := r.ledger.Debit(ctx, entry.Cost)
	if err != nil {
		return 0, fmt.Errorf("purchase of %q: %w", entry.Key, err)
	}

	set.Add(entry.unlockID())
	if err := r.persistSet(ctx, key, set); err != nil {
		r.logger.Warn("Unlock persist failed after debit, retrying", "key", entry.Key, "error", err)
		if retryErr := r.persistSet(ctx, key, set); retryErr != nil {
			// Reverse the charge so tickets are not silently lost.
			if _, refundErr := r.ledger.Credit(ctx, entry.Cost); refundErr != nil {
				r.logger.Error("Failed to refund debit after unlock persist failure",
					"key", entry.Key, "cost", entry.Cost, "error", refundErr)
			}
			return 0, fmt.Errorf("failed to persist unlock for %q: %w", entry.Key, retryErr)
		}
	}

	r.logger.Info("Content unlocked", "key", entry.Key, "kind", entry.Kind, "cost", entry.Cost, "balance", balance)
	return balance, nil
}

func (r *Registry) loadSet(ctx context.Context, key string) (Set, error) {
	raw, err := r.kv.Get(ctx, key)
	if err != nil {
		return NewSet(), fmt.Errorf("failed to read unlock set %s: %w", key, err)
	}
	set, err := DecodeSet(raw)
	if err != nil {
		// Corrupt value: discard this one key and start from empty.
		r.logger.Warn("Stored unlock set is corrupt, resetting to empty", "key", key, "error", err)
		return NewSet(), nil
	}
	return set, nil
}

func (r *Registry) persistSet(ctx context.Context, key string, set Set) error {
	encoded, err := set.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode unlock set %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, encoded); err != nil {
		return fmt.Errorf("failed to persist unlock set %s: %w", key, err)
	}
	return nil
}

// IsExpected reports whether err is one of the recoverable purchase
// failures that the presentation layer treats as a named outcome rather
// than a fault.
func IsExpected(err error) bool {
	return errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrAlreadyUnlocked) ||
		errors.Is(err, ErrUnknownItem)
}
