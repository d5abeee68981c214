package progression

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/calebdray/storywalk/pkg/storage"
)

// Service is the single owner of the four progression state slices: ticket
// balance, solved puzzles, unlocked extras and unlocked stories. Every
// screen reads and mutates them through this facade instead of parsing the
// persisted keys itself, so the fallback and consistency rules live in one
// place.
type Service struct {
	kv       storage.KV
	ledger   *Ledger
	registry *Registry
	tracker  *Tracker
	catalog  Catalog
	logger   *slog.Logger
}

// NewService wires the ledger, registry and tracker over one backing store.
func NewService(kv storage.KV, catalog Catalog, logger *slog.Logger) *Service {
	ledger := NewLedger(kv, logger)
	return &Service{
		kv:       kv,
		ledger:   ledger,
		registry: NewRegistry(kv, ledger, logger),
		tracker:  NewTracker(kv, ledger, logger),
		catalog:  catalog,
		logger:   logger,
	}
}

// Catalog returns the static exchange catalog.
func (s *Service) Catalog() Catalog {
	return s.catalog
}

// Balance returns the current ticket balance.
func (s *Service) Balance(ctx context.Context) (int, error) {
	return s.ledger.Balance(ctx)
}

// Credit adds tickets to the balance.
func (s *Service) Credit(ctx context.Context, amount int) (int, error) {
	return s.ledger.Credit(ctx, amount)
}

// Debit removes tickets from the balance, failing with ErrInsufficientFunds
// rather than going negative.
func (s *Service) Debit(ctx context.Context, amount int) (int, error) {
	return s.ledger.Debit(ctx, amount)
}

// IsUnlocked reports membership in the kind's unlock set.
func (s *Service) IsUnlocked(ctx context.Context, kind Kind, id string) (bool, error) {
	return s.registry.IsUnlocked(ctx, kind, id)
}

// PurchaseResult reports a successful exchange.
type PurchaseResult struct {
	Entry   CatalogEntry `json:"entry"`
	Balance int          `json:"balance"`
}

// Purchase exchanges tickets for the catalog entry with the given key.
// Fails with ErrUnknownItem for keys outside the catalog, and with the
// registry's ErrAlreadyUnlocked / ErrInsufficientFunds outcomes.
func (s *Service) Purchase(ctx context.Context, key string) (PurchaseResult, error) {
	entry, ok := s.catalog.Get(key)
	if !ok {
		return PurchaseResult{}, fmt.Errorf("purchase of %q: %w", key, ErrUnknownItem)
	}
	balance, err := s.registry.Purchase(ctx, entry)
	if err != nil {
		return PurchaseResult{}, err
	}
	return PurchaseResult{Entry: entry, Balance: balance}, nil
}

// IsSolved reports whether the puzzle has been solved since the last reset.
func (s *Service) IsSolved(ctx context.Context, puzzleID string) (bool, error) {
	return s.tracker.IsSolved(ctx, puzzleID)
}

// SubmitAnswer checks a candidate answer and applies the credit-once solve
// rules. See Tracker.SubmitAnswer.
func (s *Service) SubmitAnswer(ctx context.Context, puzzleID, candidate, correctAnswer string) (Outcome, error) {
	return s.tracker.SubmitAnswer(ctx, puzzleID, candidate, correctAnswer)
}

// IsStoryUnlocked reports whether a gated story is open. For stories the
// unlock set is keyed by story id directly.
func (s *Service) IsStoryUnlocked(ctx context.Context, storyID string) (bool, error) {
	return s.registry.IsUnlocked(ctx, KindStory, storyID)
}

// IsExtraPuzzleUnlocked reports whether the extra puzzle with the given
// puzzle key has been purchased. Extra unlocks are recorded under the
// catalog entry key, so the lookup goes through the catalog.
func (s *Service) IsExtraPuzzleUnlocked(ctx context.Context, puzzleKey string) (bool, error) {
	entry, ok := s.catalog.ByTarget(KindExtra, puzzleKey)
	if !ok {
		return false, nil
	}
	return s.registry.IsUnlocked(ctx, KindExtra, entry.Key)
}

// ResetProgress clears the ticket balance, all three progression sets and
// the cosmetic preference keys in one bulk remove against the backing
// store. Partial reset is a correctness bug, so a failed remove surfaces as
// an error with nothing reported as cleared.
func (s *Service) ResetProgress(ctx context.Context) error {
	if err := s.kv.RemoveMany(ctx, ResetKeys()...); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	s.logger.Info("Progress reset")
	return nil
}

// Snapshot is a consistent read of all four progression slices, loaded
// fresh together for screens that render overlapping state.
type Snapshot struct {
	Balance         int      `json:"balance"`
	Solved          []string `json:"solved"`
	UnlockedExtras  []string `json:"unlocked_extras"`
	UnlockedStories []string `json:"unlocked_stories"`
}

// Snapshot loads every slice directly from the backing store. Reads degrade
// to safe defaults (0 balance, empty sets) on storage failure so screens
// never block on a read; the degradation is logged, not propagated.
func (s *Service) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{
		Solved:          []string{},
		UnlockedExtras:  []string{},
		UnlockedStories: []string{},
	}

	balance, err := s.ledger.Balance(ctx)
	if err != nil {
		s.logger.Warn("Snapshot balance read failed, using 0", "error", err)
	} else {
		snap.Balance = balance
	}

	for _, slice := range []struct {
		key  string
		dest *[]string
	}{
		{KeySolvedPuzzles, &snap.Solved},
		{KeyUnlockedExtras, &snap.UnlockedExtras},
		{KeyUnlockedStories, &snap.UnlockedStories},
	} {
		raw, err := s.kv.Get(ctx, slice.key)
		if err != nil {
			s.logger.Warn("Snapshot set read failed, using empty", "key", slice.key, "error", err)
			continue
		}
		set, err := DecodeSet(raw)
		if err != nil {
			s.logger.Warn("Snapshot set is corrupt, using empty", "key", slice.key, "error", err)
			continue
		}
		*slice.dest = set.IDs()
	}

	return snap
}
