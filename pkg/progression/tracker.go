package progression

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/calebdray/storywalk/pkg/puzzle"
	"github.com/calebdray/storywalk/pkg/storage"
)

// Outcome is the result of an answer submission.
type Outcome struct {
	// Correct reports whether the candidate matched the full answer.
	Correct bool `json:"correct"`

	// FirstTime is set only when Correct and this is the first solve of
	// the puzzle. Repeat solves stay playable but never re-credit.
	FirstTime bool `json:"first_time"`

	// Reward is the number of tickets credited (0 unless FirstTime).
	Reward int `json:"reward"`

	// Balance is the ticket balance after any credit. Only populated for
	// correct submissions.
	Balance int `json:"balance"`
}

// Tracker owns the set of solved puzzle identifiers. A puzzle transitioning
// absent -> present in that set is the sole trigger for a ledger credit.
type Tracker struct {
	kv     storage.KV
	ledger *Ledger
	logger *slog.Logger
}

// NewTracker creates a tracker over the given backing store and ledger.
func NewTracker(kv storage.KV, ledger *Ledger, logger *slog.Logger) *Tracker {
	return &Tracker{kv: kv, ledger: ledger, logger: logger}
}

// IsSolved reports whether the puzzle has been answered correctly at least
// once since the last reset.
func (t *Tracker) IsSolved(ctx context.Context, puzzleID string) (bool, error) {
	set, err := t.loadSolved(ctx)
	if err != nil {
		return false, err
	}
	return set.Has(puzzleID), nil
}

// SubmitAnswer checks candidate against correctAnswer (case-insensitive,
// full string, no partial credit) and updates solve state.
//
// An incorrect answer mutates nothing and is repeatable without limit. A
// correct answer on an unsolved puzzle persists the solve and credits
// RewardPerSolve. A correct answer on an already-solved puzzle returns
// Correct with FirstTime false and credits nothing.
func (t *Tracker) SubmitAnswer(ctx context.Context, puzzleID, candidate, correctAnswer string) (Outcome, error) {
	if puzzle.Normalize(candidate) != puzzle.Normalize(correctAnswer) {
		return Outcome{}, nil
	}

	set, err := t.loadSolved(ctx)
	if err != nil {
		return Outcome{}, err
	}

	if set.Has(puzzleID) {
		balance, err := t.ledger.Balance(ctx)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Correct: true, Balance: balance}, nil
	}

	set.Add(puzzleID)
	encoded, err := set.Encode()
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to encode solved set: %w", err)
	}
	if err := t.kv.Set(ctx, KeySolvedPuzzles, encoded); err != nil {
		return Outcome{}, fmt.Errorf("failed to persist solved set: %w", err)
	}

	balance, err := t.ledger.Credit(ctx, RewardPerSolve)
	if err != nil {
		// The solve is recorded but the reward write failed; surface the
		// inconsistency instead of reporting a clean success.
		return Outcome{}, fmt.Errorf("solve of %q recorded but reward credit failed: %w", puzzleID, err)
	}

	t.logger.Info("Puzzle solved", "puzzle", puzzleID, "reward", RewardPerSolve, "balance", balance)
	return Outcome{Correct: true, FirstTime: true, Reward: RewardPerSolve, Balance: balance}, nil
}

func (t *Tracker) loadSolved(ctx context.Context) (Set, error) {
	raw, err := t.kv.Get(ctx, KeySolvedPuzzles)
	if err != nil {
		return NewSet(), fmt.Errorf("failed to read solved set: %w", err)
	}
	set, err := DecodeSet(raw)
	if err != nil {
		t.logger.Warn("Stored solved set is corrupt, resetting to empty", "error", err)
		return NewSet(), nil
	}
	return set, nil
}
