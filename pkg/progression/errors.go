package progression

import "errors"

// Sentinel errors for the expected, recoverable failure modes of the ticket
// economy. Handlers map these to status codes; everything else is an
// unexpected storage fault and is wrapped with context instead.
var (
	// ErrInsufficientFunds is returned when a debit or purchase would take
	// the ticket balance negative. The balance is left unchanged.
	ErrInsufficientFunds = errors.New("insufficient ticket balance")

	// ErrAlreadyUnlocked is returned when a purchase targets content that
	// is already owned. The purchase is not re-charged.
	ErrAlreadyUnlocked = errors.New("content already unlocked")

	// ErrUnknownItem is returned when a purchase names a key that is not
	// in the exchange catalog.
	ErrUnknownItem = errors.New("unknown exchange item")

	// ErrNonPositiveAmount is returned when a credit or debit is attempted
	// with a zero or negative amount.
	ErrNonPositiveAmount = errors.New("amount must be positive")
)
