package reward

import "errors"

// Reward ledger errors.
var (
	// ErrInsufficientGems indicates the learner tried to spend more gems
	// than they hold. Nothing is mutated when this is returned.
	ErrInsufficientGems = errors.New("insufficient gems")
)
