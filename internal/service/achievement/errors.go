package achievement

import "errors"

// Achievement engine errors.
var (
	// ErrNotReadyToClaim indicates a claim on an achievement whose target
	// has not been reached yet.
	ErrNotReadyToClaim = errors.New("achievement is not ready to claim")

	// ErrAlreadyClaimed indicates a claim on an achievement whose reward
	// was already granted. The reward is never granted twice.
	ErrAlreadyClaimed = errors.New("achievement already claimed")
)
