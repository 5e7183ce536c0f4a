package ledger

import "errors"

var (
	// ErrInsufficientFunds is returned when a debit exceeds the active balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrValidation marks caller input rejected before any ledger work starts.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is returned for settlement decisions the state machine does not define.
	ErrInvalidTransition = errors.New("invalid transaction transition")
)
