package common

import (
	"errors"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/store"
)

// UserMessage maps a ledger error to the message shown to the person at the
// console. Unknown errors get a generic message; the details are logged.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "Insufficient balance"
	case errors.Is(err, ledger.ErrValidation):
		return "Invalid request: " + err.Error()
	case errors.Is(err, store.ErrTransactionNotPending):
		return "Transaction has already been settled"
	case errors.Is(err, ledger.ErrInvalidTransition):
		return "That decision is not allowed for this transaction"
	case errors.Is(err, store.ErrNotFound):
		return "Not found: " + err.Error()
	case errors.Is(err, store.ErrSnapshotConflict):
		return "The wallet is busy, please try again"
	default:
		return "Something went wrong, please try again later"
	}
}
