package ledger

import (
	"fmt"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
)

// ComputeDebit returns the fields of the snapshot that replaces active after
// reserving amount. The full amount is recorded as the book amount so a failed
// settlement can restore it.
//
// amount must be positive; callers validate input before reaching the engine.
func ComputeDebit(active *models.BalanceSnapshot, amount decimal.Decimal) (store.SnapshotFields, error) {
	mustBePositive(amount)

	if active.Current.LessThan(amount) {
		return store.SnapshotFields{}, fmt.Errorf("%w: current=%s, requested=%s, shortfall=%s",
			ErrInsufficientFunds, active.Current.String(), amount.String(), amount.Sub(active.Current).String())
	}

	return store.SnapshotFields{
		Previous: active.Current,
		Book:     amount,
		Current:  active.Current.Sub(amount),
	}, nil
}

// ComputeCredit returns the fields of the snapshot that replaces active after
// adding amount. Credits always succeed.
//
// amount must be positive; callers validate input before reaching the engine.
func ComputeCredit(active *models.BalanceSnapshot, amount decimal.Decimal) store.SnapshotFields {
	mustBePositive(amount)

	return store.SnapshotFields{
		Previous: active.Current,
		Book:     decimal.Zero,
		Current:  active.Current.Add(amount),
	}
}

// AmountScale is the number of decimal places a wallet amount may carry.
const AmountScale = 2

// ValidateAmount is the caller-side check matching the engine's precondition.
// Amounts finer than AmountScale are rejected rather than rounded.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero, got %s", ErrValidation, amount.String())
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: amount %s has more than %d decimal places", ErrValidation, amount.String(), AmountScale)
	}
	return nil
}

func mustBePositive(amount decimal.Decimal) {
	if !amount.IsPositive() {
		panic(fmt.Sprintf("ledger: amount must be positive, got %s", amount.String()))
	}
}
