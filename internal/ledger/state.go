package ledger

import (
	"fmt"

	"wallet-ledger-go/internal/models"
)

// Kind distinguishes the two transaction flows. Withdrawals reserve funds when
// requested; trade orders credit funds only once an admin confirms them.
type Kind int

const (
	KindWithdrawal Kind = iota + 1
	KindTrade
)

func (k Kind) String() string {
	switch k {
	case KindWithdrawal:
		return "withdrawal"
	case KindTrade:
		return "trade"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindOf derives the flow from the transaction direction.
func KindOf(tx *models.Transaction) (Kind, error) {
	switch tx.Type {
	case models.TransactionTypeDebit:
		return KindWithdrawal, nil
	case models.TransactionTypeCredit:
		return KindTrade, nil
	}
	return 0, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidTransition, tx.Type)
}

// Decision is the admin's settlement verdict.
type Decision int

const (
	DecisionSuccess Decision = iota + 1
	DecisionFailed
)

// ParseDecision accepts the admin console's "success" / "failed" strings.
func ParseDecision(s string) (Decision, error) {
	switch models.TransactionStatus(s) {
	case models.TransactionStatusSuccess:
		return DecisionSuccess, nil
	case models.TransactionStatusFailed:
		return DecisionFailed, nil
	}
	return 0, fmt.Errorf("%w: decision must be %q or %q, got %q",
		ErrValidation, models.TransactionStatusSuccess, models.TransactionStatusFailed, s)
}

// Status is the terminal status the decision leads to.
func (d Decision) Status() models.TransactionStatus {
	if d == DecisionSuccess {
		return models.TransactionStatusSuccess
	}
	return models.TransactionStatusFailed
}

func (d Decision) String() string {
	switch d {
	case DecisionSuccess:
		return "success"
	case DecisionFailed:
		return "failed"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// Effect is the balance mutation a settlement must commit.
type Effect int

const (
	// EffectNone flips the status only.
	EffectNone Effect = iota
	// EffectCredit credits the transaction amount and binds the new snapshot to the transaction.
	EffectCredit
	// EffectRefund restores the book amount reserved by a withdrawal.
	EffectRefund
)

func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "none"
	case EffectCredit:
		return "credit"
	case EffectRefund:
		return "refund"
	}
	return fmt.Sprintf("Effect(%d)", int(e))
}

// Settlement is the planned outcome of settling one transaction.
type Settlement struct {
	To     models.TransactionStatus
	Effect Effect
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.TransactionStatus) bool {
	return status == models.TransactionStatusSuccess || status == models.TransactionStatusFailed
}

// PlanSettlement is the transition table for pending transactions. Anything
// other than a pending transaction is rejected with store.ErrTransactionNotPending
// by the caller before persistence; this function repeats the guard so no
// path can plan a transition out of a terminal state.
func PlanSettlement(kind Kind, from models.TransactionStatus, decision Decision) (Settlement, error) {
	if from != models.TransactionStatusPending {
		return Settlement{}, fmt.Errorf("%w: cannot settle a transaction in status %q", ErrInvalidTransition, from)
	}

	switch kind {
	case KindTrade:
		switch decision {
		case DecisionSuccess:
			return Settlement{To: models.TransactionStatusSuccess, Effect: EffectCredit}, nil
		case DecisionFailed:
			return Settlement{To: models.TransactionStatusFailed, Effect: EffectNone}, nil
		}
	case KindWithdrawal:
		switch decision {
		case DecisionSuccess:
			return Settlement{To: models.TransactionStatusSuccess, Effect: EffectNone}, nil
		case DecisionFailed:
			return Settlement{To: models.TransactionStatusFailed, Effect: EffectRefund}, nil
		}
	}

	return Settlement{}, fmt.Errorf("%w: no transition for %s with decision %s", ErrInvalidTransition, kind, decision)
}
