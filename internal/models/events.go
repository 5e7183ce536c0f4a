package models

import "github.com/shopspring/decimal"

// LedgerEventType names a committed money movement.
type LedgerEventType string

const (
	LedgerEventWithdrawalReserved LedgerEventType = "withdrawal_reserved"
	LedgerEventWithdrawalPaid     LedgerEventType = "withdrawal_paid"
	LedgerEventWithdrawalRefunded LedgerEventType = "withdrawal_refunded"
	LedgerEventTradeCredited      LedgerEventType = "trade_credited"
)

// LedgerEvent is published after a ledger change commits.
type LedgerEvent struct {
	Type          LedgerEventType
	UserId        string
	TransactionId string
	Reference     string
	ServiceId     string
	Amount        decimal.Decimal
}
