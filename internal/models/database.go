package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction relative to the user's wallet.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "Credit"
	TransactionTypeDebit  TransactionType = "Debit"
)

// TransactionStatus is the lifecycle state of a transaction row.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// ServiceKind selects which flow a service's transactions go through.
type ServiceKind string

const (
	ServiceKindWithdrawal ServiceKind = "withdrawal"
	ServiceKindTrade      ServiceKind = "trade"
)

// User represents a user in the system
type User struct {
	Id        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BankAccount is a payout destination owned by a user
type BankAccount struct {
	Id            string    `db:"id"`
	UserId        string    `db:"user_id"`
	BankName      string    `db:"bank_name"`
	BankCode      string    `db:"bank_code"`
	AccountNumber string    `db:"account_number"`
	AccountName   string    `db:"account_name"`
	CreatedAt     time.Time `db:"created_at"`
}

// Service is a catalog entry a transaction is filed under (e.g. "Withdrawal", "Trade Bitcoin")
type Service struct {
	Id        string      `db:"id"`
	Name      string      `db:"name"`
	Kind      ServiceKind `db:"kind"`
	Asset     string      `db:"asset"`
	CreatedAt time.Time   `db:"created_at"`
}

// BalanceSnapshot is one generation of a user's balance. Exactly one snapshot
// per user has Status set; superseded snapshots are never modified again.
type BalanceSnapshot struct {
	Id        string          `db:"id"`
	UserId    string          `db:"user_id"`
	Previous  decimal.Decimal `db:"previous"`
	Book      decimal.Decimal `db:"book"`
	Current   decimal.Decimal `db:"current"`
	Status    bool            `db:"status"`
	Reference string          `db:"reference"`
	CreatedAt time.Time       `db:"created_at"`
}

// Transaction represents a withdrawal or trade order and its settlement state
type Transaction struct {
	Id            string            `db:"id"`
	UserId        string            `db:"user_id"`
	ServiceId     string            `db:"service_id"`
	Reference     string            `db:"reference"`
	Amount        decimal.Decimal   `db:"amount"`
	Type          TransactionType   `db:"type"`
	BalanceId     string            `db:"balance_id"`
	BankAccountId string            `db:"bank_account_id"`
	Narration     string            `db:"narration"`
	Status        TransactionStatus `db:"status"`
	ImageUrl      string            `db:"image_url"`
	SettledBy     string            `db:"settled_by"`
	CreatedAt     time.Time         `db:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at"`
	SettledAt     *time.Time        `db:"settled_at"`
}

// AuditLog is one recorded user or admin action
type AuditLog struct {
	Id        string    `db:"id"`
	UserId    string    `db:"user_id"`
	Action    string    `db:"action"`
	Request   string    `db:"request"`
	Response  string    `db:"response"`
	Url       string    `db:"url"`
	Channel   string    `db:"channel"`
	Device    string    `db:"device"`
	IpAddress string    `db:"ip_address"`
	CreatedAt time.Time `db:"created_at"`
}
