package store

import (
	"context"
	"errors"

	"wallet-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound              = errors.New("not found")
	ErrSnapshotConflict      = errors.New("active balance snapshot changed concurrently")
	ErrTransactionNotPending = errors.New("transaction is not pending")
	ErrDuplicate             = errors.New("duplicate record")
	ErrStorage               = errors.New("storage failure")
)

// SnapshotFields are the computed values of a new balance snapshot.
type SnapshotFields struct {
	Previous decimal.Decimal
	Book     decimal.Decimal
	Current  decimal.Decimal
}

// SupersedeParams replaces the user's active snapshot. ExpectedActiveId is
// the snapshot the fields were computed from; if it is no longer active the
// call fails with ErrSnapshotConflict and nothing is written.
type SupersedeParams struct {
	UserId           string
	ExpectedActiveId string
	Fields           SnapshotFields
	Reference        string
}

// CreateUserParams registers a user together with the seed snapshot.
type CreateUserParams struct {
	UserId string
	Name   string
	Email  string
	Phone  string
}

// CreateBankAccountParams contains the parameters for storing a payout account.
type CreateBankAccountParams struct {
	UserId        string
	BankName      string
	BankCode      string
	AccountNumber string
	AccountName   string
}

// ReserveWithdrawalParams debits the user and records the pending withdrawal
// in one atomic unit.
type ReserveWithdrawalParams struct {
	Supersede     SupersedeParams
	ServiceId     string
	BankAccountId string
	Amount        decimal.Decimal
	Narration     string
}

// CreateTradeOrderParams records a pending trade order without touching the balance.
type CreateTradeOrderParams struct {
	UserId    string
	ServiceId string
	Reference string
	Amount    decimal.Decimal
	Narration string
	ImageUrl  string
}

// SettleParams moves a pending transaction to a terminal status. When
// Supersede is set the balance change is committed in the same unit, and for
// credits the new snapshot id is bound to the transaction's balance id.
type SettleParams struct {
	TransactionId string
	Status        models.TransactionStatus
	SettledBy     string
	Supersede     *SupersedeParams
	BindBalance   bool
}

// BalanceStore is the append-only snapshot ledger.
type BalanceStore interface {
	GetActiveSnapshot(ctx context.Context, userId string) (*models.BalanceSnapshot, error)
	Supersede(ctx context.Context, params SupersedeParams) (*models.BalanceSnapshot, error)
	GetBalanceHistory(ctx context.Context, userId string, limit, offset int) ([]models.BalanceSnapshot, error)
}

// TransactionStore persists transaction rows and their settlement.
type TransactionStore interface {
	ReserveWithdrawal(ctx context.Context, params ReserveWithdrawalParams) (*models.Transaction, *models.BalanceSnapshot, error)
	CreateTradeOrder(ctx context.Context, params CreateTradeOrderParams) (*models.Transaction, error)
	Settle(ctx context.Context, params SettleParams) (*models.Transaction, error)
	GetTransaction(ctx context.Context, transactionId string) (*models.Transaction, error)
	GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error)
	ListPendingTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error)
}

// LedgerStore defines the contract that every backend must satisfy.
type LedgerStore interface {
	BalanceStore
	TransactionStore

	// --- Users ---
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)

	// --- Bank accounts ---
	CreateBankAccount(ctx context.Context, params CreateBankAccountParams) (*models.BankAccount, error)
	GetBankAccount(ctx context.Context, bankAccountId string) (*models.BankAccount, error)

	// --- Services ---
	UpsertService(ctx context.Context, service models.Service) error
	GetService(ctx context.Context, serviceId string) (*models.Service, error)

	// --- Audit ---
	RecordAudit(ctx context.Context, entry models.AuditLog) error

	// --- Reconciliation ---
	ReconcileUserBalance(ctx context.Context, userId string) ([]models.Discrepancy, error)

	// --- Lifecycle ---
	Close()
}
