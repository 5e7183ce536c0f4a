/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SubledgerService handles balance snapshot and transaction operations
type SubledgerService struct {
	db *sql.DB
}

func NewSubledgerService(db *sql.DB) *SubledgerService {
	return &SubledgerService{
		db: db,
	}
}

func (s *SubledgerService) InitSchema() error {
	schema := `
	-- Balance snapshots (append-only; only the status flag is ever updated)
	CREATE TABLE IF NOT EXISTS balances (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		previous TEXT NOT NULL DEFAULT '0',
		book TEXT NOT NULL DEFAULT '0',
		current TEXT NOT NULL DEFAULT '0',
		status BOOLEAN NOT NULL DEFAULT 0,
		reference TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- At most one active snapshot per user
	CREATE UNIQUE INDEX IF NOT EXISTS idx_balances_active_user ON balances(user_id) WHERE status = 1;
	CREATE INDEX IF NOT EXISTS idx_balances_user_id ON balances(user_id);

	-- Withdrawals and trade orders
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		service_id TEXT NOT NULL REFERENCES services(id),
		reference TEXT NOT NULL UNIQUE,
		amount TEXT NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('Credit', 'Debit')),
		balance_id TEXT REFERENCES balances(id),
		bank_account_id TEXT REFERENCES bank_accounts(id),
		narration TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'success', 'failed')),
		image_url TEXT,
		settled_by TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		settled_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status);
	CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// GetActiveSnapshot returns the user's authoritative balance snapshot.
func (s *SubledgerService) GetActiveSnapshot(ctx context.Context, userId string) (*models.BalanceSnapshot, error) {
	zap.L().Debug("Getting active balance snapshot", zap.String("user_id", userId))

	snapshot, err := scanSnapshot(s.db.QueryRowContext(ctx, queryGetActiveSnapshot, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			zap.L().Error("User has no active balance snapshot", zap.String("user_id", userId))
			return nil, fmt.Errorf("%w: no active balance snapshot for user %s", store.ErrNotFound, userId)
		}
		return nil, storageErr("failed to get active balance snapshot", err)
	}
	return snapshot, nil
}

// Supersede atomically deactivates the expected active snapshot and inserts
// its replacement.
func (s *SubledgerService) Supersede(ctx context.Context, params store.SupersedeParams) (*models.BalanceSnapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	snapshot, err := s.supersedeInTx(ctx, tx, params)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("failed to commit balance snapshot", err)
	}

	logSuperseded(params, snapshot)
	return snapshot, nil
}

// supersedeInTx is the compare-and-swap at the heart of the ledger: the
// deactivation only matches while ExpectedActiveId is still the active row and
// its current value is the Previous the new fields were computed from.
func (s *SubledgerService) supersedeInTx(ctx context.Context, tx *sql.Tx, params store.SupersedeParams) (*models.BalanceSnapshot, error) {
	var currentStr string
	err := tx.QueryRowContext(ctx, queryDeactivateSnapshot, params.ExpectedActiveId, params.UserId).Scan(&currentStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			zap.L().Warn("Active snapshot changed before supersede",
				zap.String("user_id", params.UserId),
				zap.String("expected_active_id", params.ExpectedActiveId))
			return nil, fmt.Errorf("%w: snapshot %s is no longer active", store.ErrSnapshotConflict, params.ExpectedActiveId)
		}
		return nil, storageErr("failed to deactivate balance snapshot", err)
	}

	current, err := decimal.NewFromString(currentStr)
	if err != nil {
		return nil, storageErr("failed to parse current balance", err)
	}
	if !current.Equal(params.Fields.Previous) {
		return nil, fmt.Errorf("%w: snapshot %s holds %s, new snapshot expects %s",
			store.ErrSnapshotConflict, params.ExpectedActiveId, current.String(), params.Fields.Previous.String())
	}

	snapshot := &models.BalanceSnapshot{
		Id:        uuid.New().String(),
		UserId:    params.UserId,
		Previous:  params.Fields.Previous,
		Book:      params.Fields.Book,
		Current:   params.Fields.Current,
		Status:    true,
		Reference: params.Reference,
		CreatedAt: time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, queryInsertSnapshot,
		snapshot.Id, snapshot.UserId, snapshot.Previous.String(), snapshot.Book.String(),
		snapshot.Current.String(), snapshot.Reference, snapshot.CreatedAt)
	if err != nil {
		if isConstraintError(err) {
			return nil, fmt.Errorf("%w: another active snapshot exists for user %s", store.ErrSnapshotConflict, params.UserId)
		}
		return nil, storageErr("failed to insert balance snapshot", err)
	}

	return snapshot, nil
}

// ReserveWithdrawal debits the user's balance and records the pending
// withdrawal pointing at the new snapshot. Both rows commit together.
func (s *SubledgerService) ReserveWithdrawal(ctx context.Context, params store.ReserveWithdrawalParams) (*models.Transaction, *models.BalanceSnapshot, error) {
	zap.L().Info("Reserving withdrawal",
		zap.String("user_id", params.Supersede.UserId),
		zap.String("reference", params.Supersede.Reference),
		zap.String("amount", params.Amount.String()))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, storageErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	snapshot, err := s.supersedeInTx(ctx, tx, params.Supersede)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	transaction := &models.Transaction{
		Id:            uuid.New().String(),
		UserId:        params.Supersede.UserId,
		ServiceId:     params.ServiceId,
		Reference:     params.Supersede.Reference,
		Amount:        params.Amount,
		Type:          models.TransactionTypeDebit,
		BalanceId:     snapshot.Id,
		BankAccountId: params.BankAccountId,
		Narration:     params.Narration,
		Status:        models.TransactionStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := insertTransaction(ctx, tx, transaction); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, storageErr("failed to commit withdrawal", err)
	}

	logSuperseded(params.Supersede, snapshot)
	return transaction, snapshot, nil
}

// CreateTradeOrder records a pending trade order. No balance is touched until
// an admin confirms the order.
func (s *SubledgerService) CreateTradeOrder(ctx context.Context, params store.CreateTradeOrderParams) (*models.Transaction, error) {
	now := time.Now().UTC()
	transaction := &models.Transaction{
		Id:        uuid.New().String(),
		UserId:    params.UserId,
		ServiceId: params.ServiceId,
		Reference: params.Reference,
		Amount:    params.Amount,
		Type:      models.TransactionTypeCredit,
		Narration: params.Narration,
		Status:    models.TransactionStatusPending,
		ImageUrl:  params.ImageUrl,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := insertTransaction(ctx, tx, transaction); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("failed to commit trade order", err)
	}

	zap.L().Info("Trade order recorded",
		zap.String("transaction_id", transaction.Id),
		zap.String("user_id", transaction.UserId),
		zap.String("reference", transaction.Reference),
		zap.String("amount", transaction.Amount.String()))

	return transaction, nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, t *models.Transaction) error {
	_, err := tx.ExecContext(ctx, queryInsertTransaction,
		t.Id, t.UserId, t.ServiceId, t.Reference, t.Amount.String(), string(t.Type),
		nullString(t.BalanceId), nullString(t.BankAccountId), t.Narration, nullString(t.ImageUrl),
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isUniqueError(err) {
			return fmt.Errorf("%w: transaction reference %s: %v", store.ErrDuplicate, t.Reference, err)
		}
		return storageErr("failed to insert transaction", err)
	}
	return nil
}

// Settle moves a pending transaction to its terminal status, committing the
// optional balance change in the same unit. A transaction that is no longer
// pending is left untouched.
func (s *SubledgerService) Settle(ctx context.Context, params store.SettleParams) (*models.Transaction, error) {
	zap.L().Info("Settling transaction",
		zap.String("transaction_id", params.TransactionId),
		zap.String("status", string(params.Status)),
		zap.String("settled_by", params.SettledBy),
		zap.Bool("balance_change", params.Supersede != nil))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, queryGetTransactionStatus, params.TransactionId).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", store.ErrNotFound, params.TransactionId)
		}
		return nil, storageErr("failed to read transaction status", err)
	}
	if models.TransactionStatus(status) != models.TransactionStatusPending {
		return nil, fmt.Errorf("%w: transaction %s is %s", store.ErrTransactionNotPending, params.TransactionId, status)
	}

	var snapshot *models.BalanceSnapshot
	if params.Supersede != nil {
		snapshot, err = s.supersedeInTx(ctx, tx, *params.Supersede)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	var result sql.Result
	if params.BindBalance {
		if snapshot == nil {
			return nil, fmt.Errorf("settlement of %s binds a balance but commits none", params.TransactionId)
		}
		result, err = tx.ExecContext(ctx, querySettleTransactionWithBalance,
			string(params.Status), params.SettledBy, now, now, snapshot.Id, params.TransactionId)
	} else {
		result, err = tx.ExecContext(ctx, querySettleTransaction,
			string(params.Status), params.SettledBy, now, now, params.TransactionId)
	}
	if err != nil {
		return nil, storageErr("failed to update transaction status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, storageErr("failed to check rows affected", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: transaction %s changed during settlement", store.ErrTransactionNotPending, params.TransactionId)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("failed to commit settlement", err)
	}

	if snapshot != nil {
		logSuperseded(*params.Supersede, snapshot)
	}

	return s.GetTransaction(ctx, params.TransactionId)
}

// ReconcileBalance checks the user's snapshot chain and compares the active
// balance against the transactions that should have produced it.
func (s *SubledgerService) ReconcileBalance(ctx context.Context, userId string) ([]models.Discrepancy, error) {
	type link struct {
		id       string
		previous decimal.Decimal
		current  decimal.Decimal
		active   bool
	}

	rows, err := s.db.QueryContext(ctx, queryGetSnapshotChain, userId)
	if err != nil {
		return nil, storageErr("failed to load snapshot chain", err)
	}
	var chain []link
	for rows.Next() {
		var l link
		var previousStr, currentStr string
		if err := rows.Scan(&l.id, &previousStr, &currentStr, &l.active); err != nil {
			closeRows(rows)
			return nil, storageErr("failed to scan snapshot", err)
		}
		if l.previous, err = decimal.NewFromString(previousStr); err != nil {
			closeRows(rows)
			return nil, fmt.Errorf("failed to parse previous '%s': %w", previousStr, err)
		}
		if l.current, err = decimal.NewFromString(currentStr); err != nil {
			closeRows(rows)
			return nil, fmt.Errorf("failed to parse current '%s': %w", currentStr, err)
		}
		chain = append(chain, l)
	}
	if err := rows.Err(); err != nil {
		closeRows(rows)
		return nil, storageErr("error iterating snapshot rows", err)
	}
	closeRows(rows)

	var discrepancies []models.Discrepancy
	activeCount := 0
	var active *link
	for i := range chain {
		if chain[i].active {
			activeCount++
			active = &chain[i]
		}
		if i > 0 && !chain[i].previous.Equal(chain[i-1].current) {
			discrepancies = append(discrepancies, models.Discrepancy{
				UserId:   userId,
				Check:    "snapshot_chain:" + chain[i].id,
				Expected: chain[i-1].current.String(),
				Actual:   chain[i].previous.String(),
			})
		}
	}
	if activeCount != 1 {
		discrepancies = append(discrepancies, models.Discrepancy{
			UserId:   userId,
			Check:    "active_snapshots",
			Expected: "1",
			Actual:   fmt.Sprintf("%d", activeCount),
		})
	}

	expected, err := s.expectedBalance(ctx, userId)
	if err != nil {
		return nil, err
	}
	if active != nil && !active.current.Equal(expected) {
		discrepancies = append(discrepancies, models.Discrepancy{
			UserId:   userId,
			Check:    "active_balance",
			Expected: expected.String(),
			Actual:   active.current.String(),
		})
	}

	return discrepancies, nil
}

// expectedBalance is what the active balance must be given the user's
// transactions: confirmed trade credits minus every withdrawal that has not
// failed (failed ones were refunded).
func (s *SubledgerService) expectedBalance(ctx context.Context, userId string) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, queryReconcileTransactions, userId)
	if err != nil {
		return decimal.Zero, storageErr("failed to load transactions for reconciliation", err)
	}
	defer closeRows(rows)

	expected := decimal.Zero
	for rows.Next() {
		var amountStr, txType, status string
		if err := rows.Scan(&amountStr, &txType, &status); err != nil {
			return decimal.Zero, storageErr("failed to scan transaction", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}

		switch models.TransactionType(txType) {
		case models.TransactionTypeCredit:
			if models.TransactionStatus(status) == models.TransactionStatusSuccess {
				expected = expected.Add(amount)
			}
		case models.TransactionTypeDebit:
			if models.TransactionStatus(status) != models.TransactionStatusFailed {
				expected = expected.Sub(amount)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, storageErr("error iterating transaction rows", err)
	}
	return expected, nil
}

func logSuperseded(params store.SupersedeParams, snapshot *models.BalanceSnapshot) {
	zap.L().Info("Balance snapshot superseded",
		zap.String("user_id", params.UserId),
		zap.String("previous_snapshot_id", params.ExpectedActiveId),
		zap.String("snapshot_id", snapshot.Id),
		zap.String("reference", snapshot.Reference),
		zap.String("previous", snapshot.Previous.String()),
		zap.String("book", snapshot.Book.String()),
		zap.String("current", snapshot.Current.String()))
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
