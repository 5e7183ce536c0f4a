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

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var amountStr, txType, status string
	var balanceId, bankAccountId, imageUrl, settledBy sql.NullString
	var settledAt sql.NullTime

	err := row.Scan(&t.Id, &t.UserId, &t.ServiceId, &t.Reference, &amountStr, &txType,
		&balanceId, &bankAccountId, &t.Narration, &status, &imageUrl, &settledBy,
		&t.CreatedAt, &t.UpdatedAt, &settledAt)
	if err != nil {
		return nil, err
	}

	t.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	t.Type = models.TransactionType(txType)
	t.Status = models.TransactionStatus(status)
	t.BalanceId = balanceId.String
	t.BankAccountId = bankAccountId.String
	t.ImageUrl = imageUrl.String
	t.SettledBy = settledBy.String
	if settledAt.Valid {
		at := settledAt.Time
		t.SettledAt = &at
	}
	return &t, nil
}

func (s *SubledgerService) GetTransaction(ctx context.Context, transactionId string) (*models.Transaction, error) {
	zap.L().Debug("Getting transaction", zap.String("transaction_id", transactionId))

	t, err := scanTransaction(s.db.QueryRowContext(ctx, queryGetTransaction, transactionId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", store.ErrNotFound, transactionId)
		}
		zap.L().Error("Failed to get transaction", zap.String("transaction_id", transactionId), zap.Error(err))
		return nil, storageErr("failed to get transaction", err)
	}
	return t, nil
}

// GetTransactionHistory returns the user's transactions, newest first
func (s *SubledgerService) GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error) {
	zap.L().Debug("Getting transaction history",
		zap.String("user_id", userId),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	transactions, err := s.queryTransactions(ctx, queryGetTransactionHistory, userId, limit, offset)
	if err != nil {
		zap.L().Error("Failed to get transaction history", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}

	zap.L().Debug("Retrieved transaction history", zap.String("user_id", userId), zap.Int("count", len(transactions)))
	return transactions, nil
}

// ListPendingTransactions returns the settlement queue, oldest first
func (s *SubledgerService) ListPendingTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	transactions, err := s.queryTransactions(ctx, queryListPendingTransactions, limit, offset)
	if err != nil {
		zap.L().Error("Failed to list pending transactions", zap.Error(err))
		return nil, err
	}

	zap.L().Debug("Retrieved pending transactions", zap.Int("count", len(transactions)))
	return transactions, nil
}

func (s *SubledgerService) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("failed to query transactions", err)
	}
	defer closeRows(rows)

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, storageErr("failed to scan transaction", err)
		}
		transactions = append(transactions, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("error iterating transaction rows", err)
	}
	return transactions, nil
}
