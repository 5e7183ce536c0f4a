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

package api

import (
	"context"
	"fmt"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"

	"go.uber.org/zap"
)

// GetBalance returns the user's active balance snapshot
func (s *LedgerService) GetBalance(ctx context.Context, userId string) (*models.UserBalance, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user_id is required", ledger.ErrValidation)
	}

	active, err := s.store.GetActiveSnapshot(ctx, userId)
	if err != nil {
		zap.L().Error("Failed to get user balance", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}

	return &models.UserBalance{
		UserId:   userId,
		Previous: active.Previous,
		Book:     active.Book,
		Current:  active.Current,
	}, nil
}

// GetBalanceHistory returns the user's balance snapshots, newest first
func (s *LedgerService) GetBalanceHistory(ctx context.Context, userId string, limit, offset int) ([]models.BalanceSnapshot, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user_id is required", ledger.ErrValidation)
	}
	limit, offset = pageBounds(limit, offset)

	snapshots, err := s.store.GetBalanceHistory(ctx, userId, limit, offset)
	if err != nil {
		zap.L().Error("Failed to get balance history", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}
	return snapshots, nil
}

// GetTransactionHistory returns paginated transaction history for a user
func (s *LedgerService) GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.TransactionRecord, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user_id is required", ledger.ErrValidation)
	}
	limit, offset = pageBounds(limit, offset)

	transactions, err := s.store.GetTransactionHistory(ctx, userId, limit, offset)
	if err != nil {
		zap.L().Error("Failed to get transaction history",
			zap.String("user_id", userId),
			zap.Error(err))
		return nil, err
	}

	result := make([]models.TransactionRecord, len(transactions))
	for i, tx := range transactions {
		result[i] = models.TransactionRecord{
			Id:        tx.Id,
			Reference: tx.Reference,
			Type:      tx.Type,
			Amount:    tx.Amount,
			Narration: tx.Narration,
			Status:    tx.Status,
			CreatedAt: tx.CreatedAt,
		}
	}

	return result, nil
}

// ListPendingTransactions returns the admin settlement queue, oldest first
func (s *LedgerService) ListPendingTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	limit, offset = pageBounds(limit, offset)
	return s.store.ListPendingTransactions(ctx, limit, offset)
}

func (s *LedgerService) GetTransaction(ctx context.Context, transactionId string) (*models.Transaction, error) {
	if transactionId == "" {
		return nil, fmt.Errorf("%w: transaction_id is required", ledger.ErrValidation)
	}
	return s.store.GetTransaction(ctx, transactionId)
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
