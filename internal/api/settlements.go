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
	"errors"
	"fmt"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/notify"
	"wallet-ledger-go/internal/store"

	"go.uber.org/zap"
)

// SettleRequest is an admin decision on a pending transaction.
type SettleRequest struct {
	TransactionId string          `json:"transaction_id"`
	Decision      ledger.Decision `json:"-"`
	SettledBy     string          `json:"settled_by"`
}

// SettleTransaction applies an admin decision. Confirmed trades credit the
// wallet, declined withdrawals refund the reserved amount, and every other
// decision only changes the status. A transaction settles at most once.
func (s *LedgerService) SettleTransaction(ctx context.Context, req SettleRequest) (*models.TransactionSummary, error) {
	if req.TransactionId == "" || req.SettledBy == "" {
		return nil, fmt.Errorf("%w: transaction_id and settled_by are required", ledger.ErrValidation)
	}

	tx, err := s.store.GetTransaction(ctx, req.TransactionId)
	if err != nil {
		return nil, err
	}
	if ledger.IsTerminal(tx.Status) {
		return nil, fmt.Errorf("%w: transaction %s is already %s", store.ErrTransactionNotPending, tx.Id, tx.Status)
	}

	kind, err := ledger.KindOf(tx)
	if err != nil {
		return nil, err
	}
	plan, err := ledger.PlanSettlement(kind, tx.Status, req.Decision)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Settling transaction",
		zap.String("transaction_id", tx.Id),
		zap.String("user_id", tx.UserId),
		zap.String("kind", kind.String()),
		zap.String("decision", req.Decision.String()),
		zap.String("effect", plan.Effect.String()))

	unlock := s.locks.Lock(tx.UserId)
	defer unlock()

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		params := store.SettleParams{
			TransactionId: tx.Id,
			Status:        plan.To,
			SettledBy:     req.SettledBy,
		}

		if plan.Effect != ledger.EffectNone {
			active, err := s.store.GetActiveSnapshot(ctx, tx.UserId)
			if err != nil {
				return nil, err
			}

			reference := tx.Reference
			if plan.Effect == ledger.EffectRefund {
				reference = ledger.ReversalReference(tx.Reference)
			}
			params.Supersede = &store.SupersedeParams{
				UserId:           tx.UserId,
				ExpectedActiveId: active.Id,
				Fields:           ledger.ComputeCredit(active, tx.Amount),
				Reference:        reference,
			}
			params.BindBalance = plan.Effect == ledger.EffectCredit
		}

		settled, err := s.store.Settle(ctx, params)
		if errors.Is(err, store.ErrSnapshotConflict) {
			lastErr = err
			zap.L().Warn("Settlement attempt conflicted, retrying",
				zap.String("transaction_id", tx.Id),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}

		active, err := s.store.GetActiveSnapshot(ctx, tx.UserId)
		if err != nil {
			return nil, err
		}

		zap.L().Info("Transaction settled",
			zap.String("transaction_id", settled.Id),
			zap.String("user_id", settled.UserId),
			zap.String("status", string(settled.Status)),
			zap.String("balance", active.Current.String()))

		s.afterSettlement(ctx, req, settled, plan)
		return summarize(settled, active), nil
	}

	return nil, fmt.Errorf("settlement of %s gave up after %d attempts: %w", tx.Id, s.maxAttempts, lastErr)
}

func (s *LedgerService) afterSettlement(ctx context.Context, req SettleRequest, tx *models.Transaction, plan ledger.Settlement) {
	s.audit(ctx, req.SettledBy, "updateTransactionStatus", map[string]string{
		"id":     tx.Id,
		"userId": tx.UserId,
		"status": string(tx.Status),
		"amount": tx.Amount.String(),
	})

	event := models.LedgerEvent{
		UserId:        tx.UserId,
		TransactionId: tx.Id,
		Reference:     tx.Reference,
		ServiceId:     tx.ServiceId,
		Amount:        tx.Amount,
	}

	switch {
	case tx.Type == models.TransactionTypeCredit && plan.Effect == ledger.EffectCredit:
		event.Type = models.LedgerEventTradeCredited
		s.notifyUser(ctx, tx.UserId, func(phone string) notify.Message {
			return notify.TradeConfirmed(tx.UserId, phone)
		})
	case tx.Type == models.TransactionTypeDebit && plan.Effect == ledger.EffectNone:
		event.Type = models.LedgerEventWithdrawalPaid
		s.notifyUser(ctx, tx.UserId, func(phone string) notify.Message {
			return notify.WithdrawalConfirmed(tx.UserId, phone)
		})
	case tx.Type == models.TransactionTypeDebit && plan.Effect == ledger.EffectRefund:
		event.Type = models.LedgerEventWithdrawalRefunded
		s.notifyUser(ctx, tx.UserId, func(phone string) notify.Message {
			return notify.WithdrawalRefunded(tx.UserId, phone, tx.Amount, s.currency)
		})
	default:
		// declined trade orders never touched the wallet
		return
	}

	s.publish(ctx, event)
}

func (s *LedgerService) notifyUser(ctx context.Context, userId string, build func(phone string) notify.Message) {
	s.afterCommit(ctx, "notify", func(ctx context.Context) error {
		user, err := s.store.GetUserById(ctx, userId)
		if err != nil {
			return err
		}
		return s.notifier.Notify(ctx, build(user.Phone))
	})
}
