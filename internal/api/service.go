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
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/notify"
	"wallet-ledger-go/internal/store"

	"go.uber.org/zap"
)

// Mirror receives committed ledger events, e.g. the Formance mirror.
type Mirror interface {
	Record(ctx context.Context, event models.LedgerEvent) error
}

// LedgerService runs the withdrawal and trade flows against the balance
// ledger. Each flow commits its ledger change first and only then fires the
// audit, notification and mirror side effects, which never roll it back.
type LedgerService struct {
	store             store.LedgerStore
	notifier          notify.Notifier
	mirror            Mirror
	locks             ledger.UserLocks
	maxAttempts       int
	currency          string
	sideEffectTimeout time.Duration
	sideEffects       sync.WaitGroup
}

// NewLedgerService wires the flows. notifier defaults to notify.LogNotifier
// and mirror may be nil.
func NewLedgerService(st store.LedgerStore, cfg models.LedgerConfig, notifier notify.Notifier, mirror Mirror) *LedgerService {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	timeout := cfg.SideEffectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "NGN"
	}

	return &LedgerService{
		store:             st,
		notifier:          notifier,
		mirror:            mirror,
		maxAttempts:       maxAttempts,
		currency:          currency,
		sideEffectTimeout: timeout,
	}
}

func (s *LedgerService) HealthCheck(ctx context.Context) error {
	_, err := s.store.GetUsers(ctx)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Wait blocks until every in-flight side effect has finished.
func (s *LedgerService) Wait() {
	s.sideEffects.Wait()
}

// afterCommit runs fn in the background, detached from the caller's
// cancellation but bounded by the side-effect timeout.
func (s *LedgerService) afterCommit(ctx context.Context, name string, fn func(ctx context.Context) error) {
	s.sideEffects.Add(1)
	detached := context.WithoutCancel(ctx)

	go func() {
		defer s.sideEffects.Done()

		ctx, cancel := context.WithTimeout(detached, s.sideEffectTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			zap.L().Warn("Post-commit side effect failed",
				zap.String("side_effect", name),
				zap.Error(err))
		}
	}()
}

func (s *LedgerService) audit(ctx context.Context, userId, action string, request any) {
	meta := models.GetRequestMeta(ctx)
	s.afterCommit(ctx, "audit:"+action, func(ctx context.Context) error {
		payload, err := json.Marshal(request)
		if err != nil {
			return fmt.Errorf("unable to encode audit request: %w", err)
		}
		return s.store.RecordAudit(ctx, models.AuditLog{
			UserId:    userId,
			Action:    action,
			Request:   string(payload),
			Url:       meta.Url,
			Channel:   meta.Channel,
			Device:    meta.Device,
			IpAddress: meta.IpAddress,
		})
	})
}

func (s *LedgerService) publish(ctx context.Context, event models.LedgerEvent) {
	if s.mirror == nil {
		return
	}
	s.afterCommit(ctx, "mirror:"+string(event.Type), func(ctx context.Context) error {
		return s.mirror.Record(ctx, event)
	})
}

func summarize(tx *models.Transaction, balance *models.BalanceSnapshot) *models.TransactionSummary {
	return &models.TransactionSummary{
		Id:        tx.Id,
		Reference: tx.Reference,
		Type:      tx.Type,
		Amount:    tx.Amount,
		Status:    tx.Status,
		Balance:   balance.Current,
	}
}
