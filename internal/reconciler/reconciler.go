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

package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentUsers bounds how many users one pass reconciles at a time.
const maxConcurrentUsers = 8

// MirrorBalances reads a user's balance from an external copy of the ledger.
type MirrorBalances interface {
	GetUserBalance(ctx context.Context, userId string) (decimal.Decimal, error)
}

// Config contains configuration for Reconciler
type Config struct {
	Store           store.LedgerStore
	Mirror          MirrorBalances
	PollingInterval time.Duration
	// Report receives the findings of every pass; optional.
	Report func(discrepancies []models.Discrepancy)
}

// Reconciler periodically checks every user's snapshot chain against their
// transactions and, when a mirror is configured, against the mirror.
type Reconciler struct {
	store           store.LedgerStore
	mirror          MirrorBalances
	pollingInterval time.Duration
	report          func([]models.Discrepancy)

	stopChan chan struct{}
	doneChan chan struct{}
}

func New(cfg Config) *Reconciler {
	interval := cfg.PollingInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Reconciler{
		store:           cfg.Store,
		mirror:          cfg.Mirror,
		pollingInterval: interval,
		report:          cfg.Report,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}
}

// Start runs a first pass immediately and then one per polling interval.
func (r *Reconciler) Start(ctx context.Context) {
	zap.L().Info("Starting reconciler", zap.Duration("polling_interval", r.pollingInterval))
	go r.pollLoop(ctx)
}

// Stop gracefully stops the reconciler
func (r *Reconciler) Stop() {
	zap.L().Info("Stopping reconciler")
	close(r.stopChan)
	<-r.doneChan
	zap.L().Info("Reconciler stopped")
}

func (r *Reconciler) pollLoop(ctx context.Context) {
	defer close(r.doneChan)

	ticker := time.NewTicker(r.pollingInterval)
	defer ticker.Stop()

	r.pass(ctx)

	for {
		select {
		case <-ticker.C:
			r.pass(ctx)
		case <-r.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reconciler) pass(ctx context.Context) {
	discrepancies, err := r.RunOnce(ctx)
	if err != nil {
		zap.L().Error("Reconciliation pass failed", zap.Error(err))
		return
	}
	if r.report != nil {
		r.report(discrepancies)
	}
}

// RunOnce reconciles every user and returns all findings.
func (r *Reconciler) RunOnce(ctx context.Context) ([]models.Discrepancy, error) {
	users, err := r.store.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var (
		mu  sync.Mutex
		all []models.Discrepancy
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentUsers)
	for _, user := range users {
		userId := user.Id
		g.Go(func() error {
			found, err := r.ReconcileUser(gctx, userId)
			if err != nil {
				zap.L().Error("Failed to reconcile user", zap.String("user_id", userId), zap.Error(err))
				return nil
			}

			mu.Lock()
			all = append(all, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, d := range all {
		zap.L().Warn("Balance discrepancy",
			zap.String("user_id", d.UserId),
			zap.String("check", d.Check),
			zap.String("expected", d.Expected),
			zap.String("actual", d.Actual))
	}
	zap.L().Info("Reconciliation pass complete",
		zap.Int("users", len(users)),
		zap.Int("discrepancies", len(all)))

	return all, nil
}

// ReconcileUser runs the store checks for one user, then compares the active
// balance with the mirror. A mirror read failure is logged, not reported. A
// user with no active snapshot is already reported by the store checks and
// skips the mirror comparison.
func (r *Reconciler) ReconcileUser(ctx context.Context, userId string) ([]models.Discrepancy, error) {
	discrepancies, err := r.store.ReconcileUserBalance(ctx, userId)
	if err != nil {
		return nil, err
	}
	if r.mirror == nil {
		return discrepancies, nil
	}

	active, err := r.store.GetActiveSnapshot(ctx, userId)
	if errors.Is(err, store.ErrNotFound) {
		return discrepancies, nil
	}
	if err != nil {
		return nil, err
	}

	mirrored, err := r.mirror.GetUserBalance(ctx, userId)
	if err != nil {
		zap.L().Warn("Unable to read mirror balance", zap.String("user_id", userId), zap.Error(err))
		return discrepancies, nil
	}

	if !mirrored.Equal(active.Current) {
		discrepancies = append(discrepancies, models.Discrepancy{
			UserId:   userId,
			Check:    "mirror_balance",
			Expected: active.Current.String(),
			Actual:   mirrored.String(),
		})
	}
	return discrepancies, nil
}
