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

package main

import (
	"context"
	"flag"
	"fmt"

	"wallet-ledger-go/internal/api"
	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/config"
	"wallet-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers  int
	funded      int
	totalWallet decimal.Decimal
}

func printUserHeader(user models.User) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.Name, user.Email)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Println("├" + "─────────────────────────────────────────────────────────────────────────────")
}

func printBalance(currency string, balance *models.UserBalance, isLast bool) {
	fmt.Printf("%sCurrent: %s  (previous %s, last debit %s)\n",
		common.BoxPrefix(isLast),
		common.FormatAmount(currency, balance.Current),
		common.FormatAmount(currency, balance.Previous),
		common.FormatAmount(currency, balance.Book))
}

func processUser(ctx context.Context, svc *api.LedgerService, currency string, user models.User, history int) (*models.UserBalance, error) {
	balance, err := svc.GetBalance(ctx, user.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	printUserHeader(user)
	printBalance(currency, balance, history == 0)

	if history == 0 {
		return balance, nil
	}

	transactions, err := svc.GetTransactionHistory(ctx, user.Id, history, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	for i, tx := range transactions {
		fmt.Printf("%s%s  %-6s %-8s %s  %s\n",
			common.BoxPrefix(i == len(transactions)-1),
			tx.CreatedAt.Format("2006-01-02 15:04"),
			tx.Type, tx.Status,
			common.FormatAmount(currency, tx.Amount),
			tx.Narration)
	}
	return balance, nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Filter by specific user email (optional)")
	historyFlag := flag.Int("history", 0, "Also print the last N transactions per user")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// read-only, no notifier or mirror needed
	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	svc := api.NewLedgerService(dbService, cfg.Ledger, nil, nil)

	users, err := common.ResolveUsers(ctx, dbService, *emailFlag)
	if err != nil {
		logger.Fatal("Failed to resolve users", zap.Error(err))
	}

	common.PrintHeader("USER BALANCE REPORT", common.DefaultWidth)

	stats := balanceStats{totalWallet: decimal.Zero}
	for _, user := range users {
		stats.totalUsers++

		balance, err := processUser(ctx, svc, cfg.Ledger.Currency, user, *historyFlag)
		if err != nil {
			logger.Error("Failed to process user",
				zap.String("user_id", user.Id),
				zap.String("user_name", user.Name),
				zap.Error(err))
			continue
		}
		if balance.Current.IsPositive() {
			stats.funded++
		}
		stats.totalWallet = stats.totalWallet.Add(balance.Current)
	}

	summary := fmt.Sprintf("SUMMARY: %d of %d users funded, %s held in wallets",
		stats.funded, stats.totalUsers, common.FormatAmount(cfg.Ledger.Currency, stats.totalWallet))
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("users_funded", stats.funded),
		zap.String("total_wallet", stats.totalWallet.String()))
}
