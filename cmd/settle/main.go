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
	"os"

	"wallet-ledger-go/internal/api"
	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/config"
	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"

	"go.uber.org/zap"
)

func listPending(ctx context.Context, svc *api.LedgerService, currency string, limit int) error {
	pending, err := svc.ListPendingTransactions(ctx, limit, 0)
	if err != nil {
		return err
	}

	common.PrintHeader(fmt.Sprintf("PENDING TRANSACTIONS (%d)", len(pending)), common.WideWidth)
	for i, tx := range pending {
		common.PrintTransaction(currency, tx, i == len(pending)-1)
	}
	return nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	listFlag := flag.Bool("list", false, "List pending transactions and exit")
	limitFlag := flag.Int("limit", 20, "Number of pending transactions to list")
	idFlag := flag.String("id", "", "Transaction id to settle")
	statusFlag := flag.String("status", "", "Decision: success or failed")
	adminFlag := flag.String("admin", "", "Id of the admin settling the transaction (required with --id)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}

	if *listFlag {
		err := listPending(ctx, services.LedgerService, cfg.Ledger.Currency, *limitFlag)
		services.Close()
		if err != nil {
			zap.L().Fatal("Failed to list pending transactions", zap.Error(err))
		}
		return
	}

	if *idFlag == "" || *adminFlag == "" {
		services.Close()
		zap.L().Fatal("Flags --id, --status and --admin are required (or use --list)")
	}
	decision, err := ledger.ParseDecision(*statusFlag)
	if err != nil {
		services.Close()
		zap.L().Fatal("Invalid status", zap.Error(err))
	}

	ctx = models.WithRequestMeta(ctx, models.RequestMeta{Channel: "cli", Url: "settle"})
	summary, err := services.LedgerService.SettleTransaction(ctx, api.SettleRequest{
		TransactionId: *idFlag,
		Decision:      decision,
		SettledBy:     *adminFlag,
	})
	if err != nil {
		zap.L().Error("Settlement failed", zap.String("transaction_id", *idFlag), zap.Error(err))
		fmt.Println(common.UserMessage(err))
		services.Close()
		os.Exit(1)
	}

	fmt.Printf("Transaction %s is now %s\n", summary.Reference, summary.Status)
	fmt.Printf("  Wallet balance: %s\n", common.FormatAmount(cfg.Ledger.Currency, summary.Balance))

	services.Close()
}
