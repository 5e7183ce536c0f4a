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
	"wallet-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func parseAndValidateFlags() (string, *api.WithdrawalRequest, error) {
	userFlag := flag.String("user", "", "User id or email (required)")
	serviceFlag := flag.String("service", "withdrawal", "Withdrawal service id")
	bankAccountFlag := flag.String("bank-account", "", "Bank account id to pay out to (required)")
	amountFlag := flag.String("amount", "", "Amount to withdraw (required)")
	narrationFlag := flag.String("narration", "", "Narration (default: bank name and account number)")
	flag.Parse()

	if *userFlag == "" || *bankAccountFlag == "" || *amountFlag == "" {
		return "", nil, fmt.Errorf("flags --user, --bank-account and --amount are required")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return "", nil, fmt.Errorf("invalid amount format: %w", err)
	}

	return *userFlag, &api.WithdrawalRequest{
		ServiceId:     *serviceFlag,
		BankAccountId: *bankAccountFlag,
		Amount:        amount,
		Narration:     *narrationFlag,
	}, nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userArg, req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid arguments", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}

	user, err := common.ResolveUser(ctx, services.DbService, userArg)
	if err != nil {
		services.Close()
		zap.L().Fatal("Failed to resolve user", zap.Error(err))
	}
	req.UserId = user.Id

	ctx = models.WithRequestMeta(ctx, models.RequestMeta{Channel: "cli", Url: "withdrawal"})
	summary, err := services.LedgerService.RequestWithdrawal(ctx, *req)
	if err != nil {
		zap.L().Error("Withdrawal failed", zap.String("user_id", user.Id), zap.Error(err))
		fmt.Println(common.UserMessage(err))
		services.Close()
		os.Exit(1)
	}

	fmt.Printf("Withdrawal %s is pending\n", summary.Reference)
	fmt.Printf("  Amount:      %s\n", common.FormatAmount(cfg.Ledger.Currency, summary.Amount))
	fmt.Printf("  New balance: %s\n", common.FormatAmount(cfg.Ledger.Currency, summary.Balance))
	fmt.Printf("  ID:          %s\n", summary.Id)

	services.Close()
}
