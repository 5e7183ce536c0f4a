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
	"regexp"

	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/config"
	"wallet-ledger-go/internal/store"

	"go.uber.org/zap"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	if phone != "" && !phoneRegex.MatchString(phone) {
		return fmt.Errorf("invalid phone number: %s", phone)
	}
	return nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	nameFlag := flag.String("name", "", "User's full name (required)")
	emailFlag := flag.String("email", "", "User's email address (required)")
	phoneFlag := flag.String("phone", "", "Phone number for SMS notifications (optional)")
	bankNameFlag := flag.String("bank-name", "", "Payout bank name (optional)")
	bankCodeFlag := flag.String("bank-code", "", "Payout bank code (optional)")
	accountNumberFlag := flag.String("account-number", "", "Payout account number (optional)")
	accountNameFlag := flag.String("account-name", "", "Payout account name (default: --name)")
	flag.Parse()

	if err := validateName(*nameFlag); err != nil {
		zap.L().Fatal("Invalid name", zap.Error(err))
	}
	if err := validateEmail(*emailFlag); err != nil {
		zap.L().Fatal("Invalid email", zap.Error(err))
	}
	if err := validatePhone(*phoneFlag); err != nil {
		zap.L().Fatal("Invalid phone", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	user, err := services.LedgerService.RegisterUser(ctx, *nameFlag, *emailFlag, *phoneFlag)
	if err != nil {
		zap.L().Fatal("Failed to create user", zap.Error(err))
	}

	fmt.Printf("Created user %s (%s)\n", user.Name, user.Email)
	fmt.Printf("  ID: %s\n", user.Id)

	if *bankNameFlag == "" && *accountNumberFlag == "" {
		return
	}

	accountName := *accountNameFlag
	if accountName == "" {
		accountName = user.Name
	}
	account, err := services.LedgerService.AddBankAccount(ctx, store.CreateBankAccountParams{
		UserId:        user.Id,
		BankName:      *bankNameFlag,
		BankCode:      *bankCodeFlag,
		AccountNumber: *accountNumberFlag,
		AccountName:   accountName,
	})
	if err != nil {
		zap.L().Fatal("Failed to add bank account", zap.Error(err))
	}

	fmt.Printf("  Bank account: %s %s (%s)\n", account.BankName, account.AccountNumber, account.Id)
}
