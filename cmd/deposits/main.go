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
	"strings"
	"time"

	"wallet-ledger-go/internal/common"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	assetsFlag := flag.String("assets", "BTC,USDT", "Comma-separated asset symbols to check")
	sinceFlag := flag.Duration("since", 24*time.Hour, "How far back to look for deposits")
	flag.Parse()

	primeService, portfolio, err := common.InitializePrime(ctx)
	if err != nil {
		zap.L().Fatal("Failed to initialize Prime", zap.Error(err))
	}

	since := time.Now().UTC().Add(-*sinceFlag)
	deposits, err := primeService.RecentDeposits(ctx, portfolio.Id, strings.Split(*assetsFlag, ","), since)
	if err != nil {
		zap.L().Fatal("Failed to list deposits", zap.Error(err))
	}

	common.PrintHeader(fmt.Sprintf("PRIME DEPOSITS SINCE %s", since.Format("2006-01-02 15:04")), common.WideWidth)
	for i, d := range deposits {
		isLast := i == len(deposits)-1
		fmt.Printf("%s%s %s %-10s %s  %s\n", common.BoxPrefix(isLast),
			d.Amount, d.Symbol, d.Status, d.CreatedAt.Format("2006-01-02 15:04:05"), d.WalletName)
		fmt.Printf("%s  id=%s tx=%s\n", common.BoxDetailPrefix(isLast), d.Id, d.TransactionId)
	}

	common.PrintFooter(fmt.Sprintf("SUMMARY: %d deposits", len(deposits)), common.WideWidth)
}
