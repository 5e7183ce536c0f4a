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

func parseDecimal(name, value string, required bool) (decimal.Decimal, error) {
	if value == "" {
		if required {
			return decimal.Zero, fmt.Errorf("--%s is required", name)
		}
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return d, nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "User id or email (required)")
	serviceFlag := flag.String("service", "", "Trade service id, e.g. trade-bitcoin (required)")
	amountFlag := flag.String("amount", "", "Wallet amount to credit once confirmed (required)")
	submittedFlag := flag.String("submitted", "", "Dollar amount of the asset sold")
	rateFlag := flag.String("rate", "", "Rate per dollar")
	addressFlag := flag.String("address", "", "Address the asset was sent to")
	imageFlag := flag.String("image", "", "URL of the payment proof")
	flag.Parse()

	if *userFlag == "" || *serviceFlag == "" {
		zap.L().Fatal("Flags --user and --service are required")
	}
	amount, err := parseDecimal("amount", *amountFlag, true)
	if err != nil {
		zap.L().Fatal("Invalid arguments", zap.Error(err))
	}
	submitted, err := parseDecimal("submitted", *submittedFlag, false)
	if err != nil {
		zap.L().Fatal("Invalid arguments", zap.Error(err))
	}
	rate, err := parseDecimal("rate", *rateFlag, false)
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

	user, err := common.ResolveUser(ctx, services.DbService, *userFlag)
	if err != nil {
		services.Close()
		zap.L().Fatal("Failed to resolve user", zap.Error(err))
	}

	ctx = models.WithRequestMeta(ctx, models.RequestMeta{Channel: "cli", Url: "trade"})
	summary, err := services.LedgerService.SubmitTradeOrder(ctx, api.TradeOrderRequest{
		UserId:          user.Id,
		ServiceId:       *serviceFlag,
		Amount:          amount,
		AmountSubmitted: submitted,
		Rate:            rate,
		Address:         *addressFlag,
		ImageUrl:        *imageFlag,
	})
	if err != nil {
		zap.L().Error("Trade order failed", zap.String("user_id", user.Id), zap.Error(err))
		fmt.Println(common.UserMessage(err))
		services.Close()
		os.Exit(1)
	}

	fmt.Printf("Trade order %s submitted and awaiting confirmation\n", summary.Reference)
	fmt.Printf("  Credit on confirmation: %s\n", common.FormatAmount(cfg.Ledger.Currency, summary.Amount))
	fmt.Printf("  ID:                     %s\n", summary.Id)

	services.Close()
}
