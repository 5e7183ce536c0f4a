package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/config"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/reconciler"

	"go.uber.org/zap"
)

func main() {
	onceFlag := flag.Bool("once", false, "Run a single reconciliation pass and exit non-zero on discrepancies")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	rcfg := reconciler.Config{
		Store:           services.DbService,
		PollingInterval: cfg.Reconciler.PollingInterval,
	}
	if services.Mirror != nil {
		rcfg.Mirror = services.Mirror
	}

	if *onceFlag {
		discrepancies, err := reconciler.New(rcfg).RunOnce(ctx)
		if err != nil {
			zap.L().Error("Reconciliation failed", zap.Error(err))
			services.Close()
			os.Exit(1)
		}
		if len(discrepancies) > 0 {
			services.Close()
			os.Exit(2)
		}
		return
	}

	rcfg.Report = func(discrepancies []models.Discrepancy) {
		if len(discrepancies) == 0 {
			zap.L().Info("Ledger is consistent")
		}
	}
	r := reconciler.New(rcfg)
	r.Start(ctx)

	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping reconciler...")

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()

	select {
	case <-done:
		zap.L().Info("Reconciler stopped gracefully")
	case <-time.After(30 * time.Second):
		zap.L().Warn("Forced shutdown after timeout")
	}
}
