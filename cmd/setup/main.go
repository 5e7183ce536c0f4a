package main

import (
	"context"
	"flag"

	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/config"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	servicesFlag := flag.String("services", "", "Path to the services catalog (default: SERVICES_FILE or services.yaml)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	servicesFile := cfg.Ledger.ServicesFile
	if *servicesFlag != "" {
		servicesFile = *servicesFlag
	}

	zap.L().Info("Setting up SQLite database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	zap.L().Info("Loading service catalog", zap.String("file", servicesFile))
	services, err := common.LoadServiceCatalog(servicesFile)
	if err != nil {
		zap.L().Fatal("Failed to load service catalog", zap.Error(err))
	}

	if err := common.SeedServices(ctx, dbService, services); err != nil {
		zap.L().Fatal("Failed to seed services", zap.Error(err))
	}

	zap.L().Info("Setup complete", zap.Int("services", len(services)))
}
