package common

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"wallet-ledger-go/internal/api"
	"wallet-ledger-go/internal/database"
	"wallet-ledger-go/internal/formance"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/notify"
	"wallet-ledger-go/internal/prime"

	"github.com/coinbase-samples/prime-sdk-go/credentials"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService     *database.Service
	LedgerService *api.LedgerService
	Mirror        *formance.Service
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens the database and wires the ledger flows with the
// configured notifier and, when Formance settings are present, the mirror.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	notifier, err := newNotifier(cfg.Notify)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	services := &Services{DbService: dbService}

	var mirror api.Mirror
	if cfg.Formance.Enabled() {
		services.Mirror, err = formance.NewService(ctx, cfg.Formance, cfg.Ledger.Currency)
		if err != nil {
			dbService.Close()
			return nil, fmt.Errorf("unable to initialize formance mirror: %w", err)
		}
		mirror = services.Mirror
	} else {
		zap.L().Info("Formance mirror disabled")
	}

	services.LedgerService = api.NewLedgerService(dbService, cfg.Ledger, notifier, mirror)
	return services, nil
}

// InitializeDatabaseOnly initializes just the database service.
// Useful for read-only operations like querying balances
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	return database.NewService(ctx, cfg.Database)
}

// Close waits for pending side effects before closing the database.
func (cs *Services) Close() {
	if cs.LedgerService != nil {
		cs.LedgerService.Wait()
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func newNotifier(cfg models.NotifyConfig) (notify.Notifier, error) {
	if cfg.GatewayURL == "" {
		zap.L().Info("SMS gateway not configured, notifications will be logged")
		return notify.LogNotifier{}, nil
	}

	notifier, err := notify.NewSMSNotifier(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize SMS notifier: %w", err)
	}
	return notifier, nil
}

// InitializePrime connects to Prime and resolves the default portfolio.
func InitializePrime(ctx context.Context) (*prime.Service, *models.Portfolio, error) {
	zap.L().Info("Loading Prime API credentials")
	creds, err := loadPrimeCredentials()
	if err != nil {
		return nil, nil, err
	}

	primeService, err := prime.NewService(creds)
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("Finding default portfolio")
	defaultPortfolio, err := primeService.FindPortfolio(ctx, prime.DefaultPortfolioName)
	if err != nil {
		return nil, nil, err
	}
	zap.L().Info("Using default portfolio",
		zap.String("name", defaultPortfolio.Name),
		zap.String("id", defaultPortfolio.Id))

	return primeService, defaultPortfolio, nil
}

func loadPrimeCredentials() (*credentials.Credentials, error) {
	accessKey := os.Getenv("PRIME_ACCESS_KEY")
	passphrase := os.Getenv("PRIME_PASSPHRASE")
	signingKey := os.Getenv("PRIME_SIGNING_KEY")

	if accessKey == "" || passphrase == "" || signingKey == "" {
		return nil, fmt.Errorf("missing required Prime API credentials: PRIME_ACCESS_KEY, PRIME_PASSPHRASE, PRIME_SIGNING_KEY")
	}

	return &credentials.Credentials{
		AccessKey:  accessKey,
		Passphrase: passphrase,
		SigningKey: signingKey,
	}, nil
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
