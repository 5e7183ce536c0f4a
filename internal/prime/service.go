package prime

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"wallet-ledger-go/internal/models"

	"github.com/coinbase-samples/prime-sdk-go/client"
	"github.com/coinbase-samples/prime-sdk-go/credentials"
	"github.com/coinbase-samples/prime-sdk-go/model"
	"github.com/coinbase-samples/prime-sdk-go/portfolios"
	"github.com/coinbase-samples/prime-sdk-go/transactions"
	"github.com/coinbase-samples/prime-sdk-go/wallets"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

const (
	DefaultPortfolioName = "Default Portfolio"

	tradingWallet   = "TRADING"
	depositType     = "DEPOSIT"
	depositPageSize = 500
)

// Service is a read-only Prime client. Admins use it to find the deposit
// behind a trade order before confirming it.
type Service struct {
	portfoliosSvc   portfolios.PortfoliosService
	walletsSvc      wallets.WalletsService
	transactionsSvc transactions.TransactionsService
}

func NewService(creds *credentials.Credentials) (*Service, error) {
	httpClient, err := newHttpClient(60 * time.Second)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	restClient := client.NewRestClient(creds, httpClient)

	return &Service{
		portfoliosSvc:   portfolios.NewPortfoliosService(restClient),
		walletsSvc:      wallets.NewWalletsService(restClient),
		transactionsSvc: transactions.NewTransactionsService(restClient),
	}, nil
}

func newHttpClient(timeout time.Duration) (http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConnsPerHost: 5,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return http.Client{}, err
	}

	return http.Client{Transport: tr, Timeout: timeout}, nil
}

// FindPortfolio returns the portfolio with the given name.
func (s *Service) FindPortfolio(ctx context.Context, name string) (*models.Portfolio, error) {
	response, err := s.portfoliosSvc.ListPortfolios(ctx, &portfolios.ListPortfoliosRequest{})
	if err != nil {
		return nil, fmt.Errorf("unable to list portfolios: %w", err)
	}

	for _, p := range response.Portfolios {
		if p.Name == name {
			return &models.Portfolio{Id: p.Id, Name: p.Name}, nil
		}
	}
	return nil, fmt.Errorf("portfolio %q not found among %d portfolios", name, len(response.Portfolios))
}

// TradingWallets lists the portfolio's trading wallets for the given symbols.
func (s *Service) TradingWallets(ctx context.Context, portfolioId string, symbols []string) ([]models.Wallet, error) {
	response, err := s.walletsSvc.ListWallets(ctx, &wallets.ListWalletsRequest{
		PortfolioId: portfolioId,
		Type:        tradingWallet,
		Symbols:     symbols,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list wallets: %w", err)
	}

	walletList := make([]models.Wallet, 0, len(response.Wallets))
	for _, w := range response.Wallets {
		walletList = append(walletList, models.Wallet{
			Id:     w.Id,
			Name:   w.Name,
			Symbol: w.Symbol,
			Type:   w.Type,
		})
	}
	return walletList, nil
}

// RecentDeposits collects the deposits received since the given time across
// the trading wallets for symbols, newest first. Wallets that fail are
// logged and skipped.
func (s *Service) RecentDeposits(ctx context.Context, portfolioId string, symbols []string, since time.Time) ([]models.PrimeDeposit, error) {
	walletList, err := s.TradingWallets(ctx, portfolioId, normalizeSymbols(symbols))
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		deposits []models.PrimeDeposit
	)

	for _, wallet := range walletList {
		wg.Add(1)
		go func(w models.Wallet) {
			defer wg.Done()

			found, err := s.walletDeposits(ctx, portfolioId, w, since)
			if err != nil {
				zap.L().Error("Failed to list wallet deposits",
					zap.String("wallet_id", w.Id),
					zap.String("asset", w.Symbol),
					zap.Error(err))
				return
			}

			mu.Lock()
			deposits = append(deposits, found...)
			mu.Unlock()
		}(wallet)
	}
	wg.Wait()

	sortNewestFirst(deposits)

	zap.L().Info("Collected Prime deposits",
		zap.Int("wallets", len(walletList)),
		zap.Int("deposits", len(deposits)))
	return deposits, nil
}

func (s *Service) walletDeposits(ctx context.Context, portfolioId string, wallet models.Wallet, since time.Time) ([]models.PrimeDeposit, error) {
	response, err := s.transactionsSvc.ListWalletTransactions(ctx, &transactions.ListWalletTransactionsRequest{
		PortfolioId: portfolioId,
		WalletId:    wallet.Id,
		Start:       since,
		Types:       []string{depositType},
		Pagination:  &model.PaginationParams{Limit: depositPageSize},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list wallet transactions: %w", err)
	}

	var deposits []models.PrimeDeposit
	for _, tx := range response.Transactions {
		if tx.Type != depositType {
			continue
		}
		deposits = append(deposits, models.PrimeDeposit{
			Id:            tx.Id,
			WalletId:      wallet.Id,
			WalletName:    wallet.Name,
			Symbol:        tx.Symbol,
			Amount:        tx.Amount,
			Status:        tx.Status,
			TransactionId: tx.TransactionId,
			CreatedAt:     tx.Created,
		})
	}

	zap.L().Debug("Prime deposits received",
		zap.String("wallet_id", wallet.Id),
		zap.Int("count", len(deposits)))
	return deposits, nil
}

func normalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func sortNewestFirst(deposits []models.PrimeDeposit) {
	sort.SliceStable(deposits, func(i, j int) bool {
		return deposits[i].CreatedAt.After(deposits[j].CreatedAt)
	})
}
