package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TradeOrderRequest records an asset the user sold to the platform. Amount is
// what the wallet is credited once an admin confirms the order;
// AmountSubmitted and Rate only describe the trade.
type TradeOrderRequest struct {
	UserId          string          `json:"user_id"`
	ServiceId       string          `json:"service_id"`
	Amount          decimal.Decimal `json:"amount"`
	AmountSubmitted decimal.Decimal `json:"amount_submitted"`
	Rate            decimal.Decimal `json:"rate"`
	Address         string          `json:"address,omitempty"`
	ImageUrl        string          `json:"image_url,omitempty"`
}

// TradeNarration describes a trade the way users see it on their statement,
// e.g. "$50 bitcoin sold at 1450/$".
func TradeNarration(amountSubmitted decimal.Decimal, asset string, rate decimal.Decimal) string {
	return fmt.Sprintf("$%s %s sold at %s/$", amountSubmitted.String(), strings.ToLower(asset), rate.String())
}

// SubmitTradeOrder records a pending trade. The wallet is not touched until
// the order is settled as a success.
func (s *LedgerService) SubmitTradeOrder(ctx context.Context, req TradeOrderRequest) (*models.TransactionSummary, error) {
	if req.UserId == "" || req.ServiceId == "" {
		return nil, fmt.Errorf("%w: user_id and service_id are required", ledger.ErrValidation)
	}
	if err := ledger.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	if req.AmountSubmitted.IsNegative() || req.Rate.IsNegative() {
		return nil, fmt.Errorf("%w: amount submitted and rate cannot be negative", ledger.ErrValidation)
	}

	if _, err := s.store.GetUserById(ctx, req.UserId); err != nil {
		return nil, err
	}
	service, err := s.requireServiceKind(ctx, req.ServiceId, models.ServiceKindTrade)
	if err != nil {
		return nil, err
	}

	narration := TradeNarration(req.AmountSubmitted, service.Asset, req.Rate)

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		tx, err := s.store.CreateTradeOrder(ctx, store.CreateTradeOrderParams{
			UserId:    req.UserId,
			ServiceId: req.ServiceId,
			Reference: ledger.NewReference(),
			Amount:    req.Amount,
			Narration: narration,
			ImageUrl:  req.ImageUrl,
		})
		if errors.Is(err, store.ErrDuplicate) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		active, err := s.store.GetActiveSnapshot(ctx, req.UserId)
		if err != nil {
			return nil, err
		}

		zap.L().Info("Trade order submitted",
			zap.String("transaction_id", tx.Id),
			zap.String("user_id", req.UserId),
			zap.String("reference", tx.Reference),
			zap.String("amount", req.Amount.String()))

		s.audit(ctx, req.UserId, "createTradeOrder", req)

		return summarize(tx, active), nil
	}

	return nil, fmt.Errorf("trade order for user %s gave up after %d attempts: %w", req.UserId, s.maxAttempts, lastErr)
}
