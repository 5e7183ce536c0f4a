package formance

import (
	"context"
	"math/big"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetUserBalance returns the mirrored balance of the users:{userId} account.
func (s *Service) GetUserBalance(ctx context.Context, userId string) (decimal.Decimal, error) {
	zap.L().Debug("Getting user balance from Formance", zap.String("user_id", userId))

	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: "users:" + userId,
		Expand:  v3.Pointer("volumes"),
	})
	if err != nil {
		return decimal.Zero, err
	}

	if bal := volumeBalance(resp.V2AccountResponse.Data.Volumes, formanceAsset(s.currency)); bal != nil {
		return bigIntToDecimal(bal, s.currency), nil
	}
	return decimal.Zero, nil
}

// volumeBalance extracts the balance for a specific asset from volumes.
func volumeBalance(vols map[string]shared.V2Volume, fAsset string) *big.Int {
	vol, ok := vols[fAsset]
	if !ok {
		return nil
	}
	if vol.Balance != nil {
		return vol.Balance
	}
	if vol.Input == nil {
		return nil
	}
	result := new(big.Int).Set(vol.Input)
	if vol.Output != nil {
		result.Sub(result, vol.Output)
	}
	return result
}

// bigIntToDecimal converts a *big.Int in smallest-unit to a human-readable decimal.
func bigIntToDecimal(raw *big.Int, symbol string) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(precisionFor(symbol)))
}
