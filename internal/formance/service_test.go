package formance

import (
	"math/big"
	"testing"

	"wallet-ledger-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- Unit tests for pure helpers (no Formance stack needed) ----------

func TestFormanceAsset(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"NGN", "NGN/2"},
		{"BTC", "BTC/8"},
		{"USDT", "USDT/6"},
		{"UNKNOWN", "UNKNOWN/2"}, // default precision
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formanceAsset(tt.symbol), tt.symbol)
	}
}

func TestBigIntToDecimal(t *testing.T) {
	// 10_050 smallest units of NGN (precision 2) = 100.50
	result := bigIntToDecimal(big.NewInt(10_050), "NGN")
	assert.True(t, result.Equal(decimal.RequireFromString("100.50")), result.String())

	assert.True(t, bigIntToDecimal(nil, "NGN").IsZero())
}

func TestVolumeBalance(t *testing.T) {
	vols := map[string]shared.V2Volume{
		"NGN/2": {Input: big.NewInt(500), Output: big.NewInt(200)},
	}
	assert.Equal(t, int64(300), volumeBalance(vols, "NGN/2").Int64())
	assert.Nil(t, volumeBalance(vols, "USD/2"))
}

func TestIsConflictError(t *testing.T) {
	assert.False(t, isConflictError(nil))
}

func TestBuildPostTransaction(t *testing.T) {
	s := &Service{ledger: "test", currency: "NGN"}

	postTx, err := s.buildPostTransaction(models.LedgerEvent{
		Type:          models.LedgerEventTradeCredited,
		UserId:        "user1",
		TransactionId: "tx1",
		Reference:     "1700000000000ABCDEF12",
		ServiceId:     "svc-trade-btc",
		Amount:        decimal.RequireFromString("150.25"),
	})
	require.NoError(t, err)

	require.NotNil(t, postTx.Reference)
	assert.Equal(t, "1700000000000ABCDEF12:trade_credited", *postTx.Reference)
	require.NotNil(t, postTx.Script)
	assert.Equal(t, numscriptTradeCredited, postTx.Script.Plain)
	assert.Equal(t, "15025", postTx.Script.Vars["amount"])
	assert.Equal(t, "NGN/2", postTx.Script.Vars["asset"])
	assert.Equal(t, "svc-trade-btc", postTx.Script.Vars["service_id"])

	postTx, err = s.buildPostTransaction(models.LedgerEvent{
		Type:   models.LedgerEventWithdrawalRefunded,
		UserId: "user1",
		Amount: decimal.NewFromInt(80),
	})
	require.NoError(t, err)
	assert.Equal(t, "8000", postTx.Script.Vars["amount"])
	_, hasService := postTx.Script.Vars["service_id"]
	assert.False(t, hasService)

	_, err = s.buildPostTransaction(models.LedgerEvent{Type: "unknown"})
	assert.Error(t, err)
}

func TestBuildPostTransaction_RejectsSubMinorAmounts(t *testing.T) {
	s := &Service{ledger: "test", currency: "NGN"}

	_, err := s.buildPostTransaction(models.LedgerEvent{
		Type:   models.LedgerEventWithdrawalReserved,
		UserId: "user1",
		Amount: decimal.RequireFromString("10.005"),
	})
	assert.ErrorContains(t, err, "exceeds NGN precision")
}
