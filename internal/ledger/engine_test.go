package ledger

import (
	"testing"

	"wallet-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(current string) *models.BalanceSnapshot {
	return &models.BalanceSnapshot{
		Id:      "snap-1",
		UserId:  "user1",
		Current: decimal.RequireFromString(current),
		Status:  true,
	}
}

func TestComputeDebit(t *testing.T) {
	fields, err := ComputeDebit(snapshot("100"), decimal.RequireFromString("30.25"))
	require.NoError(t, err)

	assert.True(t, fields.Previous.Equal(decimal.RequireFromString("100")), "previous = %s", fields.Previous)
	assert.True(t, fields.Book.Equal(decimal.RequireFromString("30.25")), "book = %s", fields.Book)
	assert.True(t, fields.Current.Equal(decimal.RequireFromString("69.75")), "current = %s", fields.Current)
}

func TestComputeDebit_ExactBalance(t *testing.T) {
	fields, err := ComputeDebit(snapshot("50"), decimal.RequireFromString("50"))
	require.NoError(t, err)
	assert.True(t, fields.Current.IsZero(), "current = %s", fields.Current)
}

func TestComputeDebit_InsufficientFunds(t *testing.T) {
	_, err := ComputeDebit(snapshot("50"), decimal.RequireFromString("150"))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "shortfall=100")
}

func TestComputeCredit(t *testing.T) {
	fields := ComputeCredit(snapshot("0"), decimal.RequireFromString("50"))

	assert.True(t, fields.Previous.IsZero())
	assert.True(t, fields.Book.IsZero())
	assert.True(t, fields.Current.Equal(decimal.RequireFromString("50")))
}

func TestEngine_NoDriftAcrossGenerations(t *testing.T) {
	active := snapshot("0")
	step := decimal.RequireFromString("0.1")

	for i := 0; i < 1000; i++ {
		fields := ComputeCredit(active, step)
		active = &models.BalanceSnapshot{Current: fields.Current}
	}
	assert.Equal(t, "100", active.Current.String())

	for i := 0; i < 1000; i++ {
		fields, err := ComputeDebit(active, step)
		require.NoError(t, err)
		active = &models.BalanceSnapshot{Current: fields.Current}
	}
	assert.True(t, active.Current.IsZero(), "current = %s", active.Current)
}

func TestEngine_RejectsNonPositiveAmount(t *testing.T) {
	assert.Panics(t, func() { _, _ = ComputeDebit(snapshot("10"), decimal.Zero) })
	assert.Panics(t, func() { ComputeCredit(snapshot("10"), decimal.RequireFromString("-1")) })
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("0.01")))
	assert.ErrorIs(t, ValidateAmount(decimal.Zero), ErrValidation)
	assert.ErrorIs(t, ValidateAmount(decimal.RequireFromString("-5")), ErrValidation)
}

func TestValidateAmount_Scale(t *testing.T) {
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("10.50")))
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("10.500")), "trailing zeros are fine")
	assert.ErrorIs(t, ValidateAmount(decimal.RequireFromString("10.005")), ErrValidation)
	assert.ErrorIs(t, ValidateAmount(decimal.RequireFromString("0.001")), ErrValidation)
}
