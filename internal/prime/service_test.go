package prime

import (
	"testing"
	"time"

	"wallet-ledger-go/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbols(t *testing.T) {
	assert.Equal(t, []string{"BTC", "USDT"}, normalizeSymbols([]string{" btc", "", "USDT "}))
	assert.Empty(t, normalizeSymbols(nil))
}

func TestSortNewestFirst(t *testing.T) {
	now := time.Now()
	deposits := []models.PrimeDeposit{
		{Id: "old", CreatedAt: now.Add(-2 * time.Hour)},
		{Id: "new", CreatedAt: now},
		{Id: "mid", CreatedAt: now.Add(-time.Hour)},
	}

	sortNewestFirst(deposits)

	assert.Equal(t, "new", deposits[0].Id)
	assert.Equal(t, "mid", deposits[1].Id)
	assert.Equal(t, "old", deposits[2].Id)
}

func TestNewHttpClient(t *testing.T) {
	c, err := newHttpClient(5 * time.Second)
	assert.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.Timeout)
	assert.NotNil(t, c.Transport)
}
