package common

import (
	"os"
	"path/filepath"
	"testing"

	"wallet-ledger-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
services:
  - id: withdrawal
    name: Withdrawal
    kind: withdrawal
    asset: NGN
  - id: trade-bitcoin
    name: Trade Bitcoin
    kind: trade
    asset: bitcoin
`

func TestParseServiceCatalog(t *testing.T) {
	services, err := ParseServiceCatalog([]byte(testCatalog))
	require.NoError(t, err)
	require.Len(t, services, 2)

	assert.Equal(t, "withdrawal", services[0].Id)
	assert.Equal(t, models.ServiceKindWithdrawal, services[0].Kind)
	assert.Equal(t, models.ServiceKindTrade, services[1].Kind)
	assert.Equal(t, "bitcoin", services[1].Asset)
}

func TestParseServiceCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing id", "services:\n  - name: X\n    kind: trade\n"},
		{"missing name", "services:\n  - id: x\n    kind: trade\n"},
		{"unknown kind", "services:\n  - id: x\n    name: X\n    kind: lending\n"},
		{"duplicate id", "services:\n  - id: x\n    name: X\n    kind: trade\n  - id: x\n    name: Y\n    kind: withdrawal\n"},
		{"not yaml", "services: [unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseServiceCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadServiceCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))

	services, err := LoadServiceCatalog(path)
	require.NoError(t, err)
	assert.Len(t, services, 2)

	_, err = LoadServiceCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
