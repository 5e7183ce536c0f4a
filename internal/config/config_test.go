package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "wallet.db", cfg.Database.Path)
	assert.Equal(t, 3, cfg.Ledger.MaxAttempts)
	assert.Equal(t, "NGN", cfg.Ledger.Currency)
	assert.Equal(t, "services.yaml", cfg.Ledger.ServicesFile)
	assert.Equal(t, 5*time.Minute, cfg.Reconciler.PollingInterval)
	assert.Empty(t, cfg.Notify.GatewayURL)
	assert.False(t, cfg.Formance.Enabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/ledger.db")
	t.Setenv("LEDGER_MAX_ATTEMPTS", "5")
	t.Setenv("SMS_GATEWAY_URL", "https://sms.example.com/send")
	t.Setenv("SMS_RATE_PER_SECOND", "0.5")
	t.Setenv("FORMANCE_STACK_URL", "https://stack.example.com")
	t.Setenv("FORMANCE_CLIENT_ID", "id")
	t.Setenv("FORMANCE_CLIENT_SECRET", "secret")
	t.Setenv("RECONCILER_POLLING_INTERVAL", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ledger.db", cfg.Database.Path)
	assert.Equal(t, 5, cfg.Ledger.MaxAttempts)
	assert.Equal(t, "https://sms.example.com/send", cfg.Notify.GatewayURL)
	assert.Equal(t, 0.5, cfg.Notify.RatePerSecond)
	assert.True(t, cfg.Formance.Enabled())
	assert.Equal(t, 90*time.Second, cfg.Reconciler.PollingInterval)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("DB_PING_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsZeroAttempts(t *testing.T) {
	t.Setenv("LEDGER_MAX_ATTEMPTS", "0")
	_, err := Load()
	assert.Error(t, err)
}
