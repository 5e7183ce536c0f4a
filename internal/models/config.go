package models

import "time"

// Config represents the application configuration
type Config struct {
	Database   DatabaseConfig
	Ledger     LedgerConfig
	Notify     NotifyConfig
	Formance   FormanceConfig
	Reconciler ReconcilerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	BusyTimeout     time.Duration
}

// LedgerConfig holds balance and settlement settings
type LedgerConfig struct {
	MaxAttempts       int
	Currency          string
	SideEffectTimeout time.Duration
	ServicesFile      string
}

// NotifyConfig holds SMS gateway settings. An empty GatewayURL disables SMS.
type NotifyConfig struct {
	GatewayURL          string
	APIToken            string
	Sender              string
	RatePerSecond       float64
	Burst               int
	BreakerTimeout      time.Duration
	ConsecutiveFailures uint32
}

// FormanceConfig holds the optional Formance mirror settings
type FormanceConfig struct {
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
}

// Enabled reports whether the mirror has enough settings to connect.
func (c FormanceConfig) Enabled() bool {
	return c.StackURL != "" && c.ClientID != "" && c.ClientSecret != ""
}

// ReconcilerConfig holds reconciliation loop settings
type ReconcilerConfig struct {
	PollingInterval time.Duration
}
