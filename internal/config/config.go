/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"wallet-ledger-go/internal/models"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	busyTimeout, err := getEnvDuration("DB_BUSY_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	sideEffectTimeout, err := getEnvDuration("LEDGER_SIDE_EFFECT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	breakerTimeout, err := getEnvDuration("SMS_BREAKER_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pollingInterval, err := getEnvDuration("RECONCILER_POLLING_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	maxAttempts := getEnvInt("LEDGER_MAX_ATTEMPTS", 3)
	if maxAttempts < 1 {
		return nil, fmt.Errorf("LEDGER_MAX_ATTEMPTS must be at least 1, got %d", maxAttempts)
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "wallet.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
			BusyTimeout:     busyTimeout,
		},
		Ledger: models.LedgerConfig{
			MaxAttempts:       maxAttempts,
			Currency:          getEnvString("LEDGER_CURRENCY", "NGN"),
			SideEffectTimeout: sideEffectTimeout,
			ServicesFile:      getEnvString("SERVICES_FILE", "services.yaml"),
		},
		Notify: models.NotifyConfig{
			GatewayURL:          getEnvString("SMS_GATEWAY_URL", ""),
			APIToken:            getEnvString("SMS_API_TOKEN", ""),
			Sender:              getEnvString("SMS_SENDER", "Wallet"),
			RatePerSecond:       getEnvFloat("SMS_RATE_PER_SECOND", 5),
			Burst:               getEnvInt("SMS_BURST", 5),
			BreakerTimeout:      breakerTimeout,
			ConsecutiveFailures: uint32(getEnvInt("SMS_BREAKER_FAILURES", 5)),
		},
		Formance: models.FormanceConfig{
			StackURL:     getEnvString("FORMANCE_STACK_URL", ""),
			ClientID:     getEnvString("FORMANCE_CLIENT_ID", ""),
			ClientSecret: getEnvString("FORMANCE_CLIENT_SECRET", ""),
			LedgerName:   getEnvString("FORMANCE_LEDGER", "wallet-ledger"),
		},
		Reconciler: models.ReconcilerConfig{
			PollingInterval: pollingInterval,
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
