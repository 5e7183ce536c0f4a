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

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"wallet-ledger-go/internal/models"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/time/rate"
)

// ErrUnavailable is returned while the gateway breaker is open.
var ErrUnavailable = errors.New("sms gateway unavailable")

type smsRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Sms     string `json:"sms"`
	Type    string `json:"type"`
	Channel string `json:"channel"`
	ApiKey  string `json:"api_key"`
}

// SMSNotifier posts messages to an HTTP SMS gateway. Outbound calls are rate
// limited and wrapped in a circuit breaker so a failing gateway is not
// hammered by every settlement.
type SMSNotifier struct {
	gatewayURL string
	apiToken   string
	sender     string
	client     *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

func NewSMSNotifier(cfg models.NotifyConfig) (*SMSNotifier, error) {
	if cfg.GatewayURL == "" {
		return nil, fmt.Errorf("sms gateway url cannot be empty")
	}

	httpClient, err := createCustomHttpClient()
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	return newSMSNotifier(cfg, httpClient), nil
}

func newSMSNotifier(cfg models.NotifyConfig, httpClient *http.Client) *SMSNotifier {
	ratePerSecond := cfg.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}

	settings := gobreaker.Settings{
		Name:        "sms-gateway",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			zap.L().Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &SMSNotifier{
		gatewayURL: cfg.GatewayURL,
		apiToken:   cfg.APIToken,
		sender:     cfg.Sender,
		client:     httpClient,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		breaker:    gobreaker.NewCircuitBreaker(settings),
	}
}

func createCustomHttpClient() (*http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 15 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   10 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: tr,
		Timeout:   30 * time.Second,
	}, nil
}

func (n *SMSNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.Phone == "" {
		return fmt.Errorf("user %s has no phone number", msg.UserId)
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("sms rate limiter: %w", err)
	}

	_, err := n.breaker.Execute(func() (interface{}, error) {
		return nil, n.send(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		return err
	}

	zap.L().Debug("SMS sent", zap.String("user_id", msg.UserId))
	return nil
}

func (n *SMSNotifier) send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(smsRequest{
		To:      msg.Phone,
		From:    n.sender,
		Sms:     msg.Text,
		Type:    "plain",
		Channel: "generic",
		ApiKey:  n.apiToken,
	})
	if err != nil {
		return fmt.Errorf("unable to encode sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("unable to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
