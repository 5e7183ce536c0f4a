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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionSummary is what the flows hand back to their callers
type TransactionSummary struct {
	Id        string            `json:"id"`
	Reference string            `json:"reference"`
	Type      TransactionType   `json:"type"`
	Amount    decimal.Decimal   `json:"amount"`
	Status    TransactionStatus `json:"status"`
	Balance   decimal.Decimal   `json:"balance"`
}

// UserBalance represents a user's spendable balance
type UserBalance struct {
	UserId   string          `json:"user_id"`
	Previous decimal.Decimal `json:"previous"`
	Book     decimal.Decimal `json:"book"`
	Current  decimal.Decimal `json:"current"`
}

// TransactionRecord represents a transaction in the user's history
type TransactionRecord struct {
	Id        string            `json:"id"`
	Reference string            `json:"reference"`
	Type      TransactionType   `json:"type"`
	Amount    decimal.Decimal   `json:"amount"`
	Narration string            `json:"narration,omitempty"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// Discrepancy is one reconciliation finding for a user
type Discrepancy struct {
	UserId   string `json:"user_id"`
	Check    string `json:"check"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}
