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

package database

const (
	// User queries
	queryGetActiveUsers = `
		SELECT id, name, email, phone, created_at, updated_at
		FROM users
		WHERE active = 1
		ORDER BY created_at`

	queryInsertUser = `
		INSERT OR IGNORE INTO users (id, name, email, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetUserById = `
		SELECT id, name, email, phone, created_at, updated_at
		FROM users
		WHERE id = ? AND active = 1`

	queryGetUserByEmail = `
		SELECT id, name, email, phone, created_at, updated_at
		FROM users
		WHERE email = ? AND active = 1`

	// Bank account queries
	queryInsertBankAccount = `
		INSERT OR IGNORE INTO bank_accounts (id, user_id, bank_name, bank_code, account_number, account_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetBankAccount = `
		SELECT id, user_id, bank_name, bank_code, account_number, account_name, created_at
		FROM bank_accounts
		WHERE id = ?`

	// Service catalog queries
	queryUpsertService = `
		INSERT INTO services (id, name, kind, asset)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, kind = excluded.kind, asset = excluded.asset`

	queryGetService = `
		SELECT id, name, kind, asset, created_at
		FROM services
		WHERE id = ?`

	// Audit queries
	queryInsertAuditLog = `
		INSERT INTO audit_logs (id, user_id, action, request, response, url, channel, device, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetAuditLogs = `
		SELECT id, user_id, action, request, response, url, channel, device, ip_address, created_at
		FROM audit_logs
		WHERE user_id = ?
		ORDER BY rowid DESC
		LIMIT ?`

	// Balance queries
	queryGetActiveSnapshot = `
		SELECT id, user_id, previous, book, current, status, reference, created_at
		FROM balances
		WHERE user_id = ? AND status = 1`

	queryDeactivateSnapshot = `
		UPDATE balances
		SET status = 0
		WHERE id = ? AND user_id = ? AND status = 1
		RETURNING current`

	queryInsertSnapshot = `
		INSERT INTO balances (id, user_id, previous, book, current, status, reference, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)`

	queryGetBalanceHistory = `
		SELECT id, user_id, previous, book, current, status, reference, created_at
		FROM balances
		WHERE user_id = ?
		ORDER BY rowid DESC
		LIMIT ? OFFSET ?`

	queryGetSnapshotChain = `
		SELECT id, previous, current, status
		FROM balances
		WHERE user_id = ?
		ORDER BY rowid ASC`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (
			id, user_id, service_id, reference, amount, type, balance_id, bank_account_id,
			narration, status, image_url, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?, ?, ?)`

	queryGetTransactionStatus = `
		SELECT status
		FROM transactions
		WHERE id = ?`

	querySettleTransaction = `
		UPDATE transactions
		SET status = ?, settled_by = ?, settled_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`

	querySettleTransactionWithBalance = `
		UPDATE transactions
		SET status = ?, settled_by = ?, settled_at = ?, updated_at = ?, balance_id = ?
		WHERE id = ? AND status = 'pending' AND balance_id IS NULL`

	transactionColumns = `
		id, user_id, service_id, reference, amount, type, balance_id, bank_account_id,
		narration, status, image_url, settled_by, created_at, updated_at, settled_at`

	queryGetTransaction = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = ?`

	queryGetTransactionHistory = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = ?
		ORDER BY rowid DESC
		LIMIT ? OFFSET ?`

	queryListPendingTransactions = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = 'pending'
		ORDER BY rowid ASC
		LIMIT ? OFFSET ?`

	queryReconcileTransactions = `
		SELECT amount, type, status
		FROM transactions
		WHERE user_id = ?`
)
