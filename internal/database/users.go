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

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	zap.L().Debug("Querying active users")

	rows, err := s.db.QueryContext(ctx, queryGetActiveUsers)
	if err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, storageErr("unable to query users", err)
	}
	defer closeRows(rows)

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.Id, &user.Name, &user.Email, &user.Phone, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			zap.L().Error("Failed to scan user row", zap.Error(err))
			return nil, storageErr("unable to scan user row", err)
		}

		users = append(users, user)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during user row iteration", zap.Error(err))
		return nil, storageErr("error iterating user rows", err)
	}

	zap.L().Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	zap.L().Debug("Querying user by ID", zap.String("user_id", userId))
	return s.getUser(ctx, queryGetUserById, userId)
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	zap.L().Debug("Querying user by email", zap.String("email", email))
	return s.getUser(ctx, queryGetUserByEmail, email)
}

func (s *Service) getUser(ctx context.Context, query, key string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&user.Id, &user.Name, &user.Email, &user.Phone, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, key)
		}
		zap.L().Error("Failed to query user", zap.String("key", key), zap.Error(err))
		return nil, storageErr("unable to query user", err)
	}
	return &user, nil
}

// CreateUser registers a user and seeds the zero balance snapshot every
// subsequent ledger operation supersedes.
func (s *Service) CreateUser(ctx context.Context, params store.CreateUserParams) (*models.User, error) {
	zap.L().Info("Creating user",
		zap.String("id", params.UserId),
		zap.String("name", params.Name),
		zap.String("email", params.Email))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, queryInsertUser, params.UserId, params.Name, params.Email, params.Phone, now, now)
	if err != nil {
		zap.L().Error("Failed to insert user", zap.String("email", params.Email), zap.Error(err))
		return nil, storageErr("unable to insert user", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, storageErr("unable to get rows affected", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: user with email %s already exists", store.ErrDuplicate, params.Email)
	}

	_, err = tx.ExecContext(ctx, queryInsertSnapshot, uuid.New().String(), params.UserId, "0", "0", "0", "", now)
	if err != nil {
		return nil, storageErr("unable to seed balance snapshot", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("unable to commit user", err)
	}

	zap.L().Info("User created successfully",
		zap.String("id", params.UserId),
		zap.String("name", params.Name),
		zap.String("email", params.Email))

	return s.GetUserById(ctx, params.UserId)
}

func (s *Service) CreateBankAccount(ctx context.Context, params store.CreateBankAccountParams) (*models.BankAccount, error) {
	zap.L().Info("Creating bank account",
		zap.String("user_id", params.UserId),
		zap.String("bank_name", params.BankName))

	id := uuid.New().String()
	result, err := s.db.ExecContext(ctx, queryInsertBankAccount,
		id, params.UserId, params.BankName, params.BankCode, params.AccountNumber, params.AccountName, time.Now().UTC())
	if err != nil {
		if isConstraintError(err) {
			return nil, fmt.Errorf("%w: user %s: %v", store.ErrNotFound, params.UserId, err)
		}
		return nil, storageErr("unable to insert bank account", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, storageErr("unable to get rows affected", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: account %s already registered for user %s",
			store.ErrDuplicate, params.AccountNumber, params.UserId)
	}

	return s.GetBankAccount(ctx, id)
}

func (s *Service) GetBankAccount(ctx context.Context, bankAccountId string) (*models.BankAccount, error) {
	var account models.BankAccount
	err := s.db.QueryRowContext(ctx, queryGetBankAccount, bankAccountId).Scan(
		&account.Id, &account.UserId, &account.BankName, &account.BankCode,
		&account.AccountNumber, &account.AccountName, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: bank account %s", store.ErrNotFound, bankAccountId)
		}
		return nil, storageErr("unable to query bank account", err)
	}
	return &account, nil
}
