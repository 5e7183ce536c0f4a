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

package common

import (
	"context"
	"fmt"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"go.uber.org/zap"
)

// ResolveUsers returns the user with the given email, or every user when
// emailFilter is empty.
func ResolveUsers(ctx context.Context, st store.LedgerStore, emailFilter string) ([]models.User, error) {
	if emailFilter != "" {
		zap.L().Info("Looking up user by email", zap.String("email", emailFilter))
		user, err := st.GetUserByEmail(ctx, emailFilter)
		if err != nil {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return []models.User{*user}, nil
	}

	users, err := st.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	zap.L().Info("Resolved users", zap.Int("count", len(users)))
	return users, nil
}

// ResolveUser accepts either a user id or an email address.
func ResolveUser(ctx context.Context, st store.LedgerStore, idOrEmail string) (*models.User, error) {
	if idOrEmail == "" {
		return nil, fmt.Errorf("a user id or email is required")
	}
	if user, err := st.GetUserById(ctx, idOrEmail); err == nil {
		return user, nil
	}
	user, err := st.GetUserByEmail(ctx, idOrEmail)
	if err != nil {
		return nil, fmt.Errorf("user %s not found: %w", idOrEmail, err)
	}
	return user, nil
}
