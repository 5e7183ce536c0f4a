package api

import (
	"context"
	"fmt"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterUser creates a user with an empty wallet.
func (s *LedgerService) RegisterUser(ctx context.Context, name, email, phone string) (*models.User, error) {
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ledger.ErrValidation)
	}

	user, err := s.store.CreateUser(ctx, store.CreateUserParams{
		UserId: uuid.New().String(),
		Name:   name,
		Email:  email,
		Phone:  phone,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("User registered", zap.String("user_id", user.Id), zap.String("email", user.Email))
	return user, nil
}

// AddBankAccount stores a payout destination for withdrawals.
func (s *LedgerService) AddBankAccount(ctx context.Context, params store.CreateBankAccountParams) (*models.BankAccount, error) {
	if params.UserId == "" || params.BankName == "" || params.AccountNumber == "" || params.AccountName == "" {
		return nil, fmt.Errorf("%w: user_id, bank_name, account_number and account_name are required", ledger.ErrValidation)
	}
	return s.store.CreateBankAccount(ctx, params)
}
