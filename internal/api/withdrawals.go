package api

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WithdrawalRequest asks to pay amount out of the user's wallet into one of
// their bank accounts.
type WithdrawalRequest struct {
	UserId        string          `json:"user_id"`
	ServiceId     string          `json:"service_id"`
	BankAccountId string          `json:"bank_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Narration     string          `json:"narration,omitempty"`
}

// RequestWithdrawal reserves the amount immediately: the debit snapshot and
// the pending withdrawal commit together, and an admin settles the payout
// later with SettleTransaction.
func (s *LedgerService) RequestWithdrawal(ctx context.Context, req WithdrawalRequest) (*models.TransactionSummary, error) {
	if req.UserId == "" || req.ServiceId == "" || req.BankAccountId == "" {
		return nil, fmt.Errorf("%w: user_id, service_id and bank_account_id are required", ledger.ErrValidation)
	}
	if err := ledger.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserById(ctx, req.UserId); err != nil {
		return nil, err
	}
	if _, err := s.requireServiceKind(ctx, req.ServiceId, models.ServiceKindWithdrawal); err != nil {
		return nil, err
	}

	account, err := s.store.GetBankAccount(ctx, req.BankAccountId)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown bank account %s", ledger.ErrValidation, req.BankAccountId)
		}
		return nil, err
	}
	if account.UserId != req.UserId {
		return nil, fmt.Errorf("%w: bank account %s does not belong to user %s", ledger.ErrValidation, req.BankAccountId, req.UserId)
	}

	narration := req.Narration
	if narration == "" {
		narration = fmt.Sprintf("Withdrawal to %s %s", account.BankName, account.AccountNumber)
	}

	zap.L().Info("Processing withdrawal request",
		zap.String("user_id", req.UserId),
		zap.String("service_id", req.ServiceId),
		zap.String("amount", req.Amount.String()))

	unlock := s.locks.Lock(req.UserId)
	defer unlock()

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		active, err := s.store.GetActiveSnapshot(ctx, req.UserId)
		if err != nil {
			return nil, err
		}

		fields, err := ledger.ComputeDebit(active, req.Amount)
		if err != nil {
			zap.L().Info("Withdrawal rejected",
				zap.String("user_id", req.UserId),
				zap.String("amount", req.Amount.String()),
				zap.String("current", active.Current.String()))
			return nil, err
		}

		tx, snapshot, err := s.store.ReserveWithdrawal(ctx, store.ReserveWithdrawalParams{
			Supersede: store.SupersedeParams{
				UserId:           req.UserId,
				ExpectedActiveId: active.Id,
				Fields:           fields,
				Reference:        ledger.NewReference(),
			},
			ServiceId:     req.ServiceId,
			BankAccountId: req.BankAccountId,
			Amount:        req.Amount,
			Narration:     narration,
		})
		if errors.Is(err, store.ErrSnapshotConflict) || errors.Is(err, store.ErrDuplicate) {
			lastErr = err
			zap.L().Warn("Withdrawal attempt conflicted, retrying",
				zap.String("user_id", req.UserId),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}

		zap.L().Info("Withdrawal reserved",
			zap.String("transaction_id", tx.Id),
			zap.String("user_id", req.UserId),
			zap.String("reference", tx.Reference),
			zap.String("amount", req.Amount.String()),
			zap.String("new_balance", snapshot.Current.String()))

		s.audit(ctx, req.UserId, "initiateWithdrawal", req)
		s.publish(ctx, models.LedgerEvent{
			Type:          models.LedgerEventWithdrawalReserved,
			UserId:        req.UserId,
			TransactionId: tx.Id,
			Reference:     tx.Reference,
			ServiceId:     tx.ServiceId,
			Amount:        tx.Amount,
		})

		return summarize(tx, snapshot), nil
	}

	return nil, fmt.Errorf("withdrawal for user %s gave up after %d attempts: %w", req.UserId, s.maxAttempts, lastErr)
}

func (s *LedgerService) requireServiceKind(ctx context.Context, serviceId string, kind models.ServiceKind) (*models.Service, error) {
	service, err := s.store.GetService(ctx, serviceId)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown service %s", ledger.ErrValidation, serviceId)
		}
		return nil, err
	}
	if service.Kind != kind {
		return nil, fmt.Errorf("%w: service %s is a %s service, not %s", ledger.ErrValidation, service.Name, service.Kind, kind)
	}
	return service, nil
}
