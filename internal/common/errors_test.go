package common

import (
	"errors"
	"fmt"
	"testing"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/store"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "Insufficient balance", UserMessage(fmt.Errorf("debit: %w", ledger.ErrInsufficientFunds)))
	assert.Equal(t, "Transaction has already been settled", UserMessage(store.ErrTransactionNotPending))
	assert.Equal(t, "The wallet is busy, please try again", UserMessage(fmt.Errorf("gave up: %w", store.ErrSnapshotConflict)))
	assert.Contains(t, UserMessage(fmt.Errorf("%w: amount must be positive", ledger.ErrValidation)), "amount must be positive")
	assert.Equal(t, "Something went wrong, please try again later", UserMessage(errors.New("disk I/O error")))
}
