package formance

import (
	"context"
	"fmt"

	"wallet-ledger-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Numscript templates. Metadata is set inside the script via set_tx_meta() so
// each Formance transaction describes itself.
// ---------------------------------------------------------------------------

const numscriptWithdrawalReserved = `vars {
  asset $asset
  number $amount
  account $user_id
  string $transaction_id
  string $reference
}

send [$asset $amount] (
  source = @users:$user_id allowing unbounded overdraft
  destination = @platform:withdrawals:pending
)

set_tx_meta("event_type", "withdrawal_reserved")
set_tx_meta("transaction_id", $transaction_id)
set_tx_meta("reference", $reference)
`

const numscriptWithdrawalPaid = `vars {
  asset $asset
  number $amount
  account $user_id
  string $transaction_id
  string $reference
}

send [$asset $amount] (
  source = @platform:withdrawals:pending allowing unbounded overdraft
  destination = @platform:withdrawals:paid
)

set_tx_meta("event_type", "withdrawal_paid")
set_tx_meta("user_id", $user_id)
set_tx_meta("transaction_id", $transaction_id)
set_tx_meta("reference", $reference)
`

const numscriptWithdrawalRefunded = `vars {
  asset $asset
  number $amount
  account $user_id
  string $transaction_id
  string $reference
}

send [$asset $amount] (
  source = @platform:withdrawals:pending allowing unbounded overdraft
  destination = @users:$user_id
)

set_tx_meta("event_type", "withdrawal_refunded")
set_tx_meta("transaction_id", $transaction_id)
set_tx_meta("reference", $reference)
`

const numscriptTradeCredited = `vars {
  asset $asset
  number $amount
  account $user_id
  account $service_id
  string $transaction_id
  string $reference
}

send [$asset $amount] (
  source = @platform:trades:$service_id allowing unbounded overdraft
  destination = @users:$user_id
)

set_tx_meta("event_type", "trade_credited")
set_tx_meta("transaction_id", $transaction_id)
set_tx_meta("reference", $reference)
`

var eventScripts = map[models.LedgerEventType]string{
	models.LedgerEventWithdrawalReserved: numscriptWithdrawalReserved,
	models.LedgerEventWithdrawalPaid:     numscriptWithdrawalPaid,
	models.LedgerEventWithdrawalRefunded: numscriptWithdrawalRefunded,
	models.LedgerEventTradeCredited:      numscriptTradeCredited,
}

// eventReference is the Formance idempotency reference. Replaying the same
// event is a conflict the mirror treats as success.
func eventReference(event models.LedgerEvent) string {
	return fmt.Sprintf("%s:%s", event.Reference, event.Type)
}

func (s *Service) buildPostTransaction(event models.LedgerEvent) (shared.V2PostTransaction, error) {
	script, ok := eventScripts[event.Type]
	if !ok {
		return shared.V2PostTransaction{}, fmt.Errorf("unsupported ledger event type: %s", event.Type)
	}

	minor := event.Amount.Shift(int32(precisionFor(s.currency)))
	if !minor.IsInteger() {
		return shared.V2PostTransaction{}, fmt.Errorf("amount %s exceeds %s precision", event.Amount.String(), s.currency)
	}

	vars := map[string]string{
		"asset":          formanceAsset(s.currency),
		"amount":         minor.BigInt().String(),
		"user_id":        event.UserId,
		"transaction_id": event.TransactionId,
		"reference":      event.Reference,
	}
	if event.Type == models.LedgerEventTradeCredited {
		vars["service_id"] = event.ServiceId
	}

	return shared.V2PostTransaction{
		Reference: strPtr(eventReference(event)),
		Script: &shared.V2PostTransactionScript{
			Plain: script,
			Vars:  vars,
		},
	}, nil
}

// Record posts one committed ledger event to Formance.
func (s *Service) Record(ctx context.Context, event models.LedgerEvent) error {
	postTx, err := s.buildPostTransaction(event)
	if err != nil {
		return err
	}

	_, err = s.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            s.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		if isConflictError(err) {
			return nil // idempotent
		}
		return fmt.Errorf("error recording %s in formance: %w", event.Type, err)
	}

	zap.L().Info("Ledger event mirrored to Formance",
		zap.String("event_type", string(event.Type)),
		zap.String("user_id", event.UserId),
		zap.String("reference", event.Reference),
		zap.String("amount", event.Amount.String()))
	return nil
}
