package notify

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Message is one SMS addressed to a user.
type Message struct {
	UserId string
	Phone  string
	Text   string
}

// Notifier delivers user notifications. Delivery is best-effort: callers log
// failures and never undo ledger state because of them.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

const (
	tradeConfirmedText      = "Your trade has been successfully confirmed, please refresh your dashboard to view your wallet balance"
	withdrawalConfirmedText = "Your withdrawal request has been successfully confirmed"
)

func TradeConfirmed(userId, phone string) Message {
	return Message{UserId: userId, Phone: phone, Text: tradeConfirmedText}
}

func WithdrawalConfirmed(userId, phone string) Message {
	return Message{UserId: userId, Phone: phone, Text: withdrawalConfirmedText}
}

// WithdrawalRefunded tells the user a declined withdrawal was returned to their wallet.
func WithdrawalRefunded(userId, phone string, amount decimal.Decimal, currency string) Message {
	return Message{
		UserId: userId,
		Phone:  phone,
		Text:   fmt.Sprintf("Your withdrawal request was declined and %s %s has been returned to your wallet", currency, amount.StringFixed(2)),
	}
}

// LogNotifier writes notifications to the log. It is used when no SMS
// gateway is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, msg Message) error {
	zap.L().Info("Notification",
		zap.String("user_id", msg.UserId),
		zap.String("phone", msg.Phone),
		zap.String("text", msg.Text))
	return nil
}
