package api

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"wallet-ledger-go/internal/database"
	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/notify"
	"wallet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	withdrawalServiceId = "svc-withdrawal"
	tradeServiceId      = "svc-trade-btc"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.err
}

func (n *recordingNotifier) sent() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.messages...)
}

type recordingMirror struct {
	mu     sync.Mutex
	events []models.LedgerEvent
}

func (m *recordingMirror) Record(_ context.Context, event models.LedgerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *recordingMirror) types() []models.LedgerEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	var types []models.LedgerEventType
	for _, e := range m.events {
		types = append(types, e.Type)
	}
	return types
}

type fixture struct {
	svc      *LedgerService
	db       *database.Service
	notifier *recordingNotifier
	mirror   *recordingMirror
	user     *models.User
	account  *models.BankAccount
}

func setupLedgerService(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewService(ctx, models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
	})
	require.NoError(t, err)

	require.NoError(t, db.UpsertService(ctx, models.Service{
		Id: withdrawalServiceId, Name: "Withdrawal", Kind: models.ServiceKindWithdrawal, Asset: "NGN",
	}))
	require.NoError(t, db.UpsertService(ctx, models.Service{
		Id: tradeServiceId, Name: "Trade Bitcoin", Kind: models.ServiceKindTrade, Asset: "Bitcoin",
	}))

	f := &fixture{
		db:       db,
		notifier: &recordingNotifier{},
		mirror:   &recordingMirror{},
	}
	f.svc = NewLedgerService(db, models.LedgerConfig{MaxAttempts: 3, Currency: "NGN"}, f.notifier, f.mirror)

	f.user, err = f.svc.RegisterUser(ctx, "Ada Obi", "ada@example.com", "+2348011111111")
	require.NoError(t, err)
	f.account, err = f.svc.AddBankAccount(ctx, store.CreateBankAccountParams{
		UserId:        f.user.Id,
		BankName:      "First Bank",
		BankCode:      "011",
		AccountNumber: "3012345678",
		AccountName:   "Ada Obi",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		f.svc.Wait()
		db.Close()
	})
	return f
}

// fund credits the user through a confirmed trade order.
func (f *fixture) fund(t *testing.T, amount string) *models.TransactionSummary {
	t.Helper()
	ctx := context.Background()

	order, err := f.svc.SubmitTradeOrder(ctx, TradeOrderRequest{
		UserId:          f.user.Id,
		ServiceId:       tradeServiceId,
		Amount:          decimal.RequireFromString(amount),
		AmountSubmitted: decimal.NewFromInt(10),
		Rate:            decimal.NewFromInt(1450),
	})
	require.NoError(t, err)

	settled, err := f.svc.SettleTransaction(ctx, SettleRequest{
		TransactionId: order.Id,
		Decision:      ledger.DecisionSuccess,
		SettledBy:     "admin1",
	})
	require.NoError(t, err)
	return settled
}

func (f *fixture) withdraw(amount string) (*models.TransactionSummary, error) {
	return f.svc.RequestWithdrawal(context.Background(), WithdrawalRequest{
		UserId:        f.user.Id,
		ServiceId:     withdrawalServiceId,
		BankAccountId: f.account.Id,
		Amount:        decimal.RequireFromString(amount),
	})
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	b, err := f.svc.GetBalance(context.Background(), f.user.Id)
	require.NoError(t, err)
	return b.Current
}

func (f *fixture) assertConsistent(t *testing.T) {
	t.Helper()
	discrepancies, err := f.db.ReconcileUserBalance(context.Background(), f.user.Id)
	require.NoError(t, err)
	assert.Empty(t, discrepancies)
}

func TestHealthCheck(t *testing.T) {
	f := setupLedgerService(t)
	assert.NoError(t, f.svc.HealthCheck(context.Background()))
}

func TestEndToEndScenario(t *testing.T) {
	f := setupLedgerService(t)
	ctx := context.Background()

	funded := f.fund(t, "100")
	assert.Equal(t, models.TransactionStatusSuccess, funded.Status)
	assert.True(t, funded.Balance.Equal(decimal.NewFromInt(100)))

	w, err := f.withdraw("30")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, w.Status)
	assert.Equal(t, models.TransactionTypeDebit, w.Type)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(70)))

	b, err := f.svc.GetBalance(ctx, f.user.Id)
	require.NoError(t, err)
	assert.True(t, b.Previous.Equal(decimal.NewFromInt(100)))
	assert.True(t, b.Book.Equal(decimal.NewFromInt(30)))

	paid, err := f.svc.SettleTransaction(ctx, SettleRequest{TransactionId: w.Id, Decision: ledger.DecisionSuccess, SettledBy: "admin1"})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusSuccess, paid.Status)
	assert.True(t, f.balance(t).Equal(decimal.NewFromInt(70)))

	declined, err := f.svc.SubmitTradeOrder(ctx, TradeOrderRequest{
		UserId: f.user.Id, ServiceId: tradeServiceId, Amount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	_, err = f.svc.SettleTransaction(ctx, SettleRequest{TransactionId: declined.Id, Decision: ledger.DecisionFailed, SettledBy: "admin1"})
	require.NoError(t, err)
	assert.True(t, f.balance(t).Equal(decimal.NewFromInt(70)))

	history, err := f.svc.GetTransactionHistory(ctx, f.user.Id, 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.TransactionStatusFailed, history[0].Status)

	snapshots, err := f.svc.GetBalanceHistory(ctx, f.user.Id, 0, 0)
	require.NoError(t, err)
	assert.Len(t, snapshots, 3, "seed, trade credit, withdrawal debit")

	f.assertConsistent(t)

	f.svc.Wait()
	assert.ElementsMatch(t, []models.LedgerEventType{
		models.LedgerEventTradeCredited,
		models.LedgerEventWithdrawalReserved,
		models.LedgerEventWithdrawalPaid,
	}, f.mirror.types())

	logs, err := f.db.GetAuditLogs(ctx, f.user.Id, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 3, "two trade orders and one withdrawal")
}

func TestSubmitTradeOrder_DoesNotTouchBalance(t *testing.T) {
	f := setupLedgerService(t)

	order, err := f.svc.SubmitTradeOrder(context.Background(), TradeOrderRequest{
		UserId:          f.user.Id,
		ServiceId:       tradeServiceId,
		Amount:          decimal.NewFromInt(72500),
		AmountSubmitted: decimal.NewFromInt(50),
		Rate:            decimal.NewFromInt(1450),
		ImageUrl:        "https://example.com/receipt.png",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypeCredit, order.Type)
	assert.True(t, order.Balance.IsZero())

	tx, err := f.svc.GetTransaction(context.Background(), order.Id)
	require.NoError(t, err)
	assert.Equal(t, "$50 bitcoin sold at 1450/$", tx.Narration)
	assert.Empty(t, tx.BalanceId)
	assert.True(t, f.balance(t).IsZero())
}

func TestRequestWithdrawal_InsufficientFundsWritesNothing(t *testing.T) {
	f := setupLedgerService(t)
	f.fund(t, "50")

	before, err := f.svc.GetBalanceHistory(context.Background(), f.user.Id, 100, 0)
	require.NoError(t, err)

	_, err = f.withdraw("50.01")
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	after, err := f.svc.GetBalanceHistory(context.Background(), f.user.Id, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))

	history, err := f.svc.GetTransactionHistory(context.Background(), f.user.Id, 100, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1, "only the funding trade")
}

func TestRequestWithdrawal_ExactBalance(t *testing.T) {
	f := setupLedgerService(t)
	f.fund(t, "80.25")

	w, err := f.withdraw("80.25")
	require.NoError(t, err)
	assert.True(t, w.Balance.IsZero())

	_, err = f.withdraw("0.01")
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	f.assertConsistent(t)
}

func TestRequestWithdrawal_Validation(t *testing.T) {
	f := setupLedgerService(t)
	f.fund(t, "100")
	ctx := context.Background()

	other, err := f.svc.RegisterUser(ctx, "Bola", "bola@example.com", "")
	require.NoError(t, err)
	otherAccount, err := f.svc.AddBankAccount(ctx, store.CreateBankAccountParams{
		UserId: other.Id, BankName: "GTBank", AccountNumber: "0001112223", AccountName: "Bola",
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  WithdrawalRequest
		want error
	}{
		{"zero amount", WithdrawalRequest{UserId: f.user.Id, ServiceId: withdrawalServiceId, BankAccountId: f.account.Id, Amount: decimal.Zero}, ledger.ErrValidation},
		{"negative amount", WithdrawalRequest{UserId: f.user.Id, ServiceId: withdrawalServiceId, BankAccountId: f.account.Id, Amount: decimal.NewFromInt(-5)}, ledger.ErrValidation},
		{"trade service", WithdrawalRequest{UserId: f.user.Id, ServiceId: tradeServiceId, BankAccountId: f.account.Id, Amount: decimal.NewFromInt(5)}, ledger.ErrValidation},
		{"unknown service", WithdrawalRequest{UserId: f.user.Id, ServiceId: "nope", BankAccountId: f.account.Id, Amount: decimal.NewFromInt(5)}, ledger.ErrValidation},
		{"foreign bank account", WithdrawalRequest{UserId: f.user.Id, ServiceId: withdrawalServiceId, BankAccountId: otherAccount.Id, Amount: decimal.NewFromInt(5)}, ledger.ErrValidation},
		{"unknown user", WithdrawalRequest{UserId: "ghost", ServiceId: withdrawalServiceId, BankAccountId: f.account.Id, Amount: decimal.NewFromInt(5)}, store.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RequestWithdrawal(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.True(t, f.balance(t).Equal(decimal.NewFromInt(100)))
}

func TestConcurrentWithdrawals_OnlyOneFits(t *testing.T) {
	f := setupLedgerService(t)
	f.fund(t, "100")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.withdraw("80")
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ledger.ErrInsufficientFunds):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.True(t, f.balance(t).Equal(decimal.NewFromInt(20)))
	f.assertConsistent(t)
}

func TestConcurrentTradeSettlements(t *testing.T) {
	f := setupLedgerService(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		order, err := f.svc.SubmitTradeOrder(ctx, TradeOrderRequest{
			UserId: f.user.Id, ServiceId: tradeServiceId, Amount: decimal.NewFromInt(10),
		})
		require.NoError(t, err)
		ids = append(ids, order.Id)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.svc.SettleTransaction(ctx, SettleRequest{TransactionId: id, Decision: ledger.DecisionSuccess, SettledBy: "admin1"})
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.True(t, f.balance(t).Equal(decimal.NewFromInt(50)))
	f.assertConsistent(t)
}

func TestSettleTransaction_OnlyOnce(t *testing.T) {
	f := setupLedgerService(t)
	ctx := context.Background()

	order, err := f.svc.SubmitTradeOrder(ctx, TradeOrderRequest{
		UserId: f.user.Id, ServiceId: tradeServiceId, Amount: decimal.NewFromInt(40),
	})
	require.NoError(t, err)

	_, err = f.svc.SettleTransaction(ctx, SettleRequest{TransactionId: order.Id, Decision: ledger.DecisionSuccess, SettledBy: "admin1"})
	require.NoError(t, err)

	for _, decision := range []ledger.Decision{ledger.DecisionSuccess, ledger.DecisionFailed} {
		_, err = f.svc.SettleTransaction(ctx, SettleRequest{TransactionId: order.Id, Decision: decision, SettledBy: "admin2"})
		assert.ErrorIs(t, err, store.ErrTransactionNotPending)
	}
	assert.True(t, f.balance(t).Equal(decimal.NewFromInt(40)), "credited exactly once")

	_, err = f.svc.SettleTransaction(ctx, SettleRequest{TransactionId: "missing", Decision: ledger.DecisionSuccess, SettledBy: "admin1"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFailedWithdrawal_RefundsReservedAmount(t *testing.T) {
	f := setupLedgerService(t)
	ctx := context.Background()
	f.fund(t, "100")

	w, err := f.withdraw("80")
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(20)))

	refunded, err := f.svc.SettleTransaction(ctx, SettleRequest{TransactionId: w.Id, Decision: ledger.DecisionFailed, SettledBy: "admin1"})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, refunded.Status)
	assert.True(t, refunded.Balance.Equal(decimal.NewFromInt(100)))

	snapshots, err := f.svc.GetBalanceHistory(ctx, f.user.Id, 1, 0)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, ledger.ReversalReference(w.Reference), snapshots[0].Reference)
	assert.True(t, snapshots[0].Previous.Equal(decimal.NewFromInt(20)))

	tx, err := f.svc.GetTransaction(ctx, w.Id)
	require.NoError(t, err)
	assert.NotEqual(t, snapshots[0].Id, tx.BalanceId, "withdrawal keeps pointing at its debit snapshot")

	f.assertConsistent(t)

	f.svc.Wait()
	var refundNotice *notify.Message
	for _, msg := range f.notifier.sent() {
		if strings.Contains(msg.Text, "declined") {
			refundNotice = &msg
		}
	}
	require.NotNil(t, refundNotice)
	assert.Contains(t, refundNotice.Text, "NGN 80.00")
	assert.Equal(t, f.user.Phone, refundNotice.Phone)
}

func TestFailingNotifierDoesNotRollBack(t *testing.T) {
	f := setupLedgerService(t)
	f.notifier.err = errors.New("gateway down")

	settled := f.fund(t, "25")
	assert.Equal(t, models.TransactionStatusSuccess, settled.Status)

	f.svc.Wait()
	assert.Len(t, f.notifier.sent(), 1)
	assert.True(t, f.balance(t).Equal(decimal.NewFromInt(25)))
}

// conflictingStore fails the first settlements or withdrawal reservations
// with err, ErrSnapshotConflict when unset.
type conflictingStore struct {
	store.LedgerStore
	mu        sync.Mutex
	conflicts int
	calls     int
	err       error
}

func (c *conflictingStore) fail() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.conflicts == 0 {
		return nil
	}
	c.conflicts--
	if c.err != nil {
		return c.err
	}
	return store.ErrSnapshotConflict
}

func (c *conflictingStore) Settle(ctx context.Context, params store.SettleParams) (*models.Transaction, error) {
	if err := c.fail(); err != nil {
		return nil, err
	}
	return c.LedgerStore.Settle(ctx, params)
}

func (c *conflictingStore) ReserveWithdrawal(ctx context.Context, params store.ReserveWithdrawalParams) (*models.Transaction, *models.BalanceSnapshot, error) {
	if err := c.fail(); err != nil {
		return nil, nil, err
	}
	return c.LedgerStore.ReserveWithdrawal(ctx, params)
}

func TestSettleTransaction_RetriesConflicts(t *testing.T) {
	f := setupLedgerService(t)
	ctx := context.Background()

	order, err := f.svc.SubmitTradeOrder(ctx, TradeOrderRequest{
		UserId: f.user.Id, ServiceId: tradeServiceId, Amount: decimal.NewFromInt(15),
	})
	require.NoError(t, err)

	flaky := &conflictingStore{LedgerStore: f.db, conflicts: 2}
	svc := NewLedgerService(flaky, models.LedgerConfig{MaxAttempts: 3}, f.notifier, nil)

	settled, err := svc.SettleTransaction(ctx, SettleRequest{TransactionId: order.Id, Decision: ledger.DecisionSuccess, SettledBy: "admin1"})
	require.NoError(t, err)
	svc.Wait()
	assert.Equal(t, 3, flaky.calls)
	assert.True(t, settled.Balance.Equal(decimal.NewFromInt(15)))
}

func TestSettleTransaction_GivesUpAfterMaxAttempts(t *testing.T) {
	f := setupLedgerService(t)
	ctx := context.Background()

	order, err := f.svc.SubmitTradeOrder(ctx, TradeOrderRequest{
		UserId: f.user.Id, ServiceId: tradeServiceId, Amount: decimal.NewFromInt(15),
	})
	require.NoError(t, err)

	flaky := &conflictingStore{LedgerStore: f.db, conflicts: 10}
	svc := NewLedgerService(flaky, models.LedgerConfig{MaxAttempts: 2}, nil, nil)

	_, err = svc.SettleTransaction(ctx, SettleRequest{TransactionId: order.Id, Decision: ledger.DecisionSuccess, SettledBy: "admin1"})
	assert.ErrorIs(t, err, store.ErrSnapshotConflict)
	assert.Equal(t, 2, flaky.calls)

	tx, err := f.svc.GetTransaction(ctx, order.Id)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, tx.Status)
	assert.True(t, f.balance(t).IsZero())
}

func TestRequestWithdrawal_RetriesConflicts(t *testing.T) {
	for name, conflictErr := range map[string]error{
		"snapshot conflict":   store.ErrSnapshotConflict,
		"duplicate reference": store.ErrDuplicate,
	} {
		t.Run(name, func(t *testing.T) {
			f := setupLedgerService(t)
			f.fund(t, "100")

			flaky := &conflictingStore{LedgerStore: f.db, conflicts: 2, err: conflictErr}
			svc := NewLedgerService(flaky, models.LedgerConfig{MaxAttempts: 3}, f.notifier, nil)

			summary, err := svc.RequestWithdrawal(context.Background(), WithdrawalRequest{
				UserId:        f.user.Id,
				ServiceId:     withdrawalServiceId,
				BankAccountId: f.account.Id,
				Amount:        decimal.NewFromInt(30),
			})
			require.NoError(t, err)
			svc.Wait()

			assert.Equal(t, 3, flaky.calls)
			assert.Equal(t, models.TransactionStatusPending, summary.Status)
			assert.True(t, summary.Balance.Equal(decimal.NewFromInt(70)))
			f.assertConsistent(t)
		})
	}
}

func TestRequestWithdrawal_GivesUpAfterMaxAttempts(t *testing.T) {
	f := setupLedgerService(t)
	f.fund(t, "100")
	ctx := context.Background()

	flaky := &conflictingStore{LedgerStore: f.db, conflicts: 10}
	svc := NewLedgerService(flaky, models.LedgerConfig{MaxAttempts: 2}, nil, nil)

	_, err := svc.RequestWithdrawal(ctx, WithdrawalRequest{
		UserId:        f.user.Id,
		ServiceId:     withdrawalServiceId,
		BankAccountId: f.account.Id,
		Amount:        decimal.NewFromInt(30),
	})
	assert.ErrorIs(t, err, store.ErrSnapshotConflict)
	assert.ErrorContains(t, err, "gave up after 2 attempts")
	assert.Equal(t, 2, flaky.calls)

	assert.True(t, f.balance(t).Equal(decimal.NewFromInt(100)))
	pending, err := f.svc.ListPendingTransactions(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
	f.assertConsistent(t)
}

// TestConcurrentWithdrawals_SharedDatabase runs two ledger services, each
// with its own connection pool, against one database file. Their in-process
// user locks do not see each other, so only the snapshot swap keeps the
// balance from going negative.
func TestConcurrentWithdrawals_SharedDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wallet.db")

	open := func() *database.Service {
		db, err := database.NewService(ctx, models.DatabaseConfig{
			Path:         path,
			MaxOpenConns: 4,
			MaxIdleConns: 4,
			PingTimeout:  time.Second,
			BusyTimeout:  10 * time.Second,
		})
		require.NoError(t, err)
		return db
	}
	dbA, dbB := open(), open()

	require.NoError(t, dbA.UpsertService(ctx, models.Service{
		Id: withdrawalServiceId, Name: "Withdrawal", Kind: models.ServiceKindWithdrawal, Asset: "NGN",
	}))
	require.NoError(t, dbA.UpsertService(ctx, models.Service{
		Id: tradeServiceId, Name: "Trade Bitcoin", Kind: models.ServiceKindTrade, Asset: "Bitcoin",
	}))

	cfg := models.LedgerConfig{MaxAttempts: 3, Currency: "NGN"}
	f := &fixture{db: dbA, notifier: &recordingNotifier{}, mirror: &recordingMirror{}}
	f.svc = NewLedgerService(dbA, cfg, f.notifier, f.mirror)
	other := NewLedgerService(dbB, cfg, nil, nil)
	t.Cleanup(func() {
		f.svc.Wait()
		other.Wait()
		dbA.Close()
		dbB.Close()
	})

	var err error
	f.user, err = f.svc.RegisterUser(ctx, "Ada Obi", "ada@example.com", "+2348011111111")
	require.NoError(t, err)
	f.account, err = f.svc.AddBankAccount(ctx, store.CreateBankAccountParams{
		UserId:        f.user.Id,
		BankName:      "First Bank",
		BankCode:      "011",
		AccountNumber: "3012345678",
		AccountName:   "Ada Obi",
	})
	require.NoError(t, err)

	services := []*LedgerService{f.svc, other}
	for round := 0; round < 10; round++ {
		// Top up to exactly 100 so only one 80 withdrawal fits.
		f.fund(t, decimal.NewFromInt(100).Sub(f.balance(t)).String())

		var wg sync.WaitGroup
		errs := make([]error, 4)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = services[i%2].RequestWithdrawal(ctx, WithdrawalRequest{
					UserId:        f.user.Id,
					ServiceId:     withdrawalServiceId,
					BankAccountId: f.account.Id,
					Amount:        decimal.NewFromInt(80),
				})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, ledger.ErrInsufficientFunds, "round %d", round)
		}
		require.Equal(t, 1, succeeded, "round %d", round)
		require.True(t, f.balance(t).Equal(decimal.NewFromInt(20)), "round %d", round)
	}
	f.assertConsistent(t)
}

func TestPagination(t *testing.T) {
	limit, offset := pageBounds(0, -3)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, _ = pageBounds(500, 0)
	assert.Equal(t, 20, limit)

	limit, offset = pageBounds(50, 10)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 10, offset)
}

func TestRequestMetaReachesAuditLog(t *testing.T) {
	f := setupLedgerService(t)
	f.fund(t, "10")
	f.svc.Wait()

	ctx := models.WithRequestMeta(context.Background(), models.RequestMeta{
		Channel: "web", Url: "/api/withdraw", Device: "Mozilla/5.0", IpAddress: "10.0.0.7",
	})
	_, err := f.svc.RequestWithdrawal(ctx, WithdrawalRequest{
		UserId: f.user.Id, ServiceId: withdrawalServiceId, BankAccountId: f.account.Id, Amount: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	f.svc.Wait()

	logs, err := f.db.GetAuditLogs(context.Background(), f.user.Id, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "initiateWithdrawal", logs[0].Action)
	assert.Equal(t, "10.0.0.7", logs[0].IpAddress)
	assert.Equal(t, "/api/withdraw", logs[0].Url)
	assert.Contains(t, logs[0].Request, `"amount":"5"`)
}

func TestScenario_TradeWithdrawDecline(t *testing.T) {
	f := setupLedgerService(t)
	ctx := context.Background()

	f.fund(t, "50")
	b, err := f.svc.GetBalance(ctx, f.user.Id)
	require.NoError(t, err)
	assert.True(t, b.Current.Equal(decimal.NewFromInt(50)))
	assert.True(t, b.Previous.IsZero())

	w, err := f.withdraw("50")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, w.Status)
	assert.True(t, f.balance(t).IsZero())

	_, err = f.svc.SettleTransaction(ctx, SettleRequest{TransactionId: w.Id, Decision: ledger.DecisionFailed, SettledBy: "admin1"})
	require.NoError(t, err)
	assert.True(t, f.balance(t).Equal(decimal.NewFromInt(50)))

	_, err = f.withdraw("150")
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	f.assertConsistent(t)
}
