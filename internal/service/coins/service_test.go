package coins

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/coinledger/internal/model"
	"github.com/talx-hub/coinledger/internal/model/ledger"
	"github.com/talx-hub/coinledger/internal/model/notification"
	"github.com/talx-hub/coinledger/internal/repo"
	"github.com/talx-hub/coinledger/internal/service/coins/mocks"
	"github.com/talx-hub/coinledger/internal/serviceerrs"
)

type stepClock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()

	clock := &stepClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := repo.NewLedgerRepository(repo.NewMemoryBackend(), slog.Default())
	return New(store, slog.Default(), append([]Option{WithClock(clock.Now)}, opts...)...)
}

func purchase(customerID string, amount model.Coins) CreditRequest {
	return CreditRequest{
		CustomerID:  customerID,
		Kind:        ledger.TypePurchase,
		Amount:      amount,
		Description: "order reward",
	}
}

func assertBalanceInvariant(t *testing.T, a ledger.Account) {
	t.Helper()
	assert.Equal(t, a.TotalEarned-a.TotalSpent, a.Balance)
	assert.GreaterOrEqual(t, a.Balance, model.Coins(0))
}

func TestService_scenario(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	res, err := s.Credit(ctx, purchase("c1", 100))
	require.NoError(t, err)
	assert.Equal(t, model.Coins(100), res.Account.Balance)
	assert.Equal(t, model.Coins(100), res.Transaction.BalanceAfter)

	_, err = s.Debit(ctx, DebitRequest{CustomerID: "c1", Amount: 150, OrderID: "o1"})
	require.ErrorIs(t, err, serviceerrs.ErrInsufficientBalance)

	txs, err := s.ListTransactions(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	res, err = s.Debit(ctx, DebitRequest{
		CustomerID:  "c1",
		Amount:      40,
		OrderID:     "o1",
		Description: "Discount on order o1",
	})
	require.NoError(t, err)
	assert.Equal(t, model.Coins(60), res.Account.Balance)
	assert.Equal(t, model.Coins(60), res.Transaction.BalanceAfter)
	assert.Equal(t, ledger.TypeDeduction, res.Transaction.Type)
	require.NotNil(t, res.Transaction.Metadata)
	assert.Equal(t, "o1", res.Transaction.Metadata.OrderID)

	acc, err := s.GetBalance(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, model.Coins(60), acc.Balance)
	assert.Equal(t, model.Coins(100), acc.TotalEarned)
	assert.Equal(t, model.Coins(40), acc.TotalSpent)
	assertBalanceInvariant(t, acc)
}

func TestService_GetBalance(t *testing.T) {
	ctx := context.Background()
	backend := repo.NewMemoryBackend()
	s := New(repo.NewLedgerRepository(backend, slog.Default()), slog.Default())

	t.Run("unknown customer", func(t *testing.T) {
		acc, err := s.GetBalance(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, ledger.Account{CustomerID: "nobody"}, acc)

		_, version, err := backend.Read(ctx, repo.DocumentLedger)
		require.NoError(t, err)
		assert.Equal(t, int64(0), version, "reading a balance must not persist anything")
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := s.GetBalance(ctx, "")
		require.ErrorIs(t, err, serviceerrs.ErrMissingCustomerID)
	})

	t.Run("repeated reads", func(t *testing.T) {
		_, err := s.Credit(ctx, purchase("c2", 30))
		require.NoError(t, err)

		first, err := s.GetBalance(ctx, "c2")
		require.NoError(t, err)
		second, err := s.GetBalance(ctx, "c2")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestService_Credit_validation(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		req     CreditRequest
	}{
		{
			name:    "zero amount",
			req:     CreditRequest{CustomerID: "c1", Kind: ledger.TypeGift, Amount: 0},
			wantErr: serviceerrs.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			req:     CreditRequest{CustomerID: "c1", Kind: ledger.TypeGift, Amount: -5},
			wantErr: serviceerrs.ErrInvalidAmount,
		},
		{
			name:    "amount above limit",
			req:     CreditRequest{CustomerID: "c1", Kind: ledger.TypeGift, Amount: model.MaxCoins + 1},
			wantErr: serviceerrs.ErrInvalidAmount,
		},
		{
			name:    "deduction is not a credit",
			req:     CreditRequest{CustomerID: "c1", Kind: ledger.TypeDeduction, Amount: 10},
			wantErr: serviceerrs.ErrInvalidKind,
		},
		{
			name:    "unknown kind",
			req:     CreditRequest{CustomerID: "c1", Kind: "bonus", Amount: 10},
			wantErr: serviceerrs.ErrInvalidKind,
		},
		{
			name:    "missing customer",
			req:     CreditRequest{Kind: ledger.TypeRefund, Amount: 10},
			wantErr: serviceerrs.ErrMissingCustomerID,
		},
	}

	ctx := context.Background()
	s := newTestService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Credit(ctx, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, serviceerrs.IsValidation(err))
		})
	}

	acc, err := s.GetBalance(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, model.Coins(0), acc.Balance)
}

func TestService_Credit_overflow(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	_, err := s.Credit(ctx, purchase("c1", model.MaxCoins))
	require.NoError(t, err)
	_, err = s.Credit(ctx, purchase("c1", 1))
	require.ErrorIs(t, err, serviceerrs.ErrInvalidAmount)

	acc, err := s.GetBalance(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, model.MaxCoins, acc.Balance)
}

func TestService_Debit(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown customer", func(t *testing.T) {
		s := newTestService(t)
		_, err := s.Debit(ctx, DebitRequest{CustomerID: "ghost", Amount: 1})
		require.ErrorIs(t, err, serviceerrs.ErrInsufficientBalance)
	})

	t.Run("whole balance", func(t *testing.T) {
		s := newTestService(t)
		_, err := s.Credit(ctx, purchase("c1", 25))
		require.NoError(t, err)

		res, err := s.Debit(ctx, DebitRequest{CustomerID: "c1", Amount: 25})
		require.NoError(t, err)
		assert.Equal(t, model.Coins(0), res.Account.Balance)
		assert.Nil(t, res.Transaction.Metadata)
		assertBalanceInvariant(t, res.Account)
	})

	t.Run("invalid amount", func(t *testing.T) {
		s := newTestService(t)
		_, err := s.Debit(ctx, DebitRequest{CustomerID: "c1", Amount: 0})
		require.ErrorIs(t, err, serviceerrs.ErrInvalidAmount)
	})

	t.Run("failed debit leaves state", func(t *testing.T) {
		s := newTestService(t)
		_, err := s.Credit(ctx, purchase("c1", 10))
		require.NoError(t, err)
		before, err := s.GetBalance(ctx, "c1")
		require.NoError(t, err)

		_, err = s.Debit(ctx, DebitRequest{CustomerID: "c1", Amount: 11})
		require.ErrorIs(t, err, serviceerrs.ErrInsufficientBalance)

		after, err := s.GetBalance(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestService_idempotency(t *testing.T) {
	ctx := context.Background()
	notifier := mocks.NewMockNotifier(t)
	notifier.EXPECT().Notify(mock.Anything, mock.Anything).Return(nil).Once()
	s := newTestService(t, WithNotifier(notifier))

	gift := CreditRequest{
		CustomerID: "c1",
		Kind:       ledger.TypeGift,
		Amount:     50,
		Metadata:   ledger.Metadata{GiftedBy: "admin", IdempotencyKey: "gift-1"},
	}
	first, err := s.Credit(ctx, gift)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := s.Credit(ctx, gift)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Transaction.ID, second.Transaction.ID)
	assert.Equal(t, model.Coins(50), second.Account.Balance)

	debit := DebitRequest{CustomerID: "c1", Amount: 20, OrderID: "o7", IdempotencyKey: "order-o7"}
	_, err = s.Debit(ctx, debit)
	require.NoError(t, err)
	replayed, err := s.Debit(ctx, debit)
	require.NoError(t, err)
	assert.True(t, replayed.Replayed)
	assert.Equal(t, model.Coins(30), replayed.Account.Balance)

	txs, err := s.ListTransactions(ctx, "c1", 0)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestService_idempotencyKeyReuse(t *testing.T) {
	const key = "k"
	reward := CreditRequest{
		CustomerID: "c1",
		Kind:       ledger.TypePurchase,
		Amount:     100,
		Metadata:   ledger.Metadata{IdempotencyKey: key},
	}

	tests := []struct {
		run  func(ctx context.Context, s *Service) (Result, error)
		name string
	}{
		{
			name: "debit with a credit key",
			run: func(ctx context.Context, s *Service) (Result, error) {
				return s.Debit(ctx, DebitRequest{
					CustomerID: "c1", Amount: 40, OrderID: "o1", IdempotencyKey: key,
				})
			},
		},
		{
			name: "credit of another kind",
			run: func(ctx context.Context, s *Service) (Result, error) {
				gift := reward
				gift.Kind = ledger.TypeGift
				return s.Credit(ctx, gift)
			},
		},
		{
			name: "credit of another amount",
			run: func(ctx context.Context, s *Service) (Result, error) {
				more := reward
				more.Amount = 150
				return s.Credit(ctx, more)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := newTestService(t)
			_, err := s.Credit(ctx, reward)
			require.NoError(t, err)

			res, err := tt.run(ctx, s)
			require.ErrorIs(t, err, serviceerrs.ErrIdempotencyKeyReused)
			assert.False(t, res.Replayed)

			account, err := s.GetBalance(ctx, "c1")
			require.NoError(t, err)
			assert.Equal(t, model.Coins(100), account.Balance)
			txs, err := s.ListTransactions(ctx, "c1", 0)
			require.NoError(t, err)
			assert.Len(t, txs, 1)
		})
	}

	t.Run("debit key reused for another order", func(t *testing.T) {
		ctx := context.Background()
		s := newTestService(t)
		_, err := s.Credit(ctx, purchase("c1", 100))
		require.NoError(t, err)

		_, err = s.Debit(ctx, DebitRequest{CustomerID: "c1", Amount: 40, OrderID: "o1", IdempotencyKey: "pay"})
		require.NoError(t, err)
		_, err = s.Debit(ctx, DebitRequest{CustomerID: "c1", Amount: 40, OrderID: "o2", IdempotencyKey: "pay"})
		require.ErrorIs(t, err, serviceerrs.ErrIdempotencyKeyReused)

		account, err := s.GetBalance(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, model.Coins(60), account.Balance)
	})
}

func TestService_giftNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("gift notifies the customer", func(t *testing.T) {
		notifier := mocks.NewMockNotifier(t)
		notifier.EXPECT().
			Notify(mock.Anything, mock.MatchedBy(func(n notification.Notification) bool {
				return n.CustomerID == "c1" &&
					n.CustomerEmail == "c1@example.com" &&
					n.Type == notification.TypeCoinGift &&
					n.Metadata["amount"] == "15" &&
					n.Metadata["giftedBy"] == "support" &&
					n.Metadata["transactionId"] != ""
			})).
			Return(nil).
			Once()

		s := newTestService(t, WithNotifier(notifier))
		_, err := s.Credit(ctx, CreditRequest{
			CustomerID:    "c1",
			CustomerEmail: "c1@example.com",
			Kind:          ledger.TypeGift,
			Amount:        15,
			Metadata:      ledger.Metadata{GiftedBy: "support"},
		})
		require.NoError(t, err)
	})

	t.Run("purchase does not notify", func(t *testing.T) {
		notifier := mocks.NewMockNotifier(t)
		s := newTestService(t, WithNotifier(notifier))
		_, err := s.Credit(ctx, purchase("c1", 15))
		require.NoError(t, err)
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	})

	t.Run("notifier failure keeps the credit", func(t *testing.T) {
		notifier := mocks.NewMockNotifier(t)
		notifier.EXPECT().Notify(mock.Anything, mock.Anything).
			Return(serviceerrs.ErrQueueFull).Once()

		s := newTestService(t, WithNotifier(notifier))
		res, err := s.Credit(ctx, CreditRequest{CustomerID: "c1", Kind: ledger.TypeGift, Amount: 15})
		require.NoError(t, err)
		assert.Equal(t, model.Coins(15), res.Account.Balance)

		acc, err := s.GetBalance(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, model.Coins(15), acc.Balance)
	})
}

func TestService_ListTransactions(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	amounts := []model.Coins{10, 20, 30, 40, 50}
	for _, a := range amounts {
		_, err := s.Credit(ctx, purchase("c1", a))
		require.NoError(t, err)
	}
	_, err := s.Debit(ctx, DebitRequest{CustomerID: "c1", Amount: 5})
	require.NoError(t, err)

	all, err := s.ListTransactions(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, all, 6)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt),
			"transactions must be ordered newest first")
	}
	assert.Equal(t, ledger.TypeDeduction, all[0].Type)
	assert.Equal(t, model.Coins(10), all[len(all)-1].Amount)

	for _, limit := range []int{1, 3, 6, 10} {
		got, err := s.ListTransactions(ctx, "c1", limit)
		require.NoError(t, err)
		want := all[:min(limit, len(all))]
		assert.Equal(t, want, got)
	}

	empty, err := s.ListTransactions(ctx, "nobody", 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = s.ListTransactions(ctx, "c1", -1)
	require.ErrorIs(t, err, serviceerrs.ErrInvalidLimit)
}

func TestService_concurrentCredits(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Credit(ctx, purchase("c1", 5))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	acc, err := s.GetBalance(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, model.Coins(5*workers), acc.Balance)
	assertBalanceInvariant(t, acc)

	txs, err := s.ListTransactions(ctx, "c1", 0)
	require.NoError(t, err)
	assert.Len(t, txs, workers)
}

func TestService_conflictRetry(t *testing.T) {
	ctx := context.Background()
	freshDoc := func(context.Context) (*ledger.Document, error) {
		return ledger.NewDocument(), nil
	}

	t.Run("succeeds after one conflict", func(t *testing.T) {
		store := mocks.NewMockStore(t)
		store.EXPECT().Load(mock.Anything).RunAndReturn(freshDoc).Times(2)
		store.EXPECT().Save(mock.Anything, mock.Anything).
			Return(serviceerrs.ErrVersionConflict).Once()
		store.EXPECT().Save(mock.Anything, mock.Anything).Return(nil).Once()

		s := New(store, slog.Default())
		res, err := s.Credit(ctx, purchase("c1", 7))
		require.NoError(t, err)
		assert.Equal(t, model.Coins(7), res.Account.Balance)
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		store := mocks.NewMockStore(t)
		store.EXPECT().Load(mock.Anything).RunAndReturn(freshDoc).
			Times(model.DefaultConflictAttempts)
		store.EXPECT().Save(mock.Anything, mock.Anything).
			Return(serviceerrs.ErrVersionConflict).
			Times(model.DefaultConflictAttempts)

		s := New(store, slog.Default())
		_, err := s.Credit(ctx, purchase("c1", 7))
		require.ErrorIs(t, err, serviceerrs.ErrVersionConflict)
	})

	t.Run("storage failure is not retried", func(t *testing.T) {
		errDisk := errors.New("disk is full")
		store := mocks.NewMockStore(t)
		store.EXPECT().Load(mock.Anything).RunAndReturn(freshDoc).Times(2)
		store.EXPECT().Save(mock.Anything, mock.Anything).Return(errDisk).Once()

		s := New(store, slog.Default())
		_, err := s.Debit(ctx, DebitRequest{CustomerID: "c1", Amount: 1})
		require.ErrorIs(t, err, serviceerrs.ErrInsufficientBalance)

		_, err = s.Credit(ctx, purchase("c1", 1))
		require.ErrorIs(t, err, errDisk)
	})
}

type recordingObserver struct {
	results []string
	mu      sync.Mutex
}

func (o *recordingObserver) ObserveOperation(operation, result string, _ int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, operation+":"+result)
}

func TestService_observer(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	s := newTestService(t, WithObserver(obs))

	_, _ = s.Credit(ctx, purchase("c1", 0))
	_, _ = s.Credit(ctx, purchase("c1", 10))
	_, _ = s.Debit(ctx, DebitRequest{CustomerID: "c1", Amount: 100})
	req := DebitRequest{CustomerID: "c1", Amount: 5, IdempotencyKey: "k"}
	_, _ = s.Debit(ctx, req)
	_, _ = s.Debit(ctx, req)

	assert.Equal(t, []string{
		"credit:invalid",
		"credit:ok",
		"debit:insufficient_balance",
		"debit:ok",
		"debit:replayed",
	}, obs.results)
}
