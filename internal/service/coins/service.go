// Package coins implements the loyalty coin ledger: balances, credits,
// debits and transaction history on top of a whole-document ledger.Store.
package coins

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/talx-hub/coinledger/internal/model"
	"github.com/talx-hub/coinledger/internal/model/ledger"
	"github.com/talx-hub/coinledger/internal/model/notification"
	"github.com/talx-hub/coinledger/internal/serviceerrs"
)

const (
	OperationCredit = "credit"
	OperationDebit  = "debit"

	ResultOK           = "ok"
	ResultReplayed     = "replayed"
	ResultInvalid      = "invalid"
	ResultInsufficient = "insufficient_balance"
	ResultConflict     = "conflict"
	ResultError        = "error"
)

type Notifier interface {
	Notify(ctx context.Context, n notification.Notification) error
}

type Observer interface {
	ObserveOperation(operation, result string, amount int64)
}

type Result struct {
	Account     ledger.Account     `json:"account"`
	Transaction ledger.Transaction `json:"transaction"`
	Replayed    bool               `json:"replayed,omitempty"`
}

type CreditRequest struct {
	Metadata      ledger.Metadata
	CustomerID    string
	CustomerEmail string
	Kind          ledger.TransactionType
	Description   string
	Amount        model.Coins
}

type DebitRequest struct {
	CustomerID     string
	CustomerEmail  string
	Description    string
	OrderID        string
	IdempotencyKey string
	Amount         model.Coins
}

type Service struct {
	store    ledger.Store
	notifier Notifier
	observer Observer
	log      *slog.Logger
	now      func() time.Time
	entropy  io.Reader
	mu       sync.Mutex
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observer = o
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store ledger.Store, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		log:     log.With("service", "coins"),
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetBalance never writes: a customer without an account gets a zero one.
func (s *Service) GetBalance(ctx context.Context, customerID string) (ledger.Account, error) {
	if customerID == "" {
		return ledger.Account{}, serviceerrs.ErrMissingCustomerID
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("failed to load ledger: %w", err)
	}
	e, ok := doc.Entry(customerID)
	if !ok {
		return ledger.Account{CustomerID: customerID}, nil
	}
	return e.Account, nil
}

// ListTransactions returns the newest transactions first. limit == 0 means
// the full history.
func (s *Service) ListTransactions(ctx context.Context,
	customerID string, limit int,
) ([]ledger.Transaction, error) {
	if customerID == "" {
		return nil, serviceerrs.ErrMissingCustomerID
	}
	if limit < 0 {
		return nil, serviceerrs.ErrInvalidLimit
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	e, ok := doc.Entry(customerID)
	if !ok {
		return []ledger.Transaction{}, nil
	}

	txs := slices.Clone(e.Transactions)
	slices.Reverse(txs)
	slices.SortStableFunc(txs, func(a, b ledger.Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

func (s *Service) Credit(ctx context.Context, req CreditRequest) (Result, error) {
	if err := validateCredit(req); err != nil {
		s.observe(OperationCredit, err, 0, false)
		return Result{}, err
	}

	res, err := s.apply(ctx, func(doc *ledger.Document, now time.Time) (Result, bool, error) {
		e := doc.GetOrCreate(req.CustomerID)
		if tx, ok := findByKey(e, req.Metadata.IdempotencyKey); ok {
			if tx.Type != req.Kind || tx.Amount != req.Amount {
				return Result{}, false, keyReused(req.Metadata.IdempotencyKey, tx)
			}
			return Result{Account: e.Account, Transaction: tx, Replayed: true}, false, nil
		}

		balance, err := e.Account.Balance.Add(req.Amount)
		if err != nil {
			return Result{}, false, err
		}
		earned, err := e.Account.TotalEarned.Add(req.Amount)
		if err != nil {
			return Result{}, false, err
		}

		e.Account.Balance = balance
		e.Account.TotalEarned = earned
		e.Account.UpdatedAt = now
		if req.CustomerEmail != "" {
			e.Account.CustomerEmail = req.CustomerEmail
		}

		tx, err := s.newTransaction(now, req.CustomerID, req.Kind,
			req.Amount, balance, req.Description, req.Metadata)
		if err != nil {
			return Result{}, false, err
		}
		e.Transactions = append(e.Transactions, tx)
		return Result{Account: e.Account, Transaction: tx}, true, nil
	})
	s.observe(OperationCredit, err, req.Amount.Int64(), res.Replayed)
	if err != nil {
		return Result{}, err
	}

	s.log.LogAttrs(ctx, slog.LevelInfo, "coins credited",
		slog.String("customer_id", req.CustomerID),
		slog.String("type", string(req.Kind)),
		slog.Int64("amount", req.Amount.Int64()),
		slog.Int64("balance", res.Account.Balance.Int64()),
		slog.Bool("replayed", res.Replayed))

	if req.Kind == ledger.TypeGift && !res.Replayed {
		s.notifyGift(ctx, req, res)
	}
	return res, nil
}

func (s *Service) Debit(ctx context.Context, req DebitRequest) (Result, error) {
	if err := validateDebit(req); err != nil {
		s.observe(OperationDebit, err, 0, false)
		return Result{}, err
	}

	res, err := s.apply(ctx, func(doc *ledger.Document, now time.Time) (Result, bool, error) {
		e, ok := doc.Entry(req.CustomerID)
		if !ok {
			return Result{}, false, fmt.Errorf("%w: balance 0, requested %d",
				serviceerrs.ErrInsufficientBalance, req.Amount)
		}
		if tx, ok := findByKey(e, req.IdempotencyKey); ok {
			if tx.Type != ledger.TypeDeduction || tx.Amount != req.Amount ||
				tx.Metadata.OrderID != req.OrderID {
				return Result{}, false, keyReused(req.IdempotencyKey, tx)
			}
			return Result{Account: e.Account, Transaction: tx, Replayed: true}, false, nil
		}
		if req.Amount > e.Account.Balance {
			return Result{}, false, fmt.Errorf("%w: balance %d, requested %d",
				serviceerrs.ErrInsufficientBalance, e.Account.Balance, req.Amount)
		}

		e.Account.Balance -= req.Amount
		e.Account.TotalSpent += req.Amount
		e.Account.UpdatedAt = now
		if req.CustomerEmail != "" {
			e.Account.CustomerEmail = req.CustomerEmail
		}

		meta := ledger.Metadata{OrderID: req.OrderID, IdempotencyKey: req.IdempotencyKey}
		tx, err := s.newTransaction(now, req.CustomerID, ledger.TypeDeduction,
			req.Amount, e.Account.Balance, req.Description, meta)
		if err != nil {
			return Result{}, false, err
		}
		e.Transactions = append(e.Transactions, tx)
		return Result{Account: e.Account, Transaction: tx}, true, nil
	})
	s.observe(OperationDebit, err, req.Amount.Int64(), res.Replayed)
	if err != nil {
		return Result{}, err
	}

	s.log.LogAttrs(ctx, slog.LevelInfo, "coins debited",
		slog.String("customer_id", req.CustomerID),
		slog.String("order_id", req.OrderID),
		slog.Int64("amount", req.Amount.Int64()),
		slog.Int64("balance", res.Account.Balance.Int64()),
		slog.Bool("replayed", res.Replayed))
	return res, nil
}

type mutation func(doc *ledger.Document, now time.Time) (res Result, changed bool, err error)

// apply runs one load-modify-save cycle, reloading on version conflicts.
func (s *Service) apply(ctx context.Context, mutate mutation) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; ; attempt++ {
		doc, err := s.store.Load(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("failed to load ledger: %w", err)
		}

		res, changed, err := mutate(doc, s.now())
		if err != nil || !changed {
			return res, err
		}

		err = s.store.Save(ctx, doc)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, serviceerrs.ErrVersionConflict) ||
			attempt >= model.DefaultConflictAttempts {
			return Result{}, fmt.Errorf("failed to save ledger: %w", err)
		}
		s.log.LogAttrs(ctx, slog.LevelWarn, "ledger changed concurrently, retrying",
			slog.Int("attempt", attempt),
			slog.Any(model.KeyLoggerError, err))
	}
}

func (s *Service) newTransaction(now time.Time,
	customerID string, kind ledger.TransactionType,
	amount, balanceAfter model.Coins,
	description string, meta ledger.Metadata,
) (ledger.Transaction, error) {
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("failed to generate transaction id: %w", err)
	}

	tx := ledger.Transaction{
		CreatedAt:    now,
		ID:           id.String(),
		CustomerID:   customerID,
		Type:         kind,
		Description:  description,
		Amount:       amount,
		BalanceAfter: balanceAfter,
	}
	if !meta.IsZero() {
		tx.Metadata = &meta
	}
	return tx, nil
}

func (s *Service) notifyGift(ctx context.Context, req CreditRequest, res Result) {
	if s.notifier == nil {
		return
	}

	message := fmt.Sprintf("%d coins were added to your balance.", req.Amount)
	if req.Description != "" {
		message += " " + req.Description
	}
	n := notification.Notification{
		CustomerID:    req.CustomerID,
		CustomerEmail: res.Account.CustomerEmail,
		Type:          notification.TypeCoinGift,
		Title:         "You received a coin gift!",
		Message:       message,
		Metadata: map[string]string{
			"transactionId": res.Transaction.ID,
			"amount":        strconv.FormatInt(req.Amount.Int64(), 10),
			"giftedBy":      req.Metadata.GiftedBy,
		},
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "failed to notify about gift",
			slog.String("customer_id", req.CustomerID),
			slog.String("transaction_id", res.Transaction.ID),
			slog.Any(model.KeyLoggerError, err))
	}
}

func (s *Service) observe(operation string, err error, amount int64, replayed bool) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveOperation(operation, resultLabel(err, replayed), amount)
}

func resultLabel(err error, replayed bool) string {
	switch {
	case err == nil && replayed:
		return ResultReplayed
	case err == nil:
		return ResultOK
	case serviceerrs.IsValidation(err):
		return ResultInvalid
	case errors.Is(err, serviceerrs.ErrInsufficientBalance):
		return ResultInsufficient
	case errors.Is(err, serviceerrs.ErrVersionConflict),
		errors.Is(err, serviceerrs.ErrIdempotencyKeyReused):
		return ResultConflict
	default:
		return ResultError
	}
}

// keyReused reports a key that already belongs to a transaction with a
// different type, amount or order.
func keyReused(key string, tx ledger.Transaction) error {
	return fmt.Errorf("%w: key %q belongs to %s transaction %s of %d coins",
		serviceerrs.ErrIdempotencyKeyReused, key, tx.Type, tx.ID, tx.Amount)
}

func findByKey(e *ledger.Entry, key string) (ledger.Transaction, bool) {
	if key == "" {
		return ledger.Transaction{}, false
	}
	for _, tx := range e.Transactions {
		if tx.Metadata != nil && tx.Metadata.IdempotencyKey == key {
			return tx, true
		}
	}
	return ledger.Transaction{}, false
}

func validateCredit(req CreditRequest) error {
	var errs []error
	if req.CustomerID == "" {
		errs = append(errs, serviceerrs.ErrMissingCustomerID)
	}
	if _, err := model.NewCoins(req.Amount.Int64()); err != nil {
		errs = append(errs, err)
	}
	if !req.Kind.IsCredit() {
		errs = append(errs, fmt.Errorf("%w: %q cannot be credited",
			serviceerrs.ErrInvalidKind, req.Kind))
	}
	return errors.Join(errs...)
}

func validateDebit(req DebitRequest) error {
	var errs []error
	if req.CustomerID == "" {
		errs = append(errs, serviceerrs.ErrMissingCustomerID)
	}
	if _, err := model.NewCoins(req.Amount.Int64()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
