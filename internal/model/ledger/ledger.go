package ledger

import (
	"context"
	"time"

	"github.com/talx-hub/coinledger/internal/model"
)

type TransactionType string

const (
	TypePurchase  TransactionType = "purchase"
	TypeGift      TransactionType = "gift"
	TypeDeduction TransactionType = "deduction"
	TypeRefund    TransactionType = "refund"
)

// IsCredit reports whether t increases the balance.
func (t TransactionType) IsCredit() bool {
	switch t {
	case TypePurchase, TypeGift, TypeRefund:
		return true
	default:
		return false
	}
}

type Account struct {
	UpdatedAt     time.Time   `json:"updatedAt,omitzero"`
	CustomerID    string      `json:"customerId"`
	CustomerEmail string      `json:"customerEmail,omitempty"`
	Balance       model.Coins `json:"balance"`
	TotalEarned   model.Coins `json:"totalEarned"`
	TotalSpent    model.Coins `json:"totalSpent"`
}

type Metadata struct {
	OrderID        string `json:"orderId,omitempty"`
	GiftedBy       string `json:"giftedBy,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

func (m *Metadata) IsZero() bool {
	return m == nil || *m == Metadata{}
}

type Transaction struct {
	CreatedAt    time.Time       `json:"createdAt"`
	Metadata     *Metadata       `json:"metadata,omitempty"`
	ID           string          `json:"id"`
	CustomerID   string          `json:"customerId"`
	Type         TransactionType `json:"type"`
	Description  string          `json:"description"`
	Amount       model.Coins     `json:"amount"`
	BalanceAfter model.Coins     `json:"balanceAfter"`
}

// Entry is one customer's slice of the ledger document.
type Entry struct {
	Account      Account       `json:"account"`
	Transactions []Transaction `json:"transactions"`
}

// Document is the whole persisted ledger. Version is owned by the store.
type Document struct {
	Accounts map[string]*Entry `json:"accounts"`
	Version  int64             `json:"-"`
}

func NewDocument() *Document {
	return &Document{Accounts: make(map[string]*Entry)}
}

// Entry returns the customer's entry without creating it.
func (d *Document) Entry(customerID string) (*Entry, bool) {
	e, ok := d.Accounts[customerID]
	return e, ok
}

// GetOrCreate returns the customer's entry, adding a zero-value one if missing.
func (d *Document) GetOrCreate(customerID string) *Entry {
	if d.Accounts == nil {
		d.Accounts = make(map[string]*Entry)
	}
	e, ok := d.Accounts[customerID]
	if !ok {
		e = &Entry{
			Account:      Account{CustomerID: customerID},
			Transactions: []Transaction{},
		}
		d.Accounts[customerID] = e
	}
	return e
}

type Store interface {
	Load(ctx context.Context) (*Document, error)
	// Save fails with serviceerrs.ErrVersionConflict when the stored
	// document is newer than doc.Version and advances doc.Version on success.
	Save(ctx context.Context, doc *Document) error
}
