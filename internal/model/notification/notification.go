package notification

import (
	"context"
	"time"
)

type Type string

const (
	TypeCoinGift Type = "coin_gift"
)

type Notification struct {
	CreatedAt     time.Time         `json:"createdAt"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	ID            string            `json:"id"`
	CustomerID    string            `json:"customerId"`
	CustomerEmail string            `json:"customerEmail,omitempty"`
	Type          Type              `json:"type"`
	Title         string            `json:"title"`
	Message       string            `json:"message"`
	Read          bool              `json:"read"`
}

type Document struct {
	Notifications []Notification `json:"notifications"`
	Version       int64          `json:"-"`
}

type Store interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}
