package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/talx-hub/coinledger/internal/model"
	"github.com/talx-hub/coinledger/internal/model/ledger"
	"github.com/talx-hub/coinledger/internal/serviceerrs"
)

const (
	ActionAdd    = "add"
	ActionDeduct = "deduct"
)

const DefaultGiftedBy = "admin"

// Response is the envelope of every JSON answer.
type Response struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

func OK(data any) Response {
	return Response{Success: true, Data: data}
}

func Fail(msg string) Response {
	return Response{Error: msg}
}

type CoinsOptions struct {
	Type           string `json:"type,omitempty"`
	OrderID        string `json:"orderId,omitempty"`
	GiftedBy       string `json:"giftedBy,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type CoinsRequest struct {
	Options       *CoinsOptions `json:"options,omitempty"`
	Action        string        `json:"action"`
	CustomerID    string        `json:"customerId"`
	CustomerEmail string        `json:"customerEmail,omitempty"`
	Description   string        `json:"description,omitempty"`
	Amount        json.Number   `json:"amount"`
	amount        model.Coins
}

// Bind validates the request after decoding and normalizes its fields.
func (r *CoinsRequest) Bind(_ *http.Request) error {
	var errs []error

	r.Action = strings.ToLower(strings.TrimSpace(r.Action))
	if r.Action != ActionAdd && r.Action != ActionDeduct {
		errs = append(errs, fmt.Errorf("%w, got %q", serviceerrs.ErrInvalidAction, r.Action))
	}
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	if r.CustomerID == "" {
		errs = append(errs, serviceerrs.ErrMissingCustomerID)
	}
	amount, err := model.ParseCoins(r.Amount)
	if err != nil {
		errs = append(errs, err)
	}
	r.amount = amount

	if r.Options == nil {
		r.Options = &CoinsOptions{}
	}
	if r.Action == ActionAdd {
		if r.Options.Type == "" {
			r.Options.Type = string(ledger.TypePurchase)
		}
		if r.Options.Type == string(ledger.TypeGift) && r.Options.GiftedBy == "" {
			r.Options.GiftedBy = DefaultGiftedBy
		}
	}
	return errors.Join(errs...)
}

func (r *CoinsRequest) Coins() model.Coins {
	return r.amount
}

type GiftRequest struct {
	CustomerID     string      `json:"customerId"`
	CustomerEmail  string      `json:"customerEmail,omitempty"`
	Description    string      `json:"description,omitempty"`
	GiftedBy       string      `json:"giftedBy,omitempty"`
	IdempotencyKey string      `json:"idempotencyKey,omitempty"`
	Amount         json.Number `json:"amount"`
	amount         model.Coins
}

func (r *GiftRequest) Bind(req *http.Request) error {
	var errs []error

	r.CustomerID = strings.TrimSpace(r.CustomerID)
	if r.CustomerID == "" {
		errs = append(errs, serviceerrs.ErrMissingCustomerID)
	}
	amount, err := model.ParseCoins(r.Amount)
	if err != nil {
		errs = append(errs, err)
	}
	r.amount = amount

	if r.GiftedBy == "" {
		r.GiftedBy = DefaultGiftedBy
	}
	if r.IdempotencyKey == "" && req != nil {
		r.IdempotencyKey = req.Header.Get(model.HeaderIdempotencyKey)
	}
	return errors.Join(errs...)
}

func (r *GiftRequest) Coins() model.Coins {
	return r.amount
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type MarkReadRequest struct {
	CustomerID     string `json:"customerId"`
	NotificationID string `json:"notificationId,omitempty"`
}

func (r *MarkReadRequest) Bind(_ *http.Request) error {
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	if r.CustomerID == "" {
		return serviceerrs.ErrMissingCustomerID
	}
	return nil
}

type MarkReadResponse struct {
	Updated int `json:"updated"`
}
