package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/talx-hub/coinledger/internal/api/dto"
	"github.com/talx-hub/coinledger/internal/model"
	"github.com/talx-hub/coinledger/internal/model/ledger"
	"github.com/talx-hub/coinledger/internal/model/notification"
	"github.com/talx-hub/coinledger/internal/service/coins"
	"github.com/talx-hub/coinledger/internal/serviceerrs"
)

type CoinService interface {
	GetBalance(ctx context.Context, customerID string) (ledger.Account, error)
	ListTransactions(ctx context.Context, customerID string, limit int) ([]ledger.Transaction, error)
	Credit(ctx context.Context, req coins.CreditRequest) (coins.Result, error)
	Debit(ctx context.Context, req coins.DebitRequest) (coins.Result, error)
}

type NotificationService interface {
	List(ctx context.Context, customerID string, unreadOnly bool, limit int,
	) ([]notification.Notification, error)
	MarkRead(ctx context.Context, customerID, id string) error
	MarkAllRead(ctx context.Context, customerID string) (int, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

const msgInternalError = "internal server error"

func statusFromError(err error) int {
	switch {
	case serviceerrs.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, serviceerrs.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, serviceerrs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, serviceerrs.ErrVersionConflict),
		errors.Is(err, serviceerrs.ErrIdempotencyKeyReused):
		return http.StatusConflict
	case errors.Is(err, serviceerrs.ErrInvalidCredentials),
		errors.Is(err, serviceerrs.ErrTokenExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides the details of server-side failures from the caller.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	code := statusFromError(err)
	msg := err.Error()
	level := slog.LevelInfo
	if code == http.StatusInternalServerError {
		msg = msgInternalError
		level = slog.LevelError
	}

	log.LogAttrs(r.Context(), level, "request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", code),
		slog.Any(model.KeyLoggerError, err))

	render.Status(r, code)
	render.JSON(w, r, dto.Fail(msg))
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	log.LogAttrs(r.Context(), slog.LevelInfo, "bad request",
		slog.String("path", r.URL.Path),
		slog.Any(model.KeyLoggerError, err))

	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, dto.Fail(err.Error()))
}

func writeOK(w http.ResponseWriter, r *http.Request, data any) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, dto.OK(data))
}

// parseLimit returns 0 for an absent limit. An explicit limit must be a
// positive integer.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, serviceerrs.ErrInvalidLimit
	}
	return limit, nil
}

func parseBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New(name + " must be a boolean")
	}
	return v, nil
}
