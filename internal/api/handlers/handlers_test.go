package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/coinledger/internal/api/handlers/mocks"
	"github.com/talx-hub/coinledger/internal/model"
	"github.com/talx-hub/coinledger/internal/model/ledger"
	"github.com/talx-hub/coinledger/internal/model/notification"
	"github.com/talx-hub/coinledger/internal/service/coins"
	"github.com/talx-hub/coinledger/internal/serviceerrs"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Success bool            `json:"success"`
}

func serve(t *testing.T, handlerFunc http.HandlerFunc, req *http.Request,
) (*http.Response, envelope) {
	t.Helper()

	rr := httptest.NewRecorder()
	handlerFunc(rr, req)
	res := rr.Result()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	var env envelope
	if len(body) > 0 && strings.HasPrefix(res.Header.Get(model.HeaderContentType), "application/json") {
		require.NoError(t, json.Unmarshal(body, &env))
	}
	return res, env
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(model.HeaderContentType, "application/json")
	return req
}

func TestCoinHandler_GetCoins(t *testing.T) {
	account := ledger.Account{CustomerID: "c1", Balance: 60, TotalEarned: 100, TotalSpent: 40}
	txs := []ledger.Transaction{
		{ID: "t2", CustomerID: "c1", Type: ledger.TypeDeduction, Amount: 40, BalanceAfter: 60},
		{ID: "t1", CustomerID: "c1", Type: ledger.TypePurchase, Amount: 100, BalanceAfter: 100},
	}

	service := mocks.NewMockCoinService(t)
	service.EXPECT().GetBalance(mock.Anything, "c1").Return(account, nil)
	service.EXPECT().GetBalance(mock.Anything, "broken").
		Return(ledger.Account{}, errors.New("disk is gone"))
	service.EXPECT().ListTransactions(mock.Anything, "c1", 0).Return(txs, nil)
	service.EXPECT().ListTransactions(mock.Anything, "c1", 1).Return(txs[:1], nil)

	h := CoinHandler{coins: service, logger: slog.Default()}

	tests := []struct {
		name        string
		target      string
		wantData    string
		wantCode    int
		wantSuccess bool
	}{
		{
			name:     "missing customer",
			target:   "/coins",
			wantCode: http.StatusBadRequest,
		},
		{
			name:        "balance",
			target:      "/coins?customerId=c1",
			wantCode:    http.StatusOK,
			wantSuccess: true,
			wantData:    `{"customerId":"c1","balance":60,"totalEarned":100,"totalSpent":40}`,
		},
		{
			name:        "history",
			target:      "/coins?customerId=c1&transactions=true",
			wantCode:    http.StatusOK,
			wantSuccess: true,
		},
		{
			name:        "history with limit",
			target:      "/coins?customerId=c1&transactions=true&limit=1",
			wantCode:    http.StatusOK,
			wantSuccess: true,
		},
		{
			name:     "zero limit",
			target:   "/coins?customerId=c1&transactions=true&limit=0",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "negative limit",
			target:   "/coins?customerId=c1&transactions=true&limit=-3",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "non-integer limit",
			target:   "/coins?customerId=c1&transactions=true&limit=2.5",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad transactions flag",
			target:   "/coins?customerId=c1&transactions=maybe",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "storage failure",
			target:   "/coins?customerId=broken",
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, env := serve(t, h.GetCoins, httptest.NewRequest(http.MethodGet, tt.target, http.NoBody))

			assert.Equal(t, tt.wantCode, res.StatusCode)
			assert.Equal(t, tt.wantSuccess, env.Success)
			if !tt.wantSuccess {
				assert.NotEmpty(t, env.Error)
			}
			if tt.wantData != "" {
				assert.JSONEq(t, tt.wantData, string(env.Data))
			}
		})
	}

	t.Run("internal errors are hidden", func(t *testing.T) {
		_, env := serve(t, h.GetCoins,
			httptest.NewRequest(http.MethodGet, "/coins?customerId=broken", http.NoBody))
		assert.Equal(t, msgInternalError, env.Error)
	})

	t.Run("history is newest first", func(t *testing.T) {
		_, env := serve(t, h.GetCoins,
			httptest.NewRequest(http.MethodGet, "/coins?customerId=c1&transactions=true", http.NoBody))
		var got []ledger.Transaction
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.Len(t, got, 2)
		assert.Equal(t, "t2", got[0].ID)
	})
}

func TestCoinHandler_PostCoins(t *testing.T) {
	okResult := coins.Result{
		Account:     ledger.Account{CustomerID: "c1", Balance: 100, TotalEarned: 100},
		Transaction: ledger.Transaction{ID: "t1", Type: ledger.TypePurchase, Amount: 100, BalanceAfter: 100},
	}

	tests := []struct {
		setup    func(s *mocks.MockCoinService)
		headers  map[string]string
		name     string
		body     string
		wantCode int
	}{
		{
			name: "add defaults to purchase",
			body: `{"action":"add","customerId":"c1","amount":100,"description":"top-up"}`,
			setup: func(s *mocks.MockCoinService) {
				s.EXPECT().Credit(mock.Anything, coins.CreditRequest{
					CustomerID:  "c1",
					Kind:        ledger.TypePurchase,
					Description: "top-up",
					Amount:      100,
				}).Return(okResult, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name: "gift gets a default sender",
			body: `{"action":"add","customerId":"c1","amount":5,"options":{"type":"gift"}}`,
			setup: func(s *mocks.MockCoinService) {
				s.EXPECT().Credit(mock.Anything, mock.MatchedBy(func(req coins.CreditRequest) bool {
					return req.Kind == ledger.TypeGift && req.Metadata.GiftedBy == "admin" &&
						req.Amount == 5
				})).Return(okResult, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name:    "deduct with idempotency header",
			body:    `{"action":"deduct","customerId":"c1","amount":40,"options":{"orderId":"o1"}}`,
			headers: map[string]string{model.HeaderIdempotencyKey: "order-o1"},
			setup: func(s *mocks.MockCoinService) {
				s.EXPECT().Debit(mock.Anything, coins.DebitRequest{
					CustomerID:     "c1",
					OrderID:        "o1",
					IdempotencyKey: "order-o1",
					Amount:         40,
				}).Return(okResult, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name: "insufficient balance",
			body: `{"action":"deduct","customerId":"c1","amount":150,"options":{"orderId":"o1"}}`,
			setup: func(s *mocks.MockCoinService) {
				s.EXPECT().Debit(mock.Anything, mock.Anything).
					Return(coins.Result{}, serviceerrs.ErrInsufficientBalance).Once()
			},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name: "version conflict",
			body: `{"action":"add","customerId":"c1","amount":1}`,
			setup: func(s *mocks.MockCoinService) {
				s.EXPECT().Credit(mock.Anything, mock.Anything).
					Return(coins.Result{}, serviceerrs.ErrVersionConflict).Once()
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "deduction type is rejected by the service",
			body: `{"action":"add","customerId":"c1","amount":1,"options":{"type":"deduction"}}`,
			setup: func(s *mocks.MockCoinService) {
				s.EXPECT().Credit(mock.Anything, mock.Anything).
					Return(coins.Result{}, serviceerrs.ErrInvalidKind).Once()
			},
			wantCode: http.StatusBadRequest,
		},
		{name: "unknown action", body: `{"action":"steal","customerId":"c1","amount":1}`, wantCode: http.StatusBadRequest},
		{name: "zero amount", body: `{"action":"add","customerId":"c1","amount":0}`, wantCode: http.StatusBadRequest},
		{name: "negative amount", body: `{"action":"deduct","customerId":"c1","amount":-4}`, wantCode: http.StatusBadRequest},
		{name: "fractional amount", body: `{"action":"add","customerId":"c1","amount":1.5}`, wantCode: http.StatusBadRequest},
		{name: "missing amount", body: `{"action":"add","customerId":"c1"}`, wantCode: http.StatusBadRequest},
		{name: "missing customer", body: `{"action":"add","amount":1}`, wantCode: http.StatusBadRequest},
		{name: "malformed json", body: `{"action":`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := mocks.NewMockCoinService(t)
			if tt.setup != nil {
				tt.setup(service)
			}
			h := NewCoinHandler(service, slog.Default())

			req := jsonRequest(http.MethodPost, "/coins", tt.body)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			res, env := serve(t, h.PostCoins, req)

			assert.Equal(t, tt.wantCode, res.StatusCode)
			assert.Equal(t, tt.wantCode == http.StatusOK, env.Success)
			if tt.setup == nil {
				service.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything)
				service.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAdminHandler_Login(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantToken bool
	}{
		{name: "valid", body: `{"login":"admin","password":"s3cret-Pass"}`, wantCode: http.StatusOK, wantToken: true},
		{name: "wrong password", body: `{"login":"admin","password":"nope"}`, wantCode: http.StatusUnauthorized},
		{name: "wrong login", body: `{"login":"root","password":"s3cret-Pass"}`, wantCode: http.StatusUnauthorized},
		{name: "empty", body: `{"login":"","password":""}`, wantCode: http.StatusUnauthorized},
		{name: "decoding error", body: `{"login":42}`, wantCode: http.StatusBadRequest},
	}

	h := NewAdminHandler(mocks.NewMockCoinService(t), slog.Default(),
		"super-secret-key", "admin", "s3cret-Pass")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := serve(t, h.Login, jsonRequest(http.MethodPost, "/admin/login", tt.body))

			hasToken := false
			for _, c := range res.Cookies() {
				if c.Name == model.AdminTokenCookie && c.Value != "" {
					hasToken = true
				}
			}
			assert.Equal(t, tt.wantCode, res.StatusCode)
			assert.Equal(t, tt.wantToken, hasToken)
		})
	}
}

func TestAdminHandler_GiftCoins(t *testing.T) {
	withAdmin := func(req *http.Request) *http.Request {
		ctx := context.WithValue(req.Context(), model.KeyContextAdminID, "admin")
		return req.WithContext(ctx)
	}
	result := coins.Result{
		Account:     ledger.Account{CustomerID: "c1", Balance: 50, TotalEarned: 50},
		Transaction: ledger.Transaction{ID: "t1", Type: ledger.TypeGift, Amount: 50, BalanceAfter: 50},
	}

	t.Run("gift with header key", func(t *testing.T) {
		service := mocks.NewMockCoinService(t)
		service.EXPECT().Credit(mock.Anything, coins.CreditRequest{
			CustomerID:    "c1",
			CustomerEmail: "c1@example.com",
			Kind:          ledger.TypeGift,
			Description:   "Welcome bonus",
			Amount:        50,
			Metadata:      ledger.Metadata{GiftedBy: "admin", IdempotencyKey: "welcome-c1"},
		}).Return(result, nil).Once()
		h := NewAdminHandler(service, slog.Default(), "k", "admin", "pw")

		req := jsonRequest(http.MethodPost, "/admin/coins",
			`{"customerId":"c1","customerEmail":"c1@example.com","amount":50,"description":"Welcome bonus"}`)
		req.Header.Set(model.HeaderIdempotencyKey, "welcome-c1")
		res, env := serve(t, h.GiftCoins, withAdmin(req))

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.True(t, env.Success)
		var got coins.Result
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, model.Coins(50), got.Account.Balance)
	})

	t.Run("body key wins over header", func(t *testing.T) {
		service := mocks.NewMockCoinService(t)
		service.EXPECT().Credit(mock.Anything, mock.MatchedBy(func(req coins.CreditRequest) bool {
			return req.Metadata.IdempotencyKey == "from-body" && req.Metadata.GiftedBy == "support"
		})).Return(result, nil).Once()
		h := NewAdminHandler(service, slog.Default(), "k", "admin", "pw")

		req := jsonRequest(http.MethodPost, "/admin/coins",
			`{"customerId":"c1","amount":50,"giftedBy":"support","idempotencyKey":"from-body"}`)
		req.Header.Set(model.HeaderIdempotencyKey, "from-header")
		res, _ := serve(t, h.GiftCoins, withAdmin(req))
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("invalid amount", func(t *testing.T) {
		service := mocks.NewMockCoinService(t)
		h := NewAdminHandler(service, slog.Default(), "k", "admin", "pw")

		res, env := serve(t, h.GiftCoins,
			withAdmin(jsonRequest(http.MethodPost, "/admin/coins", `{"customerId":"c1","amount":-1}`)))
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.False(t, env.Success)
		service.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything)
	})

	t.Run("no admin in context", func(t *testing.T) {
		service := mocks.NewMockCoinService(t)
		h := NewAdminHandler(service, slog.Default(), "k", "admin", "pw")

		res, _ := serve(t, h.GiftCoins,
			jsonRequest(http.MethodPost, "/admin/coins", `{"customerId":"c1","amount":1}`))
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}

func TestNotificationHandler(t *testing.T) {
	list := []notification.Notification{
		{ID: "n2", CustomerID: "c1", Type: notification.TypeCoinGift, Title: "second"},
		{ID: "n1", CustomerID: "c1", Type: notification.TypeCoinGift, Title: "first", Read: true},
	}

	service := mocks.NewMockNotificationService(t)
	service.EXPECT().List(mock.Anything, "c1", false, 0).Return(list, nil)
	service.EXPECT().List(mock.Anything, "c1", true, 5).Return(list[:1], nil)
	service.EXPECT().MarkRead(mock.Anything, "c1", "n2").Return(nil)
	service.EXPECT().MarkRead(mock.Anything, "c1", "n9").Return(serviceerrs.ErrNotFound)
	service.EXPECT().MarkAllRead(mock.Anything, "c1").Return(3, nil)

	h := NewNotificationHandler(service, slog.Default())

	getTests := []struct {
		name     string
		target   string
		wantLen  int
		wantCode int
	}{
		{name: "all", target: "/notifications?customerId=c1", wantLen: 2, wantCode: http.StatusOK},
		{name: "unread", target: "/notifications?customerId=c1&unreadOnly=true&limit=5", wantLen: 1, wantCode: http.StatusOK},
		{name: "missing customer", target: "/notifications", wantCode: http.StatusBadRequest},
		{name: "bad limit", target: "/notifications?customerId=c1&limit=x", wantCode: http.StatusBadRequest},
	}
	for _, tt := range getTests {
		t.Run("get "+tt.name, func(t *testing.T) {
			res, env := serve(t, h.GetNotifications,
				httptest.NewRequest(http.MethodGet, tt.target, http.NoBody))
			assert.Equal(t, tt.wantCode, res.StatusCode)
			if tt.wantCode != http.StatusOK {
				return
			}
			var got []notification.Notification
			require.NoError(t, json.Unmarshal(env.Data, &got))
			assert.Len(t, got, tt.wantLen)
		})
	}

	markTests := []struct {
		name        string
		body        string
		wantUpdated string
		wantCode    int
	}{
		{name: "one", body: `{"customerId":"c1","notificationId":"n2"}`, wantCode: http.StatusOK, wantUpdated: `{"updated":1}`},
		{name: "all", body: `{"customerId":"c1"}`, wantCode: http.StatusOK, wantUpdated: `{"updated":3}`},
		{name: "foreign or unknown", body: `{"customerId":"c1","notificationId":"n9"}`, wantCode: http.StatusNotFound},
		{name: "missing customer", body: `{"notificationId":"n2"}`, wantCode: http.StatusBadRequest},
	}
	for _, tt := range markTests {
		t.Run("mark "+tt.name, func(t *testing.T) {
			res, env := serve(t, h.MarkRead,
				jsonRequest(http.MethodPost, "/notifications/read", tt.body))
			assert.Equal(t, tt.wantCode, res.StatusCode)
			if tt.wantUpdated != "" {
				assert.JSONEq(t, tt.wantUpdated, string(env.Data))
			}
		})
	}
}

func TestHealthHandler_Ping(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		wantCode int
	}{
		{name: "healthy", wantCode: http.StatusOK},
		{name: "storage down", err: errors.New("connection refused"), wantCode: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinger := mocks.NewMockPinger(t)
			pinger.EXPECT().Ping(mock.Anything).Return(tt.err).Once()
			h := NewHealthHandler(pinger, slog.Default())

			res, _ := serve(t, h.Ping, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
			assert.Equal(t, tt.wantCode, res.StatusCode)
		})
	}
}

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.Join(serviceerrs.ErrInvalidAmount, serviceerrs.ErrMissingCustomerID), http.StatusBadRequest},
		{serviceerrs.ErrInvalidLimit, http.StatusBadRequest},
		{serviceerrs.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{serviceerrs.ErrNotFound, http.StatusNotFound},
		{serviceerrs.ErrVersionConflict, http.StatusConflict},
		{fmt.Errorf("key reused: %w", serviceerrs.ErrIdempotencyKeyReused), http.StatusConflict},
		{serviceerrs.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFromError(tt.err), tt.err.Error())
	}
}
