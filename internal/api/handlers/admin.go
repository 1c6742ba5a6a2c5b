package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/talx-hub/coinledger/internal/api/dto"
	"github.com/talx-hub/coinledger/internal/model"
	"github.com/talx-hub/coinledger/internal/model/ledger"
	"github.com/talx-hub/coinledger/internal/service/coins"
	"github.com/talx-hub/coinledger/internal/serviceerrs"
	"github.com/talx-hub/coinledger/internal/utils/auth"
)

type AdminHandler struct {
	coins    CoinService
	logger   *slog.Logger
	secret   string
	login    string
	password string
}

func NewAdminHandler(coins CoinService, log *slog.Logger,
	secret, login, password string,
) *AdminHandler {
	return &AdminHandler{
		coins:    coins,
		logger:   log,
		secret:   secret,
		login:    login,
		password: password,
	}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeBadRequest(w, r, h.logger, err)
		return
	}

	if err := auth.CheckCredentials(req.Login, req.Password, h.login, h.password); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	cookie, err := auth.Authenticate(req.Login, []byte(h.secret))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	http.SetCookie(w, &cookie)

	h.logger.LogAttrs(r.Context(), slog.LevelInfo, "admin logged in",
		slog.String("login", req.Login))
	writeOK(w, r, nil)
}

// GiftCoins credits a gift on behalf of the authenticated admin.
func (h *AdminHandler) GiftCoins(w http.ResponseWriter, r *http.Request) {
	adminID, ok := r.Context().Value(model.KeyContextAdminID).(string)
	if !ok || adminID == "" {
		writeError(w, r, h.logger, serviceerrs.ErrInvalidCredentials)
		return
	}

	var req dto.GiftRequest
	if err := render.Bind(r, &req); err != nil {
		writeBadRequest(w, r, h.logger, err)
		return
	}

	res, err := h.coins.Credit(r.Context(), coins.CreditRequest{
		CustomerID:    req.CustomerID,
		CustomerEmail: req.CustomerEmail,
		Kind:          ledger.TypeGift,
		Description:   req.Description,
		Amount:        req.Coins(),
		Metadata: ledger.Metadata{
			GiftedBy:       req.GiftedBy,
			IdempotencyKey: req.IdempotencyKey,
		},
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.LogAttrs(r.Context(), slog.LevelInfo, "coins gifted",
		slog.String("admin_id", adminID),
		slog.String("customer_id", req.CustomerID),
		slog.Int64("amount", req.Coins().Int64()),
		slog.Bool("replayed", res.Replayed))
	writeOK(w, r, res)
}
