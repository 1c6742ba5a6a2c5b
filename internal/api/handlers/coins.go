package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/talx-hub/coinledger/internal/api/dto"
	"github.com/talx-hub/coinledger/internal/model"
	"github.com/talx-hub/coinledger/internal/model/ledger"
	"github.com/talx-hub/coinledger/internal/service/coins"
	"github.com/talx-hub/coinledger/internal/serviceerrs"
)

type CoinHandler struct {
	coins  CoinService
	logger *slog.Logger
}

func NewCoinHandler(coins CoinService, log *slog.Logger) *CoinHandler {
	return &CoinHandler{
		coins:  coins,
		logger: log,
	}
}

// GetCoins answers with the account, or with its transactions newest first
// when transactions=true.
func (h *CoinHandler) GetCoins(w http.ResponseWriter, r *http.Request) {
	customerID := strings.TrimSpace(r.URL.Query().Get("customerId"))
	if customerID == "" {
		writeBadRequest(w, r, h.logger, serviceerrs.ErrMissingCustomerID)
		return
	}
	withTransactions, err := parseBool(r, "transactions")
	if err != nil {
		writeBadRequest(w, r, h.logger, err)
		return
	}

	if !withTransactions {
		account, err := h.coins.GetBalance(r.Context(), customerID)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeOK(w, r, account)
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		writeBadRequest(w, r, h.logger, err)
		return
	}
	txs, err := h.coins.ListTransactions(r.Context(), customerID, limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, txs)
}

func (h *CoinHandler) PostCoins(w http.ResponseWriter, r *http.Request) {
	var req dto.CoinsRequest
	if err := render.Bind(r, &req); err != nil {
		writeBadRequest(w, r, h.logger, err)
		return
	}
	key := req.Options.IdempotencyKey
	if key == "" {
		key = r.Header.Get(model.HeaderIdempotencyKey)
	}

	var (
		res coins.Result
		err error
	)
	switch req.Action {
	case dto.ActionAdd:
		res, err = h.coins.Credit(r.Context(), coins.CreditRequest{
			CustomerID:    req.CustomerID,
			CustomerEmail: req.CustomerEmail,
			Kind:          ledger.TransactionType(req.Options.Type),
			Description:   req.Description,
			Amount:        req.Coins(),
			Metadata: ledger.Metadata{
				OrderID:        req.Options.OrderID,
				GiftedBy:       req.Options.GiftedBy,
				IdempotencyKey: key,
			},
		})
	case dto.ActionDeduct:
		res, err = h.coins.Debit(r.Context(), coins.DebitRequest{
			CustomerID:     req.CustomerID,
			CustomerEmail:  req.CustomerEmail,
			Description:    req.Description,
			OrderID:        req.Options.OrderID,
			IdempotencyKey: key,
			Amount:         req.Coins(),
		})
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, res)
}
