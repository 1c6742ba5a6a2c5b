package handlers

import (
	"log/slog"
	"net/http"

	"github.com/talx-hub/coinledger/internal/model"
)

type HealthHandler struct {
	storage Pinger
	logger  *slog.Logger
}

func NewHealthHandler(storage Pinger, log *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		logger:  log,
	}
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Ping(r.Context()); err != nil {
		h.logger.LogAttrs(r.Context(), slog.LevelError, "storage is unavailable",
			slog.Any(model.KeyLoggerError, err))
		http.Error(w, "storage is unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
