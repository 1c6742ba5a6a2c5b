package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/talx-hub/coinledger/internal/api/dto"
	"github.com/talx-hub/coinledger/internal/serviceerrs"
)

type NotificationHandler struct {
	notifications NotificationService
	logger        *slog.Logger
}

func NewNotificationHandler(notifications NotificationService, log *slog.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        log,
	}
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	customerID := strings.TrimSpace(r.URL.Query().Get("customerId"))
	if customerID == "" {
		writeBadRequest(w, r, h.logger, serviceerrs.ErrMissingCustomerID)
		return
	}
	unreadOnly, err := parseBool(r, "unreadOnly")
	if err != nil {
		writeBadRequest(w, r, h.logger, err)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		writeBadRequest(w, r, h.logger, err)
		return
	}

	list, err := h.notifications.List(r.Context(), customerID, unreadOnly, limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, list)
}

// MarkRead marks one notification, or all of the customer's when no id is given.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req dto.MarkReadRequest
	if err := render.Bind(r, &req); err != nil {
		writeBadRequest(w, r, h.logger, err)
		return
	}

	if req.NotificationID == "" {
		count, err := h.notifications.MarkAllRead(r.Context(), req.CustomerID)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeOK(w, r, dto.MarkReadResponse{Updated: count})
		return
	}

	if err := h.notifications.MarkRead(r.Context(), req.CustomerID, req.NotificationID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, dto.MarkReadResponse{Updated: 1})
}
