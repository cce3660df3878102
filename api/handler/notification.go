package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dispatch/api/transport"
	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/pkg/httpcontext"
	notificationUC "github.com/fastygo/dispatch/usecase/notification"
)

type notificationService interface {
	List(ctx context.Context, userID string, page, pageSize int) ([]domain.Notification, error)
	Patch(ctx context.Context, in notificationUC.PatchInput) ([]domain.Notification, error)
}

type NotificationHandler struct {
	baseHandler
	uc notificationService
}

func NewNotificationHandler(uc notificationService, adapter *httpcontext.Adapter, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Notifications of the calling driver
// @Tags driver
// @Router /api/v1/driver/notifications [get]
func (h *NotificationHandler) List(ctx *fasthttp.RequestCtx) {
	userID, ok := h.callerID(ctx)
	if !ok {
		return
	}
	page := queryInt(ctx, "page", 0)
	pageSize := queryInt(ctx, "page_size", queryInt(ctx, "pageSize", notificationUC.DefaultPageSize))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	rows, err := h.uc.List(stdCtx, userID, page, pageSize)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccessMeta(ctx, http.StatusOK, rows, transport.Meta{"page": max(page, 0)})
}

// @Summary Mark notifications read or soft-delete them
// @Tags driver
// @Router /api/v1/driver/notifications [patch]
func (h *NotificationHandler) Patch(ctx *fasthttp.RequestCtx) {
	userID, ok := h.callerID(ctx)
	if !ok {
		return
	}
	var req transport.NotificationPatchRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	rows, err := h.uc.Patch(stdCtx, notificationUC.PatchInput{
		UserID:  userID,
		ID:      req.ID,
		IDs:     req.IDs,
		Read:    req.Read,
		Payload: req.Payload,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if req.ID != "" && len(rows) == 1 {
		h.respondSuccess(ctx, http.StatusOK, rows[0])
		return
	}
	h.respondSuccess(ctx, http.StatusOK, rows)
}
