package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dispatch/api/transport"
	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/pkg/httpcontext"
)

type pushService interface {
	Subscribe(ctx context.Context, userID, endpoint string, keys domain.PushKeys) (*domain.PushSubscription, error)
	Unsubscribe(ctx context.Context, userID, endpoint string) error
}

type PushHandler struct {
	baseHandler
	uc pushService
}

func NewPushHandler(uc pushService, adapter *httpcontext.Adapter, logger *zap.Logger) *PushHandler {
	return &PushHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register a browser push subscription
// @Tags notifications
// @Router /api/v1/notifications/subscribe [post]
func (h *PushHandler) Subscribe(ctx *fasthttp.RequestCtx) {
	userID, ok := h.callerID(ctx)
	if !ok {
		return
	}
	var req transport.PushSubscribeRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sub, err := h.uc.Subscribe(stdCtx, userID, req.Endpoint, domain.PushKeys{P256dh: req.Keys.P256dh, Auth: req.Keys.Auth})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, sub)
}

// @Summary Remove a browser push subscription
// @Tags notifications
// @Router /api/v1/notifications/subscribe [delete]
func (h *PushHandler) Unsubscribe(ctx *fasthttp.RequestCtx) {
	userID, ok := h.callerID(ctx)
	if !ok {
		return
	}
	var req transport.PushUnsubscribeRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Unsubscribe(stdCtx, userID, req.Endpoint); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"ok": true})
}
