package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dispatch/api/transport"
	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/pkg/httpcontext"
	auditUC "github.com/fastygo/dispatch/usecase/audit"
)

type auditService interface {
	List(ctx context.Context, q auditUC.Query) ([]domain.AuditEntry, error)
}

type AuditHandler struct {
	baseHandler
	uc auditService
}

func NewAuditHandler(uc auditService, adapter *httpcontext.Adapter, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Audit log of one task
// @Tags admin
// @Router /api/v1/admin/tasks/{id}/audit [get]
func (h *AuditHandler) TaskAudit(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	h.list(ctx, id)
}

// @Summary Audit log of every task
// @Tags admin
// @Router /api/v1/admin/audit [get]
func (h *AuditHandler) List(ctx *fasthttp.RequestCtx) {
	h.list(ctx, "")
}

func (h *AuditHandler) list(ctx *fasthttp.RequestCtx, taskID string) {
	q := auditUC.Query{
		TaskID: taskID,
		Limit:  queryInt(ctx, "limit", auditUC.DefaultLimit),
		Offset: queryInt(ctx, "offset", 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.uc.List(stdCtx, q)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccessMeta(ctx, http.StatusOK, entries, transport.Meta{
		"limit":  auditUC.ClampLimit(q.Limit),
		"offset": max(q.Offset, 0),
	})
}
