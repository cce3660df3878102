package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/pkg/httpcontext"
	dashboardUC "github.com/fastygo/dispatch/usecase/dashboard"
)

type dashboardService interface {
	Summary(ctx context.Context, q dashboardUC.Query) (*domain.DashboardSummary, error)
}

type DashboardHandler struct {
	baseHandler
	uc dashboardService
}

func NewDashboardHandler(uc dashboardService, adapter *httpcontext.Adapter, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Dashboard KPIs for a period
// @Tags admin
// @Router /api/v1/admin/dashboard [get]
func (h *DashboardHandler) Summary(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	summary, err := h.uc.Summary(stdCtx, dashboardUC.Query{
		Period: queryString(ctx, "period"),
		From:   queryString(ctx, "from"),
		To:     queryString(ctx, "to"),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, summary)
}
