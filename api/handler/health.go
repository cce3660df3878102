package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dispatch/api/transport"
	"github.com/fastygo/dispatch/internal/infrastructure/monitor"
	"github.com/fastygo/dispatch/pkg/httpcontext"
)

type statusSource interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor statusSource
}

func NewHealthHandler(mon statusSource, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

type bufferHealth struct {
	Online bool `json:"online"`
	Size   int  `json:"size"`
}

type healthServices struct {
	PostgreSQL bool         `json:"postgresql"`
	Redis      bool         `json:"redis"`
	Buffer     bufferHealth `json:"buffer"`
}

type healthReport struct {
	Timestamp time.Time      `json:"timestamp"`
	LastCheck time.Time      `json:"last_check"`
	Services  healthServices `json:"services"`
	// Writes is "direct" while Postgres answers and "buffered" while writes queue locally.
	Writes string `json:"writes"`
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	report := healthReport{
		Timestamp: time.Now().UTC(),
		LastCheck: status.LastCheck,
		Services: healthServices{
			PostgreSQL: status.PostgreSQL,
			Redis:      status.Redis,
			Buffer:     bufferHealth{Online: status.Buffer, Size: status.BufferSize},
		},
		Writes: "direct",
	}
	if !status.PostgreSQL {
		report.Writes = "buffered"
	}

	if status.Healthy() {
		h.respondSuccess(ctx, http.StatusOK, report)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", report))
}
