package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dispatch/api/transport"
	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/internal/checklist"
	"github.com/fastygo/dispatch/pkg/httpcontext"
	driverUC "github.com/fastygo/dispatch/usecase/driver"
)

type driverService interface {
	ListTasks(ctx context.Context, driverID string, tab driverUC.Tab) (*driverUC.TaskList, error)
	UpdateStatus(ctx context.Context, in driverUC.StatusInput) (*driverUC.StatusResult, error)
}

type DriverHandler struct {
	baseHandler
	uc driverService
}

func NewDriverHandler(uc driverService, adapter *httpcontext.Adapter, logger *zap.Logger) *DriverHandler {
	return &DriverHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Tasks assigned to the calling driver
// @Tags driver
// @Router /api/v1/driver/tasks [get]
func (h *DriverHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID, ok := h.callerID(ctx)
	if !ok {
		return
	}
	tab, err := driverUC.ParseTab(queryString(ctx, "tab"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	list, err := h.uc.ListTasks(stdCtx, userID, tab)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccessMeta(ctx, http.StatusOK, list.Tasks, transport.Meta{
		"tab":   tab,
		"stale": list.Stale,
	})
}

// @Summary Change the status of an assigned task
// @Tags driver
// @Router /api/v1/driver/tasks/{id}/status [patch]
func (h *DriverHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	userID, ok := h.callerID(ctx)
	if !ok {
		return
	}
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.DriverStatusRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.uc.UpdateStatus(stdCtx, driverUC.StatusInput{
		TaskID:      id,
		DriverID:    userID,
		Status:      domain.TaskStatus(req.Status),
		Checklist:   checklist.Values(req.Checklist),
		Completion:  checklist.Values(req.Completion),
		Details:     req.Details,
		AdvisorName: req.AdvisorName,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondWrite(ctx, http.StatusOK, res, res.Result != nil && res.Buffered)
}

type checklistResponse struct {
	Type           domain.TaskType          `json:"type"`
	Start          checklist.Schema         `json:"start"`
	CompletionFlow checklist.CompletionFlow `json:"completion_flow,omitempty"`
	Completion     checklist.Schema         `json:"completion"`
}

// @Summary Start checklist and completion form of a task type
// @Tags driver
// @Router /api/v1/checklists/{type} [get]
func (h *DriverHandler) GetChecklist(ctx *fasthttp.RequestCtx) {
	taskType := domain.TaskType(pathParam(ctx, "type"))
	if !taskType.Valid() {
		h.respondError(ctx, domain.NewValidationError("invalid task type", map[string]string{"type": "unknown task type"}))
		return
	}
	flow, completion := checklist.Completion(taskType)
	resp := checklistResponse{
		Type:           taskType,
		Start:          checklist.StartChecklist(taskType),
		CompletionFlow: flow,
		Completion:     completion,
	}
	if resp.Start == nil {
		resp.Start = checklist.Schema{}
	}
	if resp.Completion == nil {
		resp.Completion = checklist.Schema{}
	}
	h.respondSuccess(ctx, http.StatusOK, resp)
}
