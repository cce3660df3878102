package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dispatch/api/transport"
	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/pkg/httpcontext"
	"github.com/fastygo/dispatch/repository"
	taskUC "github.com/fastygo/dispatch/usecase/task"
)

type taskService interface {
	ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error)
	GetTask(ctx context.Context, id string) (*taskUC.Result, error)
	CreateTask(ctx context.Context, in taskUC.CreateInput) (*taskUC.Result, error)
	PatchTask(ctx context.Context, in taskUC.PatchInput) (*taskUC.Result, error)
	UpdateTask(ctx context.Context, in taskUC.UpdateInput) (*taskUC.Result, error)
	DeleteTask(ctx context.Context, id, actorID string) (*taskUC.Result, error)
}

type TaskHandler struct {
	baseHandler
	uc taskService
}

func NewTaskHandler(uc taskService, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks
// @Tags admin
// @Router /api/v1/admin/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	filter := repository.TaskFilter{
		Status:   queryString(ctx, "status"),
		DriverID: queryString(ctx, "driver_id"),
		Limit:    queryInt(ctx, "limit", 50),
		Offset:   queryInt(ctx, "offset", 0),
	}
	if filter.Status != "" && !domain.TaskStatus(filter.Status).Valid() {
		h.respondError(ctx, domain.NewValidationError("invalid filter", map[string]string{"status": "unknown status"}))
		return
	}
	if filter.DriverID != "" {
		if _, err := uuid.Parse(filter.DriverID); err != nil {
			h.respondError(ctx, domain.NewValidationError("invalid filter", map[string]string{"driver_id": "must be a UUID"}))
			return
		}
	}
	if filter.Limit < 0 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Get task with assignees
// @Tags admin
// @Router /api/v1/admin/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.uc.GetTask(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, res)
}

// @Summary Create task
// @Tags admin
// @Router /api/v1/admin/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.callerID(ctx)
	if !ok {
		return
	}
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.uc.CreateTask(stdCtx, taskUC.CreateInput{
		Task:         req.Task(""),
		LeadDriverID: req.LeadDriverID,
		CoDriverIDs:  req.CoDriverIDs,
		ActorID:      userID,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondWrite(ctx, http.StatusCreated, res, res.Buffered)
}

// @Summary Replace task
// @Tags admin
// @Router /api/v1/admin/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.callerID(ctx)
	if !ok {
		return
	}
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.uc.UpdateTask(stdCtx, taskUC.UpdateInput{
		Task:             req.Task(id),
		LeadDriverID:     req.LeadDriverID,
		CoDriverIDs:      req.CoDriverIDs,
		ReplaceAssignees: req.AssignsDrivers(),
		ActorID:          userID,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondWrite(ctx, http.StatusOK, res, res.Buffered)
}

// @Summary Patch task status, priority or details
// @Tags admin
// @Router /api/v1/admin/tasks/{id} [patch]
func (h *TaskHandler) PatchTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.callerID(ctx)
	if !ok {
		return
	}
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.TaskPatchRequest
	if !h.decode(ctx, &req) {
		return
	}

	in := taskUC.PatchInput{TaskID: id, Details: req.Details, ActorID: userID}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		in.Status = &s
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		in.Priority = &p
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.uc.PatchTask(stdCtx, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondWrite(ctx, http.StatusOK, res, res.Buffered)
}

// @Summary Delete task
// @Tags admin
// @Router /api/v1/admin/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.callerID(ctx)
	if !ok {
		return
	}
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.uc.DeleteTask(stdCtx, id, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if res.Buffered {
		h.respondWrite(ctx, http.StatusAccepted, res, true)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}
