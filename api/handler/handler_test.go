package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/dispatch/domain"
	boardview "github.com/fastygo/dispatch/internal/board"
	"github.com/fastygo/dispatch/internal/infrastructure/monitor"
	"github.com/fastygo/dispatch/repository"
	boardUC "github.com/fastygo/dispatch/usecase/board"
	driverUC "github.com/fastygo/dispatch/usecase/driver"
	notificationUC "github.com/fastygo/dispatch/usecase/notification"
	taskUC "github.com/fastygo/dispatch/usecase/task"
)

const (
	taskID   = "6f1c2a4e-3b7d-4c1e-9a2f-1d5e8b7c6a90"
	driverA  = "0b8f6c1d-2e4a-4f3b-8c7d-9e1a2b3c4d5e"
	driverB  = "1c9a7d2e-3f5b-4a6c-9d8e-0f2b3c4d5e6f"
	callerID = "9d3e5f7a-1b2c-4d6e-8f0a-b1c2d3e4f5a6"
)

type envelope struct {
	Status string                 `json:"status"`
	Code   string                 `json:"code"`
	Data   json.RawMessage        `json:"data"`
	Error  interface{}            `json:"error"`
	Meta   map[string]interface{} `json:"meta"`
}

func newRequest(method, uri, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	ctx.Request.Header.Set("X-User-ID", callerID)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	return ctx
}

func decodeEnvelope(t *testing.T, ctx *fasthttp.RequestCtx) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	return env
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrTaskNotFound, http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.NewValidationError("bad", map[string]string{"a": "b"}), http.StatusBadRequest},
		{domain.WrapError(domain.ErrCodeUnavailable, "down", errors.New("x")), http.StatusServiceUnavailable},
		{domain.NewError(domain.ErrCodeConflict, "dup"), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, _ := mapError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
	}
}

type fakeBoard struct {
	result *boardUC.Result
	err    error
	moves  []boardUC.MoveInput
}

func (f *fakeBoard) ResolveMode(raw string) (boardview.Mode, error) {
	if raw == "" {
		return boardview.ModeStatus, nil
	}
	mode, ok := boardview.ParseMode(raw)
	if !ok {
		return "", domain.NewValidationError("invalid grouping mode", map[string]string{"group_by": "bad"})
	}
	return mode, nil
}

func (f *fakeBoard) Board(_ context.Context, mode boardview.Mode) (*boardUC.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeBoard) MoveTask(_ context.Context, in boardUC.MoveInput) (*taskUC.Result, error) {
	f.moves = append(f.moves, in)
	return &taskUC.Result{Task: &domain.Task{ID: in.TaskID}}, nil
}

func TestBoardHandlerReturnsColumns(t *testing.T) {
	view := boardview.New(boardview.Snapshot{
		Tasks: []domain.Task{{ID: taskID, Title: "A", Status: domain.StatusBlocked}},
	}, boardview.ModeStatus)
	h := NewBoardHandler(&fakeBoard{result: &boardUC.Result{View: view}}, nil, nil)

	ctx := newRequest(http.MethodGet, "/api/v1/admin/board", "")
	h.GetBoard(ctx)

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	assert.Equal(t, false, env.Meta["stale"])

	var body boardResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Len(t, body.Columns, 4)
	assert.Equal(t, 1, body.Total)
}

func TestBoardHandlerUnavailable(t *testing.T) {
	h := NewBoardHandler(&fakeBoard{err: domain.WrapError(domain.ErrCodeUnavailable, "board data unavailable", errors.New("refused"))}, nil, nil)
	ctx := newRequest(http.MethodGet, "/api/v1/admin/board?group_by=driver", "")
	h.GetBoard(ctx)
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())

	ctx = newRequest(http.MethodGet, "/api/v1/admin/board?group_by=week", "")
	h.GetBoard(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

func TestBoardMoveValidatesDriverColumns(t *testing.T) {
	board := &fakeBoard{}
	h := NewBoardHandler(board, nil, nil)

	ctx := newRequest(http.MethodPost, "/api/v1/admin/board/move",
		`{"task_id":"`+taskID+`","from":"`+driverA+`","to":"Unknown Driver","group_by":"driver"}`)
	h.MoveTask(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	assert.Empty(t, board.moves)

	ctx = newRequest(http.MethodPost, "/api/v1/admin/board/move",
		`{"task_id":"`+taskID+`","from":"`+driverA+`","to":"`+driverB+`","group_by":"driver"}`)
	h.MoveTask(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	require.Len(t, board.moves, 1)
	assert.Equal(t, callerID, board.moves[0].ActorID)
	assert.Equal(t, boardview.ModeDriver, board.moves[0].Mode)
}

type fakeTasks struct {
	created []taskUC.CreateInput
	buffer  bool
}

func (f *fakeTasks) ListTasks(context.Context, repository.TaskFilter) ([]domain.Task, error) {
	return []domain.Task{}, nil
}

func (f *fakeTasks) GetTask(context.Context, string) (*taskUC.Result, error) {
	return nil, domain.ErrTaskNotFound
}

func (f *fakeTasks) CreateTask(_ context.Context, in taskUC.CreateInput) (*taskUC.Result, error) {
	f.created = append(f.created, in)
	task := in.Task
	return &taskUC.Result{Task: &task, Buffered: f.buffer}, nil
}

func (f *fakeTasks) PatchTask(context.Context, taskUC.PatchInput) (*taskUC.Result, error) {
	return &taskUC.Result{}, nil
}

func (f *fakeTasks) UpdateTask(context.Context, taskUC.UpdateInput) (*taskUC.Result, error) {
	return &taskUC.Result{}, nil
}

func (f *fakeTasks) DeleteTask(context.Context, string, string) (*taskUC.Result, error) {
	return &taskUC.Result{}, nil
}

func TestCreateTask(t *testing.T) {
	tasks := &fakeTasks{}
	h := NewTaskHandler(tasks, nil, nil)
	body := `{"title":"Pickup","type":"other","priority":"low","status":"pending","lead_driver_id":"` + driverA + `"}`

	ctx := newRequest(http.MethodPost, "/api/v1/admin/tasks", body)
	h.CreateTask(ctx)
	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
	require.Len(t, tasks.created, 1)
	assert.Equal(t, callerID, tasks.created[0].ActorID)
	assert.Equal(t, driverA, tasks.created[0].LeadDriverID)

	tasks.buffer = true
	ctx = newRequest(http.MethodPost, "/api/v1/admin/tasks", body)
	h.CreateTask(ctx)
	assert.Equal(t, http.StatusAccepted, ctx.Response.StatusCode())
	assert.Equal(t, true, decodeEnvelope(t, ctx).Meta["buffered"])
}

func TestCreateTaskValidationFields(t *testing.T) {
	h := NewTaskHandler(&fakeTasks{}, nil, nil)
	ctx := newRequest(http.MethodPost, "/api/v1/admin/tasks", `{"type":"other","priority":"urgent","status":"pending"}`)
	h.CreateTask(ctx)

	require.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	assert.Equal(t, "INVALID", env.Code)
	fields, ok := env.Meta["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "priority")
}

func TestTaskPathIDMustBeUUID(t *testing.T) {
	h := NewTaskHandler(&fakeTasks{}, nil, nil)
	ctx := newRequest(http.MethodGet, "/api/v1/admin/tasks/abc", "")
	ctx.SetUserValue("id", "abc")
	h.GetTask(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = newRequest(http.MethodGet, "/api/v1/admin/tasks/"+taskID, "")
	ctx.SetUserValue("id", taskID)
	h.GetTask(ctx)
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
}

func TestMissingCallerIsUnauthorized(t *testing.T) {
	h := NewTaskHandler(&fakeTasks{}, nil, nil)
	ctx := newRequest(http.MethodDelete, "/api/v1/admin/tasks/"+taskID, "")
	ctx.Request.Header.Del("X-User-ID")
	ctx.SetUserValue("id", taskID)
	h.DeleteTask(ctx)
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
}

type fakeDriver struct {
	inputs []driverUC.StatusInput
	err    error
}

func (f *fakeDriver) ListTasks(_ context.Context, _ string, tab driverUC.Tab) (*driverUC.TaskList, error) {
	return &driverUC.TaskList{Tasks: []domain.Task{{ID: taskID}}, Stale: true}, nil
}

func (f *fakeDriver) UpdateStatus(_ context.Context, in driverUC.StatusInput) (*driverUC.StatusResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &driverUC.StatusResult{Result: &taskUC.Result{Task: &domain.Task{ID: in.TaskID, Status: in.Status}, Buffered: true}}, nil
}

func TestDriverHandlers(t *testing.T) {
	drv := &fakeDriver{}
	h := NewDriverHandler(drv, nil, nil)

	ctx := newRequest(http.MethodGet, "/api/v1/driver/tasks?tab=overdue", "")
	h.GetTasks(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	assert.Equal(t, "overdue", env.Meta["tab"])
	assert.Equal(t, true, env.Meta["stale"])

	ctx = newRequest(http.MethodPatch, "/api/v1/driver/tasks/"+taskID+"/status",
		`{"status":"in_progress","checklist":{"car_license":true}}`)
	ctx.SetUserValue("id", taskID)
	h.UpdateStatus(ctx)
	assert.Equal(t, http.StatusAccepted, ctx.Response.StatusCode())
	require.Len(t, drv.inputs, 1)
	assert.Equal(t, true, drv.inputs[0].Checklist["car_license"])
	assert.Equal(t, callerID, drv.inputs[0].DriverID)

	drv.err = domain.WrapError(domain.ErrCodeForbidden, "task is not assigned to this driver", nil)
	ctx = newRequest(http.MethodPatch, "/api/v1/driver/tasks/"+taskID+"/status", `{"status":"completed"}`)
	ctx.SetUserValue("id", taskID)
	h.UpdateStatus(ctx)
	assert.Equal(t, http.StatusForbidden, ctx.Response.StatusCode())
}

func TestChecklistCatalog(t *testing.T) {
	h := NewDriverHandler(&fakeDriver{}, nil, nil)
	ctx := newRequest(http.MethodGet, "/api/v1/checklists/licence_test", "")
	ctx.SetUserValue("type", "licence_test")
	h.GetChecklist(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	var body checklistResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, ctx).Data, &body))
	assert.Len(t, body.Start, 3)
	assert.Equal(t, "licence_test", string(body.CompletionFlow))

	ctx = newRequest(http.MethodGet, "/api/v1/checklists/boat", "")
	ctx.SetUserValue("type", "boat")
	h.GetChecklist(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

type fakeNotifications struct{ patched []notificationUC.PatchInput }

func (f *fakeNotifications) List(context.Context, string, int, int) ([]domain.Notification, error) {
	return []domain.Notification{}, nil
}

func (f *fakeNotifications) Patch(_ context.Context, in notificationUC.PatchInput) ([]domain.Notification, error) {
	f.patched = append(f.patched, in)
	return []domain.Notification{{ID: in.ID, UserID: in.UserID, Read: true}}, nil
}

func TestNotificationPatchSingle(t *testing.T) {
	n := &fakeNotifications{}
	h := NewNotificationHandler(n, nil, nil)
	ctx := newRequest(http.MethodPatch, "/api/v1/driver/notifications", `{"id":"`+taskID+`","read":true}`)
	h.Patch(ctx)

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	var row domain.Notification
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, ctx).Data, &row))
	assert.True(t, row.Read)
	require.Len(t, n.patched, 1)
	assert.True(t, *n.patched[0].Read)
}

type fixedStatus monitor.Status

func (s fixedStatus) GetStatus() monitor.Status { return monitor.Status(s) }

func TestHealth(t *testing.T) {
	h := NewHealthHandler(fixedStatus{PostgreSQL: true, Redis: true, Buffer: true, LastCheck: time.Now()}, nil, nil)
	ctx := newRequest(http.MethodGet, "/health", "")
	h.Check(ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	h = NewHealthHandler(fixedStatus{PostgreSQL: false, Redis: true, Buffer: true}, nil, nil)
	ctx = newRequest(http.MethodGet, "/health", "")
	h.Check(ctx)
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	assert.Equal(t, "DEGRADED", env.Code)
	assert.Equal(t, "buffered", env.Meta["writes"])
}
