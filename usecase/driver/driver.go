package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/internal/checklist"
	"github.com/fastygo/dispatch/internal/infrastructure/localcache"
	"github.com/fastygo/dispatch/repository"
	"github.com/fastygo/dispatch/usecase"
	taskUC "github.com/fastygo/dispatch/usecase/task"
)

// Tab selects which of the driver's tasks are listed.
type Tab string

const (
	TabToday   Tab = "today"
	TabAll     Tab = "all"
	TabOverdue Tab = "overdue"
)

// ParseTab defaults to today when raw is empty.
func ParseTab(raw string) (Tab, error) {
	switch Tab(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TabToday:
		return TabToday, nil
	case TabAll:
		return TabAll, nil
	case TabOverdue:
		return TabOverdue, nil
	}
	return "", domain.NewValidationError("invalid tab", map[string]string{"tab": "must be today, all or overdue"})
}

// StatusChanger persists a status change. Implemented by the task use case.
type StatusChanger interface {
	ChangeStatus(ctx context.Context, in taskUC.StatusInput) (*taskUC.Result, error)
}

type Deps struct {
	Tasks    repository.TaskRepository
	Changer  StatusChanger
	Cache    localcache.Cache
	Location *time.Location
}

type UseCase struct {
	tasks    repository.TaskRepository
	changer  StatusChanger
	cache    localcache.Cache
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

func New(deps Deps, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Cache == nil {
		deps.Cache = localcache.Nop{}
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &UseCase{
		tasks:    deps.Tasks,
		changer:  deps.Changer,
		cache:    deps.Cache,
		location: deps.Location,
		logger:   logger,
		now:      time.Now,
	}
}

// TaskList is the driver's task list. Stale is set when it was read from the local cache.
type TaskList struct {
	Tasks []domain.Task `json:"tasks"`
	Stale bool          `json:"-"`
}

func cacheKey(driverID string) string {
	return "driver:" + driverID + ":tasks"
}

// ListTasks returns the tasks assigned to driverID filtered by tab.
func (uc *UseCase) ListTasks(ctx context.Context, driverID string, tab Tab) (*TaskList, error) {
	if driverID == "" {
		return nil, domain.ErrUnauthorized
	}
	tasks, stale, err := uc.assignedTasks(ctx, driverID)
	if err != nil {
		return nil, err
	}

	now := uc.now().In(uc.location)
	out := make([]domain.Task, 0, len(tasks))
	switch tab {
	case TabAll:
		out = append(out, tasks...)
	case TabOverdue:
		for i := range tasks {
			if tasks[i].IsOverdue(now) {
				out = append(out, tasks[i])
			}
		}
	default:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.location)
		end := start.AddDate(0, 0, 1)
		for i := range tasks {
			if tasks[i].Intersects(start, end) {
				out = append(out, tasks[i])
			}
		}
	}
	return &TaskList{Tasks: out, Stale: stale}, nil
}

// assignedTasks loads the driver's tasks from Postgres, refreshing the local
// copy. When Postgres is unreachable the local copy is returned instead.
func (uc *UseCase) assignedTasks(ctx context.Context, driverID string) ([]domain.Task, bool, error) {
	tasks, err := uc.tasks.List(ctx, repository.TaskFilter{DriverID: driverID, Limit: -1})
	if err == nil {
		if tasks == nil {
			tasks = []domain.Task{}
		}
		if perr := uc.cache.Put(ctx, cacheKey(driverID), tasks); perr != nil {
			uc.logger.Warn("driver task cache write failed", zap.String("driver_id", driverID), zap.Error(perr))
		}
		return tasks, false, nil
	}
	if !usecase.IsInfrastructureError(err) {
		return nil, false, err
	}

	var cached []domain.Task
	if cerr := uc.cache.Get(ctx, cacheKey(driverID), &cached); cerr != nil {
		if !errors.Is(cerr, localcache.ErrNotFound) {
			uc.logger.Warn("driver task cache read failed", zap.String("driver_id", driverID), zap.Error(cerr))
		}
		return nil, false, domain.WrapError(domain.ErrCodeUnavailable, "task store unavailable", err)
	}
	uc.logger.Warn("serving cached driver tasks", zap.String("driver_id", driverID), zap.Error(err))
	return cached, true, nil
}

// StatusInput is a driver's status change with the answers collected on the way.
type StatusInput struct {
	TaskID      string
	DriverID    string
	Status      domain.TaskStatus
	Checklist   checklist.Values
	Completion  checklist.Values
	Details     *string
	AdvisorName *string
}

type StatusResult struct {
	*taskUC.Result
	Checklist  map[string]interface{} `json:"checklist,omitempty"`
	Completion map[string]interface{} `json:"completion,omitempty"`
}

// UpdateStatus moves a task assigned to the driver to a new status. Starting
// a task requires its start checklist; completing it runs the completion flow
// of its type, whose answers are appended to the task details.
func (uc *UseCase) UpdateStatus(ctx context.Context, in StatusInput) (*StatusResult, error) {
	if in.DriverID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !in.Status.Valid() {
		return nil, domain.NewValidationError("invalid status", map[string]string{"status": "unknown status"})
	}

	tasks, _, err := uc.assignedTasks(ctx, in.DriverID)
	if err != nil {
		return nil, err
	}
	var task *domain.Task
	for i := range tasks {
		if tasks[i].ID == in.TaskID {
			task = &tasks[i]
			break
		}
	}
	if task == nil {
		return nil, domain.WrapError(domain.ErrCodeForbidden, "task is not assigned to this driver", nil)
	}

	out := &StatusResult{}
	details := in.Details

	if in.Status == domain.StatusInProgress && task.Status != domain.StatusInProgress {
		if schema := checklist.StartChecklist(task.Type); schema != nil {
			if err := checklist.Validate(schema, in.Checklist); err != nil {
				return nil, err
			}
			out.Checklist = checklist.Normalize(schema, in.Checklist)
		}
	}

	if in.Status == domain.StatusCompleted && task.Status != domain.StatusCompleted {
		flow, schema := checklist.Completion(task.Type)
		if flow != checklist.FlowNone {
			values := completionValues(in)
			if err := checklist.Validate(schema, values); err != nil {
				return nil, err
			}
			out.Completion = checklist.Normalize(schema, values)
			merged := appendAnswers(task.Details, schema, out.Completion)
			details = &merged
		}
	}

	res, err := uc.changer.ChangeStatus(ctx, taskUC.StatusInput{
		TaskID:  task.ID,
		Status:  in.Status,
		Details: details,
		ActorID: in.DriverID,
	})
	if err != nil {
		return nil, err
	}
	out.Result = res

	task.Status = in.Status
	if details != nil {
		task.Details = *details
	}
	if perr := uc.cache.Put(ctx, cacheKey(in.DriverID), tasks); perr != nil {
		uc.logger.Warn("driver task cache write failed", zap.String("driver_id", in.DriverID), zap.Error(perr))
	}
	uc.logger.Info("driver status change",
		zap.String("task_id", task.ID),
		zap.String("driver_id", in.DriverID),
		zap.String("status", string(in.Status)),
		zap.Bool("buffered", res != nil && res.Buffered),
	)
	return out, nil
}

// completionValues merges the top-level details and advisor name into the completion answers.
func completionValues(in StatusInput) checklist.Values {
	values := make(checklist.Values, len(in.Completion)+2)
	for k, v := range in.Completion {
		values[k] = v
	}
	if _, ok := values["details"]; !ok && in.Details != nil {
		values["details"] = *in.Details
	}
	if _, ok := values["advisor_name"]; !ok && in.AdvisorName != nil {
		values["advisor_name"] = *in.AdvisorName
	}
	return values
}

// appendAnswers adds one "Title: value" line per non-empty answer, in schema order.
func appendAnswers(details string, schema checklist.Schema, answers map[string]interface{}) string {
	lines := make([]string, 0, len(schema)+1)
	if strings.TrimSpace(details) != "" {
		lines = append(lines, strings.TrimRight(details, "\n"))
	}
	for _, f := range schema {
		v, ok := answers[f.ID]
		if !ok || v == nil {
			continue
		}
		text := strings.TrimSpace(fmt.Sprint(v))
		if text == "" {
			continue
		}
		lines = append(lines, f.Title+": "+text)
	}
	return strings.Join(lines, "\n")
}
