package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/repository"
	"github.com/fastygo/dispatch/usecase"
)

// Deps are the collaborators of the task use case. Audit, Notifications,
// Publisher, Cache and Buffer are optional.
type Deps struct {
	Tasks         repository.TaskRepository
	Assignees     repository.AssigneeRepository
	Audit         repository.AuditRepository
	Notifications repository.NotificationRepository
	Publisher     repository.NotificationPublisher
	Cache         repository.DashboardCache
	Buffer        usecase.OperationBuffer
}

type UseCase struct {
	tasks         repository.TaskRepository
	assignees     repository.AssigneeRepository
	audit         repository.AuditRepository
	notifications repository.NotificationRepository
	publisher     repository.NotificationPublisher
	cache         repository.DashboardCache
	buffer        usecase.OperationBuffer
	logger        *zap.Logger
	now           func() time.Time
}

func New(deps Deps, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:         deps.Tasks,
		assignees:     deps.Assignees,
		audit:         deps.Audit,
		notifications: deps.Notifications,
		publisher:     deps.Publisher,
		cache:         deps.Cache,
		buffer:        deps.Buffer,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Result is a task with its assignment rows. Buffered is set when the write
// was queued for replay instead of reaching Postgres.
type Result struct {
	Task      *domain.Task          `json:"task"`
	Assignees []domain.TaskAssignee `json:"assignees"`
	Buffered  bool                  `json:"buffered,omitempty"`
}

type CreateInput struct {
	Task         domain.Task
	LeadDriverID string
	CoDriverIDs  []string
	ActorID      string
}

// PatchInput carries the fields an admin may change in place.
type PatchInput struct {
	TaskID   string
	Status   *domain.TaskStatus
	Priority *domain.TaskPriority
	Details  *string
	ActorID  string
}

// UpdateInput is a full edit. Assignments are replaced only when ReplaceAssignees is set.
type UpdateInput struct {
	Task             domain.Task
	LeadDriverID     string
	CoDriverIDs      []string
	ReplaceAssignees bool
	ActorID          string
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*Result, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	rows, err := uc.assignees.ListByTask(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return &Result{Task: task, Assignees: rows}, nil
}

func (uc *UseCase) CreateTask(ctx context.Context, in CreateInput) (*Result, error) {
	task := in.Task
	if task.Status == "" {
		task.Status = domain.StatusPending
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	task.Title = strings.TrimSpace(task.Title)
	if err := validateTask(&task); err != nil {
		return nil, err
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if in.ActorID != "" {
		actor := in.ActorID
		task.CreatedBy = &actor
		task.UpdatedBy = &actor
	}
	rows := BuildAssignees(task.ID, in.LeadDriverID, in.CoDriverIDs, uc.now())

	var (
		created *domain.Task
		err     error
	)
	if len(rows) > 0 {
		created, err = uc.tasks.CreateWithAssignees(ctx, &task, rows)
	} else {
		created, err = uc.tasks.Create(ctx, &task)
	}
	if err != nil {
		if usecase.IsInfrastructureError(err) && uc.bufferTask(ctx, usecase.OperationCreate, &task, in.ActorID) {
			if len(rows) > 0 {
				uc.bufferAssignments(ctx, task.ID, rows, in.ActorID)
			}
			return &Result{Task: &task, Assignees: rows, Buffered: true}, nil
		}
		return nil, storeError(err)
	}

	uc.recordAudit(ctx, created.ID, in.ActorID, domain.AuditActionCreated, nil, auditState(created, rows))
	uc.notifyAssigned(ctx, created, rows)
	uc.invalidateDashboard(ctx)
	return &Result{Task: created, Assignees: rows}, nil
}

func (uc *UseCase) PatchTask(ctx context.Context, in PatchInput) (*Result, error) {
	if in.Status == nil && in.Priority == nil && in.Details == nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "no updatable fields", nil)
	}
	if err := validatePatch(in); err != nil {
		return nil, err
	}
	current, err := uc.tasks.GetByID(ctx, in.TaskID)
	if err != nil {
		if usecase.IsInfrastructureError(err) && uc.bufferPatch(ctx, in) {
			return &Result{Task: patchedStub(in), Buffered: true}, nil
		}
		return nil, storeError(err)
	}
	before := *current

	statusOnly := in.Priority == nil && in.Details == nil
	if in.Status != nil {
		current.Status = *in.Status
	}
	if in.Priority != nil {
		current.Priority = *in.Priority
	}
	if in.Details != nil {
		current.Details = *in.Details
	}
	if err := validateTask(current); err != nil {
		return nil, err
	}

	action := domain.AuditActionUpdated
	if statusOnly {
		action = domain.AuditActionStatusChanged
	}
	return uc.saveTask(ctx, &before, current, action, in.ActorID)
}

func (uc *UseCase) UpdateTask(ctx context.Context, in UpdateInput) (*Result, error) {
	current, err := uc.tasks.GetByID(ctx, in.Task.ID)
	if err != nil {
		if usecase.IsInfrastructureError(err) {
			if res, ok := uc.bufferBlindUpdate(ctx, in); ok {
				return res, nil
			}
		}
		return nil, storeError(err)
	}
	before := *current

	next := in.Task
	next.Title = strings.TrimSpace(next.Title)
	next.CreatedBy = current.CreatedBy
	next.CreatedAt = current.CreatedAt
	if next.Status == "" {
		next.Status = current.Status
	}
	if next.Priority == "" {
		next.Priority = current.Priority
	}
	if err := validateTask(&next); err != nil {
		return nil, err
	}

	if !in.ReplaceAssignees {
		return uc.saveTask(ctx, &before, &next, domain.AuditActionUpdated, in.ActorID)
	}

	oldRows, err := uc.assignees.ListByTask(ctx, next.ID)
	if err != nil {
		if usecase.IsInfrastructureError(err) {
			if res, ok := uc.bufferBlindUpdate(ctx, in); ok {
				return res, nil
			}
		}
		return nil, storeError(err)
	}
	rows := carryAssignedAt(BuildAssignees(next.ID, in.LeadDriverID, in.CoDriverIDs, uc.now()), oldRows)

	setActor(&next, in.ActorID)
	if err := uc.tasks.UpdateWithAssignees(ctx, &next, rows); err != nil {
		if usecase.IsInfrastructureError(err) && uc.bufferTask(ctx, usecase.OperationUpdate, &next, in.ActorID) {
			uc.bufferAssignments(ctx, next.ID, rows, in.ActorID)
			return &Result{Task: &next, Assignees: rows, Buffered: true}, nil
		}
		return nil, storeError(err)
	}

	uc.recordAudit(ctx, next.ID, in.ActorID, domain.AuditActionUpdated, auditState(&before, oldRows), auditState(&next, rows))
	uc.notifyAssigned(ctx, &next, addedAssignees(oldRows, rows))
	uc.invalidateDashboard(ctx)
	return &Result{Task: &next, Assignees: rows}, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, id, actorID string) (*Result, error) {
	current, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		if usecase.IsInfrastructureError(err) && uc.bufferTask(ctx, usecase.OperationDelete, &domain.Task{ID: id}, actorID) {
			return &Result{Task: &domain.Task{ID: id}, Buffered: true}, nil
		}
		return nil, storeError(err)
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		if usecase.IsInfrastructureError(err) && uc.bufferTask(ctx, usecase.OperationDelete, current, actorID) {
			return &Result{Task: current, Buffered: true}, nil
		}
		return nil, storeError(err)
	}

	uc.recordAudit(ctx, id, actorID, domain.AuditActionDeleted, auditState(current, nil), nil)
	uc.invalidateDashboard(ctx)
	return &Result{Task: current}, nil
}

// bufferBlindUpdate queues a full edit whose current row could not be read.
// Only a request that validates on its own can be queued this way.
func (uc *UseCase) bufferBlindUpdate(ctx context.Context, in UpdateInput) (*Result, bool) {
	next := in.Task
	next.Title = strings.TrimSpace(next.Title)
	if validateTask(&next) != nil {
		return nil, false
	}
	setActor(&next, in.ActorID)
	if !uc.bufferTask(ctx, usecase.OperationUpdate, &next, in.ActorID) {
		return nil, false
	}
	var rows []domain.TaskAssignee
	if in.ReplaceAssignees {
		rows = BuildAssignees(next.ID, in.LeadDriverID, in.CoDriverIDs, uc.now())
		uc.bufferAssignments(ctx, next.ID, rows, in.ActorID)
	}
	return &Result{Task: &next, Assignees: rows, Buffered: true}, true
}

// saveTask persists next over before, buffering on store failure, and records the audit row.
func (uc *UseCase) saveTask(ctx context.Context, before, next *domain.Task, action, actorID string) (*Result, error) {
	setActor(next, actorID)
	if err := uc.tasks.Update(ctx, next); err != nil {
		if usecase.IsInfrastructureError(err) && uc.bufferTask(ctx, usecase.OperationUpdate, next, actorID) {
			return &Result{Task: next, Buffered: true}, nil
		}
		return nil, storeError(err)
	}
	uc.recordAudit(ctx, next.ID, actorID, action, auditState(before, nil), auditState(next, nil))
	uc.invalidateDashboard(ctx)
	return &Result{Task: next}, nil
}

func (uc *UseCase) bufferTask(ctx context.Context, operation string, task *domain.Task, actorID string) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, task, actorID); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered", zap.String("operation", operation), zap.String("task_id", task.ID))
	return true
}

func (uc *UseCase) bufferPatch(ctx context.Context, in PatchInput) bool {
	if uc.buffer == nil {
		return false
	}
	patch := usecase.TaskPatch{TaskID: in.TaskID, Status: in.Status, Priority: in.Priority, Details: in.Details, ActorID: in.ActorID}
	if err := uc.buffer.BufferPatch(ctx, patch); err != nil {
		uc.logger.Error("failed to buffer task patch", zap.String("task_id", in.TaskID), zap.Error(err))
		return false
	}
	uc.logger.Warn("task patch buffered", zap.String("task_id", in.TaskID))
	return true
}

// patchedStub is the partial task echoed back for a queued patch.
func patchedStub(in PatchInput) *domain.Task {
	task := &domain.Task{ID: in.TaskID}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.Details != nil {
		task.Details = *in.Details
	}
	return task
}

func (uc *UseCase) bufferAssignments(ctx context.Context, taskID string, rows []domain.TaskAssignee, actorID string) bool {
	if uc.buffer == nil {
		return false
	}
	change := usecase.AssignmentChange{TaskID: taskID, Rows: rows, ActorID: actorID}
	if err := uc.buffer.BufferAssignments(ctx, change); err != nil {
		uc.logger.Error("failed to buffer assignments", zap.String("task_id", taskID), zap.Error(err))
		return false
	}
	return true
}

func (uc *UseCase) invalidateDashboard(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func setActor(task *domain.Task, actorID string) {
	if actorID == "" {
		return
	}
	actor := actorID
	task.UpdatedBy = &actor
}

func validatePatch(in PatchInput) error {
	problems := make(map[string]string)
	if in.Status != nil && !in.Status.Valid() {
		problems["status"] = "must be pending, in_progress, blocked or completed"
	}
	if in.Priority != nil && !in.Priority.Valid() {
		problems["priority"] = "must be low, medium or high"
	}
	if verr := domain.NewValidationError("invalid task", problems); verr != nil {
		return verr
	}
	return nil
}

func validateTask(t *domain.Task) error {
	problems := make(map[string]string)
	if strings.TrimSpace(t.Title) == "" {
		problems["title"] = "required"
	}
	if !t.Type.Valid() {
		problems["type"] = "unknown task type"
	}
	if !t.Priority.Valid() {
		problems["priority"] = "must be low, medium or high"
	}
	if !t.Status.Valid() {
		problems["status"] = "must be pending, in_progress, blocked or completed"
	}
	if t.EstimatedStart != nil && t.EstimatedEnd != nil && t.EstimatedEnd.Before(*t.EstimatedStart) {
		problems["estimated_end"] = "must not precede estimated_start"
	}
	if verr := domain.NewValidationError("invalid task", problems); verr != nil {
		return verr
	}
	return nil
}

// storeError marks infrastructure failures as UNAVAILABLE and passes domain errors through.
func storeError(err error) error {
	if usecase.IsInfrastructureError(err) {
		return domain.WrapError(domain.ErrCodeUnavailable, "task store unavailable", err)
	}
	return err
}
