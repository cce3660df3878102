package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/usecase"
)

// StatusInput moves a task to Status. Details, when set, replaces the task details.
type StatusInput struct {
	TaskID  string
	Status  domain.TaskStatus
	Details *string
	ActorID string
}

// ReassignInput moves the assignment of driver From to driver To.
type ReassignInput struct {
	TaskID  string
	From    string
	To      string
	ActorID string
}

// ChangeStatus updates the status of a task. When Postgres is unreachable the
// change is queued and the result is marked Buffered.
func (uc *UseCase) ChangeStatus(ctx context.Context, in StatusInput) (*Result, error) {
	if !in.Status.Valid() {
		return nil, domain.NewValidationError("invalid status", map[string]string{"status": "unknown status"})
	}
	current, err := uc.tasks.GetByID(ctx, in.TaskID)
	if err != nil {
		if usecase.IsInfrastructureError(err) && uc.bufferStatus(ctx, in) {
			return &Result{Task: &domain.Task{ID: in.TaskID, Status: in.Status}, Buffered: true}, nil
		}
		return nil, storeError(err)
	}
	if current.Status == in.Status && (in.Details == nil || *in.Details == current.Details) {
		return &Result{Task: current}, nil
	}

	before := *current
	current.Status = in.Status
	if in.Details != nil {
		current.Details = *in.Details
	}
	setActor(current, in.ActorID)
	if err := uc.tasks.Update(ctx, current); err != nil {
		if usecase.IsInfrastructureError(err) && uc.bufferStatus(ctx, in) {
			return &Result{Task: current, Buffered: true}, nil
		}
		return nil, storeError(err)
	}

	uc.recordAudit(ctx, current.ID, in.ActorID, domain.AuditActionStatusChanged, auditState(&before, nil), auditState(current, nil))
	uc.invalidateDashboard(ctx)
	return &Result{Task: current}, nil
}

// Reassign hands the assignment row of From to To, keeping its lead flag.
// If To is already assigned the two rows merge and the lead flag is kept when either had it.
func (uc *UseCase) Reassign(ctx context.Context, in ReassignInput) (*Result, error) {
	rows, err := uc.assignees.ListByTask(ctx, in.TaskID)
	if err != nil {
		if usecase.IsInfrastructureError(err) && uc.bufferReassign(ctx, in) {
			return &Result{Task: &domain.Task{ID: in.TaskID}, Buffered: true}, nil
		}
		return nil, storeError(err)
	}
	next, err := usecase.ReassignRows(rows, in.From, in.To)
	if err != nil {
		return nil, err
	}
	task, err := uc.tasks.GetByID(ctx, in.TaskID)
	if err != nil {
		if usecase.IsInfrastructureError(err) && uc.bufferReassign(ctx, in) {
			return &Result{Task: &domain.Task{ID: in.TaskID}, Assignees: next, Buffered: true}, nil
		}
		return nil, storeError(err)
	}
	if in.From == in.To {
		return &Result{Task: task, Assignees: rows}, nil
	}

	if err := uc.assignees.Replace(ctx, in.TaskID, next); err != nil {
		if usecase.IsInfrastructureError(err) && uc.bufferReassign(ctx, in) {
			return &Result{Task: task, Assignees: next, Buffered: true}, nil
		}
		return nil, storeError(err)
	}

	uc.recordAudit(ctx, in.TaskID, in.ActorID, domain.AuditActionReassigned, auditState(task, rows), auditState(task, next))
	uc.notifyAssigned(ctx, task, addedAssignees(rows, next))
	return &Result{Task: task, Assignees: next}, nil
}

func (uc *UseCase) bufferReassign(ctx context.Context, in ReassignInput) bool {
	if uc.buffer == nil {
		return false
	}
	change := usecase.ReassignChange{TaskID: in.TaskID, From: in.From, To: in.To, ActorID: in.ActorID}
	if err := uc.buffer.BufferReassign(ctx, change); err != nil {
		uc.logger.Error("failed to buffer reassignment", zap.String("task_id", in.TaskID), zap.Error(err))
		return false
	}
	uc.logger.Warn("reassignment buffered", zap.String("task_id", in.TaskID), zap.String("to", in.To))
	return true
}

func (uc *UseCase) bufferStatus(ctx context.Context, in StatusInput) bool {
	if uc.buffer == nil {
		return false
	}
	change := usecase.StatusChange{TaskID: in.TaskID, Status: in.Status, Details: in.Details, ActorID: in.ActorID}
	if err := uc.buffer.BufferStatusChange(ctx, change); err != nil {
		uc.logger.Error("failed to buffer status change", zap.String("task_id", in.TaskID), zap.Error(err))
		return false
	}
	uc.logger.Warn("status change buffered", zap.String("task_id", in.TaskID), zap.String("status", string(in.Status)))
	return true
}
