package usecase

import (
	"context"

	"github.com/fastygo/dispatch/domain"
)

// Buffered operation names, shared with the offline queue.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// StatusChange is a driver-initiated status transition.
type StatusChange struct {
	TaskID  string            `json:"task_id"`
	Status  domain.TaskStatus `json:"status"`
	Details *string           `json:"details,omitempty"`
	ActorID string            `json:"actor_id"`
}

// AssignmentChange replaces the assignee rows of a task.
type AssignmentChange struct {
	TaskID  string                `json:"task_id"`
	Rows    []domain.TaskAssignee `json:"rows"`
	ActorID string                `json:"actor_id"`
}

// TaskPatch changes single fields of a task whose current row could not be read.
// Replay applies the set fields to the row as it is then.
type TaskPatch struct {
	TaskID   string               `json:"task_id"`
	Status   *domain.TaskStatus   `json:"status,omitempty"`
	Priority *domain.TaskPriority `json:"priority,omitempty"`
	Details  *string              `json:"details,omitempty"`
	ActorID  string               `json:"actor_id"`
}

// ReassignChange hands the assignment of driver From to driver To.
type ReassignChange struct {
	TaskID  string `json:"task_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	ActorID string `json:"actor_id"`
}

// OperationBuffer queues writes that failed because Postgres was unreachable.
// Writes to the same task replay in the order they were queued.
type OperationBuffer interface {
	BufferTask(ctx context.Context, operation string, task *domain.Task, actorID string) error
	BufferPatch(ctx context.Context, patch TaskPatch) error
	BufferAssignments(ctx context.Context, change AssignmentChange) error
	BufferReassign(ctx context.Context, change ReassignChange) error
	BufferStatusChange(ctx context.Context, change StatusChange) error
}
