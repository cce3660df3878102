package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/internal/infrastructure/buffer"
	"github.com/fastygo/dispatch/usecase"
)

// BufferBridge turns use-case write failures into queue items. Every item is
// tagged with its task so replay can hold back later writes to a task whose
// earlier write is still waiting.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task, actorID string) error {
	if b.processor == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityTask, operation, task.ID, actorID, task)
}

func (b *BufferBridge) BufferPatch(ctx context.Context, patch usecase.TaskPatch) error {
	if b.processor == nil || patch.TaskID == "" {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityTaskPatch, usecase.OperationUpdate, patch.TaskID, patch.ActorID, patch)
}

func (b *BufferBridge) BufferAssignments(ctx context.Context, change usecase.AssignmentChange) error {
	if b.processor == nil || change.TaskID == "" {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityAssignment, usecase.OperationUpdate, change.TaskID, change.ActorID, change)
}

func (b *BufferBridge) BufferReassign(ctx context.Context, change usecase.ReassignChange) error {
	if b.processor == nil || change.TaskID == "" || change.From == "" || change.To == "" {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityReassign, usecase.OperationUpdate, change.TaskID, change.ActorID, change)
}

func (b *BufferBridge) BufferStatusChange(ctx context.Context, change usecase.StatusChange) error {
	if b.processor == nil || change.TaskID == "" {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityTaskStatus, usecase.OperationUpdate, change.TaskID, change.ActorID, change)
}

func (b *BufferBridge) enqueue(ctx context.Context, entity, operation, taskID, actorID string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		ActorID:   actorID,
		Entity:    entity,
		Operation: operation,
		TaskID:    taskID,
		Data:      payload,
	})
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
