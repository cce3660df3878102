package repository

import (
	"context"

	"github.com/fastygo/dispatch/domain"
)

type TaskFilter struct {
	Status   string
	DriverID string
	Limit    int
	Offset   int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// CreateWithAssignees stores task and its rows atomically; neither is kept when one fails.
	CreateWithAssignees(ctx context.Context, task *domain.Task, rows []domain.TaskAssignee) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	// UpdateWithAssignees updates task and replaces its rows atomically.
	UpdateWithAssignees(ctx context.Context, task *domain.Task, rows []domain.TaskAssignee) error
	Delete(ctx context.Context, id string) error
}

type AssigneeRepository interface {
	List(ctx context.Context) ([]domain.TaskAssignee, error)
	ListByTask(ctx context.Context, taskID string) ([]domain.TaskAssignee, error)
	// Replace swaps every assignment row of taskID for rows, atomically.
	Replace(ctx context.Context, taskID string, rows []domain.TaskAssignee) error
}
