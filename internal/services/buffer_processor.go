package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/internal/infrastructure/buffer"
	"github.com/fastygo/dispatch/internal/metrics"
	"github.com/fastygo/dispatch/repository"
	"github.com/fastygo/dispatch/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// BufferProcessor replays queued writes against Postgres once it is reachable again.
type BufferProcessor struct {
	store     *buffer.Store
	monitor   ConnectionHealth
	tasks     repository.TaskRepository
	assignees repository.AssigneeRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	tasks repository.TaskRepository,
	assignees repository.AssigneeRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval < time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:     store,
		monitor:   monitor,
		tasks:     tasks,
		assignees: assignees,
		metrics:   m,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	})
	_, _ = bp.cron.AddFunc("@hourly", func() {
		removed, err := bp.store.Cleanup(time.Now().UTC().Add(-bp.cfg.Retention))
		if err != nil {
			bp.logger.Error("buffer cleanup failed", zap.Error(err))
			return
		}
		if removed > 0 {
			bp.logger.Warn("expired buffered operations dropped", zap.Int("count", removed))
		}
	})

	return bp
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Duration("interval", bp.cfg.Interval))
}

// Stop waits for a running drain to finish or ctx to expire.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain replays one batch in queue order. It does nothing while Postgres is
// offline. Once a write to a task is put back for retry, later writes to the
// same task wait for the next drain so they never overtake it.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	items, err := bp.store.Peek(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	held := make(map[string]bool)
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if item.TaskID != "" && held[item.TaskID] {
			continue
		}
		err := bp.processItem(ctx, item)
		switch {
		case err == nil:
			if err := bp.store.Remove(item); err != nil {
				bp.logger.Warn("failed to purge processed buffer item", zap.Error(err))
			}
			bp.metrics.IncDrained("ok")

		case isPermanent(err) || item.Retries+1 >= bp.cfg.MaxRetries:
			bp.logger.Warn("dropping buffer item",
				zap.String("item_id", item.ID),
				zap.String("entity", item.Entity),
				zap.String("task_id", item.TaskID),
				zap.Int("retries", item.Retries),
				zap.Error(err))
			_ = bp.store.Remove(item)
			bp.metrics.IncDrained("dropped")

		default:
			bp.logger.Error("failed to process buffer item",
				zap.String("item_id", item.ID),
				zap.String("entity", item.Entity),
				zap.String("task_id", item.TaskID),
				zap.Error(err))
			if _, err := bp.store.Retry(item); err != nil {
				bp.logger.Error("failed to requeue buffer item", zap.Error(err))
			}
			if item.TaskID != "" {
				held[item.TaskID] = true
			}
			bp.metrics.IncDrained("retry")
		}
	}
	return nil
}

// BufferOperation persists item for a later Drain.
func (bp *BufferProcessor) BufferOperation(ctx context.Context, item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "offline buffer not configured", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := bp.store.Enqueue(item); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "offline buffer rejected operation", err)
	}
	bp.metrics.IncBuffered(item.Entity, item.Operation)
	return nil
}

// Size returns the number of buffered items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	switch item.Entity {
	case buffer.EntityTask:
		var task domain.Task
		if err := json.Unmarshal(item.Data, &task); err != nil {
			return err
		}
		switch item.Operation {
		case usecase.OperationCreate:
			_, err := bp.tasks.Create(ctx, &task)
			return err
		case usecase.OperationUpdate:
			return bp.tasks.Update(ctx, &task)
		case usecase.OperationDelete:
			return bp.tasks.Delete(ctx, task.ID)
		default:
			return fmt.Errorf("%w: operation %s", errUnsupported, item.Operation)
		}

	case buffer.EntityAssignment:
		var change usecase.AssignmentChange
		if err := json.Unmarshal(item.Data, &change); err != nil {
			return err
		}
		return bp.assignees.Replace(ctx, change.TaskID, change.Rows)

	case buffer.EntityTaskStatus:
		var change usecase.StatusChange
		if err := json.Unmarshal(item.Data, &change); err != nil {
			return err
		}
		task, err := bp.tasks.GetByID(ctx, change.TaskID)
		if err != nil {
			return err
		}
		task.Status = change.Status
		if change.Details != nil {
			task.Details = *change.Details
		}
		setUpdatedBy(task, change.ActorID)
		return bp.tasks.Update(ctx, task)

	case buffer.EntityTaskPatch:
		var patch usecase.TaskPatch
		if err := json.Unmarshal(item.Data, &patch); err != nil {
			return err
		}
		task, err := bp.tasks.GetByID(ctx, patch.TaskID)
		if err != nil {
			return err
		}
		if patch.Status != nil {
			task.Status = *patch.Status
		}
		if patch.Priority != nil {
			task.Priority = *patch.Priority
		}
		if patch.Details != nil {
			task.Details = *patch.Details
		}
		setUpdatedBy(task, patch.ActorID)
		return bp.tasks.Update(ctx, task)

	case buffer.EntityReassign:
		var change usecase.ReassignChange
		if err := json.Unmarshal(item.Data, &change); err != nil {
			return err
		}
		rows, err := bp.assignees.ListByTask(ctx, change.TaskID)
		if err != nil {
			return err
		}
		next, err := usecase.ReassignRows(rows, change.From, change.To)
		if err != nil {
			return err
		}
		return bp.assignees.Replace(ctx, change.TaskID, next)

	default:
		return fmt.Errorf("%w: entity %s", errUnsupported, item.Entity)
	}
}

var errUnsupported = errors.New("unsupported buffer item")

func setUpdatedBy(task *domain.Task, actorID string) {
	if actorID == "" {
		return
	}
	actor := actorID
	task.UpdatedBy = &actor
}

// isPermanent reports errors that no retry can fix.
func isPermanent(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.Is(err, errUnsupported) ||
		errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		domain.IsDomainError(err, domain.ErrCodeNotFound) ||
		domain.IsDomainError(err, domain.ErrCodeInvalid) ||
		domain.IsDomainError(err, domain.ErrCodeConflict)
}
