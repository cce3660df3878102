package board

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/dispatch/domain"
	boardview "github.com/fastygo/dispatch/internal/board"
	"github.com/fastygo/dispatch/internal/infrastructure/localcache"
	"github.com/fastygo/dispatch/internal/metrics"
	"github.com/fastygo/dispatch/repository"
	"github.com/fastygo/dispatch/usecase"
	taskUC "github.com/fastygo/dispatch/usecase/task"
)

const snapshotKey = "board:snapshot"

// Mover persists a drop. Implemented by the task use case.
type Mover interface {
	ChangeStatus(ctx context.Context, in taskUC.StatusInput) (*taskUC.Result, error)
	Reassign(ctx context.Context, in taskUC.ReassignInput) (*taskUC.Result, error)
}

type Deps struct {
	Tasks     repository.TaskRepository
	Drivers   repository.ProfileRepository
	Assignees repository.AssigneeRepository
	Clients   repository.ClientRepository
	Vehicles  repository.VehicleRepository
	Mover     Mover
	Cache     localcache.Cache
	Metrics   *metrics.Metrics
}

type UseCase struct {
	deps        Deps
	defaultMode boardview.Mode
	logger      *zap.Logger
}

func New(deps Deps, defaultMode string, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Cache == nil {
		deps.Cache = localcache.Nop{}
	}
	mode, ok := boardview.ParseMode(defaultMode)
	if !ok {
		mode = boardview.ModeStatus
	}
	return &UseCase{deps: deps, defaultMode: mode, logger: logger}
}

// Result is a rendered board. Stale is set when the snapshot came from the local cache.
type Result struct {
	View     *boardview.View
	Stale    bool
	cachedAt time.Time
}

// CachedAt is when the served snapshot was fetched; zero for live results.
func (r *Result) CachedAt() time.Time { return r.cachedAt }

type cachedSnapshot struct {
	Snapshot  boardview.Snapshot `json:"snapshot"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// ResolveMode parses raw, falling back to the configured default when empty.
func (uc *UseCase) ResolveMode(raw string) (boardview.Mode, error) {
	if raw == "" {
		return uc.defaultMode, nil
	}
	mode, ok := boardview.ParseMode(raw)
	if !ok {
		return "", domain.NewValidationError("invalid grouping mode", map[string]string{"group_by": "must be status or driver"})
	}
	return mode, nil
}

// Board loads a fresh snapshot and builds the view. When Postgres is
// unreachable the last cached snapshot is served instead.
func (uc *UseCase) Board(ctx context.Context, mode boardview.Mode) (*Result, error) {
	snap, err := uc.Snapshot(ctx)
	if err == nil {
		uc.storeSnapshot(ctx, snap)
		view := boardview.New(snap, mode)
		uc.deps.Metrics.ObserveBoard(string(view.Mode), "live", view.TotalCards())
		return &Result{View: view}, nil
	}
	if !usecase.IsInfrastructureError(err) {
		return nil, err
	}

	var cached cachedSnapshot
	if cerr := uc.deps.Cache.Get(ctx, snapshotKey, &cached); cerr != nil {
		if !errors.Is(cerr, localcache.ErrNotFound) {
			uc.logger.Warn("board snapshot cache read failed", zap.Error(cerr))
		}
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "board data unavailable", err)
	}
	uc.logger.Warn("serving cached board snapshot", zap.Time("fetched_at", cached.FetchedAt), zap.Error(err))
	view := boardview.New(cached.Snapshot, mode)
	uc.deps.Metrics.ObserveBoard(string(view.Mode), "stale", view.TotalCards())
	return &Result{View: view, Stale: true, cachedAt: cached.FetchedAt}, nil
}

// Snapshot fetches the five board inputs concurrently.
func (uc *UseCase) Snapshot(ctx context.Context) (boardview.Snapshot, error) {
	var snap boardview.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tasks, err := uc.deps.Tasks.List(gctx, repository.TaskFilter{Limit: -1})
		snap.Tasks = tasks
		return err
	})
	g.Go(func() error {
		drivers, err := uc.deps.Drivers.ListByRole(gctx, domain.RoleDriver)
		snap.Drivers = drivers
		return err
	})
	g.Go(func() error {
		rows, err := uc.deps.Assignees.List(gctx)
		snap.Assignees = rows
		return err
	})
	g.Go(func() error {
		clients, err := uc.deps.Clients.List(gctx)
		snap.Clients = clients
		return err
	})
	g.Go(func() error {
		vehicles, err := uc.deps.Vehicles.List(gctx)
		snap.Vehicles = vehicles
		return err
	})

	if err := g.Wait(); err != nil {
		return boardview.Snapshot{}, err
	}
	return snap, nil
}

func (uc *UseCase) storeSnapshot(ctx context.Context, snap boardview.Snapshot) {
	entry := cachedSnapshot{Snapshot: snap, FetchedAt: time.Now().UTC()}
	if err := uc.deps.Cache.Put(ctx, snapshotKey, entry); err != nil {
		uc.logger.Warn("board snapshot cache write failed", zap.Error(err))
	}
}

// MoveInput is a drop reported by the board: the card TaskID went from column From to column To.
type MoveInput struct {
	TaskID  string
	From    string
	To      string
	Mode    boardview.Mode
	ActorID string
}

// MoveTask persists a drop. In status mode the target column is the new status;
// in driver mode the assignment moves from driver From to driver To. Dropping on
// the source column changes nothing.
func (uc *UseCase) MoveTask(ctx context.Context, in MoveInput) (*taskUC.Result, error) {
	if in.TaskID == "" || in.To == "" {
		return nil, domain.ErrInvalidPayload
	}
	if uc.deps.Mover == nil {
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "board moves are not configured", nil)
	}

	switch in.Mode {
	case boardview.ModeStatus:
		status := domain.TaskStatus(in.To)
		if !status.Valid() {
			return nil, domain.NewValidationError("invalid target column", map[string]string{"to": "unknown status"})
		}
		if in.From == in.To {
			return &taskUC.Result{Task: &domain.Task{ID: in.TaskID, Status: status}}, nil
		}
		return uc.deps.Mover.ChangeStatus(ctx, taskUC.StatusInput{TaskID: in.TaskID, Status: status, ActorID: in.ActorID})

	case boardview.ModeDriver:
		if in.From == "" {
			return nil, domain.NewValidationError("invalid source column", map[string]string{"from": "required"})
		}
		return uc.deps.Mover.Reassign(ctx, taskUC.ReassignInput{TaskID: in.TaskID, From: in.From, To: in.To, ActorID: in.ActorID})
	}
	return nil, domain.NewValidationError("invalid grouping mode", map[string]string{"group_by": "must be status or driver"})
}
