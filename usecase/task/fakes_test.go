package task

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/repository"
	"github.com/fastygo/dispatch/usecase"
)

var errDown = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}

type fakeTasks struct {
	mu      sync.Mutex
	tasks   map[string]domain.Task
	getErr  error
	saveErr error
	// rows receives the assignment half of the combined writes.
	rows *fakeAssignees
}

func newFakeTasks(tasks ...domain.Task) *fakeTasks {
	f := &fakeTasks{tasks: map[string]domain.Task{}}
	for _, t := range tasks {
		f.tasks[t.ID] = t
	}
	return f
}

func (f *fakeTasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	t, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (f *fakeTasks) List(context.Context, repository.TaskFilter) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTasks) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.tasks[t.ID] = *t
	return t, nil
}

func (f *fakeTasks) CreateWithAssignees(_ context.Context, t *domain.Task, rows []domain.TaskAssignee) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if err := f.rows.Replace(context.Background(), t.ID, rows); err != nil {
		return nil, err
	}
	f.tasks[t.ID] = *t
	return t, nil
}

func (f *fakeTasks) UpdateWithAssignees(_ context.Context, t *domain.Task, rows []domain.TaskAssignee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.tasks[t.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	if err := f.rows.Replace(context.Background(), t.ID, rows); err != nil {
		return err
	}
	f.tasks[t.ID] = *t
	return nil
}

func (f *fakeTasks) Update(_ context.Context, t *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.tasks[t.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	f.tasks[t.ID] = *t
	return nil
}

func (f *fakeTasks) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

type fakeAssignees struct {
	rows       map[string][]domain.TaskAssignee
	listErr    error
	replaceErr error
}

func newFakeAssignees() *fakeAssignees {
	return &fakeAssignees{rows: map[string][]domain.TaskAssignee{}}
}

func (f *fakeAssignees) List(context.Context) ([]domain.TaskAssignee, error) {
	out := make([]domain.TaskAssignee, 0)
	for _, rows := range f.rows {
		out = append(out, rows...)
	}
	return out, nil
}

func (f *fakeAssignees) ListByTask(_ context.Context, taskID string) ([]domain.TaskAssignee, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.TaskAssignee{}, f.rows[taskID]...), nil
}

func (f *fakeAssignees) Replace(_ context.Context, taskID string, rows []domain.TaskAssignee) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.rows[taskID] = append([]domain.TaskAssignee{}, rows...)
	return nil
}

type fakeAudit struct {
	entries []domain.AuditEntry
}

func (f *fakeAudit) Append(_ context.Context, e *domain.AuditEntry) error {
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeAudit) List(context.Context, repository.AuditFilter) ([]domain.AuditEntry, error) {
	return f.entries, nil
}

type fakeNotifications struct {
	inserted []domain.Notification
}

func (f *fakeNotifications) ListForUser(context.Context, string, int, int) ([]domain.Notification, error) {
	return nil, nil
}

func (f *fakeNotifications) GetMany(context.Context, []string) ([]domain.Notification, error) {
	return nil, nil
}

func (f *fakeNotifications) Update(context.Context, *domain.Notification) error { return nil }

func (f *fakeNotifications) Insert(_ context.Context, n []domain.Notification) error {
	f.inserted = append(f.inserted, n...)
	return nil
}

type fakePublisher struct {
	published []domain.Notification
}

func (f *fakePublisher) Publish(_ context.Context, n []domain.Notification) error {
	f.published = append(f.published, n...)
	return nil
}

type fakeCache struct {
	invalidations int
}

func (f *fakeCache) Get(context.Context, string) (*domain.DashboardSummary, error) {
	return nil, domain.ErrCacheMiss
}

func (f *fakeCache) Set(context.Context, string, *domain.DashboardSummary) error { return nil }

func (f *fakeCache) Invalidate(context.Context) error {
	f.invalidations++
	return nil
}

type fakeBuffer struct {
	tasks       []string
	patches     []usecase.TaskPatch
	assignments []usecase.AssignmentChange
	reassigns   []usecase.ReassignChange
	statuses    []usecase.StatusChange
}

func (f *fakeBuffer) BufferTask(_ context.Context, op string, t *domain.Task, _ string) error {
	f.tasks = append(f.tasks, op+":"+t.ID)
	return nil
}

func (f *fakeBuffer) BufferPatch(_ context.Context, p usecase.TaskPatch) error {
	f.patches = append(f.patches, p)
	return nil
}

func (f *fakeBuffer) BufferReassign(_ context.Context, c usecase.ReassignChange) error {
	f.reassigns = append(f.reassigns, c)
	return nil
}

func (f *fakeBuffer) BufferAssignments(_ context.Context, c usecase.AssignmentChange) error {
	f.assignments = append(f.assignments, c)
	return nil
}

func (f *fakeBuffer) BufferStatusChange(_ context.Context, c usecase.StatusChange) error {
	f.statuses = append(f.statuses, c)
	return nil
}

type harness struct {
	uc        *UseCase
	tasks     *fakeTasks
	assignees *fakeAssignees
	audit     *fakeAudit
	notes     *fakeNotifications
	publisher *fakePublisher
	cache     *fakeCache
	buffer    *fakeBuffer
}

func newHarness(tasks ...domain.Task) *harness {
	h := &harness{
		tasks:     newFakeTasks(tasks...),
		assignees: newFakeAssignees(),
		audit:     &fakeAudit{},
		notes:     &fakeNotifications{},
		publisher: &fakePublisher{},
		cache:     &fakeCache{},
		buffer:    &fakeBuffer{},
	}
	h.tasks.rows = h.assignees
	h.uc = New(Deps{
		Tasks:         h.tasks,
		Assignees:     h.assignees,
		Audit:         h.audit,
		Notifications: h.notes,
		Publisher:     h.publisher,
		Cache:         h.cache,
		Buffer:        h.buffer,
	}, nil)
	return h
}
