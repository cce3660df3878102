package driver

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/internal/checklist"
	"github.com/fastygo/dispatch/internal/infrastructure/localcache"
	"github.com/fastygo/dispatch/repository"
	taskUC "github.com/fastygo/dispatch/usecase/task"
)

type fakeTasks struct {
	byDriver map[string][]domain.Task
	err      error
}

func (f *fakeTasks) GetByID(context.Context, string) (*domain.Task, error) { return nil, nil }

func (f *fakeTasks) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	src := f.byDriver[filter.DriverID]
	out := make([]domain.Task, len(src))
	copy(out, src)
	return out, nil
}

func (f *fakeTasks) Create(context.Context, *domain.Task) (*domain.Task, error) { return nil, nil }
func (f *fakeTasks) Update(context.Context, *domain.Task) error                 { return nil }
func (f *fakeTasks) Delete(context.Context, string) error                       { return nil }

func (f *fakeTasks) CreateWithAssignees(context.Context, *domain.Task, []domain.TaskAssignee) (*domain.Task, error) {
	return nil, nil
}

func (f *fakeTasks) UpdateWithAssignees(context.Context, *domain.Task, []domain.TaskAssignee) error {
	return nil
}

type fakeChanger struct {
	calls []taskUC.StatusInput
	err   error
}

func (f *fakeChanger) ChangeStatus(_ context.Context, in taskUC.StatusInput) (*taskUC.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, in)
	return &taskUC.Result{Task: &domain.Task{ID: in.TaskID, Status: in.Status}}, nil
}

var zone = time.FixedZone("IDT", 3*60*60)

func at(day, hour int) *time.Time {
	t := time.Date(2025, 6, day, hour, 0, 0, 0, zone)
	return &t
}

func setup(t *testing.T) (*UseCase, *fakeTasks, *fakeChanger) {
	t.Helper()
	tasks := &fakeTasks{byDriver: map[string][]domain.Task{
		"d1": {
			{ID: "today", Type: domain.TypeOther, Status: domain.StatusPending, EstimatedStart: at(10, 9), EstimatedEnd: at(10, 14)},
			{ID: "late", Type: domain.TypeOther, Status: domain.StatusInProgress, EstimatedEnd: at(9, 18)},
			{ID: "done", Type: domain.TypeOther, Status: domain.StatusCompleted, EstimatedEnd: at(9, 10)},
			{ID: "test", Type: domain.TypeLicenceTest, Status: domain.StatusPending, Details: "Bring papers"},
			{ID: "delivery", Type: domain.TypeReplacementCarDelivery, Status: domain.StatusInProgress},
			// 01:00 local on the 11th is still the 10th in UTC.
			{ID: "early", Type: domain.TypeOther, Status: domain.StatusPending, EstimatedStart: at(11, 1)},
		},
	}}
	cache, err := localcache.OpenStore(filepath.Join(t.TempDir(), "cache.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	changer := &fakeChanger{}
	uc := New(Deps{Tasks: tasks, Changer: changer, Cache: cache, Location: zone}, nil)
	uc.now = func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, zone) }
	return uc, tasks, changer
}

func ids(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestParseTab(t *testing.T) {
	tab, err := ParseTab("")
	require.NoError(t, err)
	assert.Equal(t, TabToday, tab)

	tab, err = ParseTab("Overdue")
	require.NoError(t, err)
	assert.Equal(t, TabOverdue, tab)

	_, err = ParseTab("week")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestListTasksByTab(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	list, err := uc.ListTasks(ctx, "d1", TabToday)
	require.NoError(t, err)
	assert.Equal(t, []string{"today"}, ids(list.Tasks))

	list, err = uc.ListTasks(ctx, "d1", TabOverdue)
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, ids(list.Tasks))

	list, err = uc.ListTasks(ctx, "d1", TabAll)
	require.NoError(t, err)
	assert.Len(t, list.Tasks, 6)
	assert.False(t, list.Stale)
}

func TestListTasksFallsBackToCache(t *testing.T) {
	uc, tasks, _ := setup(t)
	ctx := context.Background()

	_, err := uc.ListTasks(ctx, "d1", TabAll)
	require.NoError(t, err)

	tasks.err = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	list, err := uc.ListTasks(ctx, "d1", TabAll)
	require.NoError(t, err)
	assert.True(t, list.Stale)
	assert.Len(t, list.Tasks, 6)

	_, err = uc.ListTasks(ctx, "d2", TabAll)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
}

func TestUpdateStatusRequiresAssignment(t *testing.T) {
	uc, _, changer := setup(t)
	_, err := uc.UpdateStatus(context.Background(), StatusInput{TaskID: "foreign", DriverID: "d1", Status: domain.StatusInProgress})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
	assert.Empty(t, changer.calls)

	_, err = uc.UpdateStatus(context.Background(), StatusInput{TaskID: "today", DriverID: "d1", Status: "archived"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestUpdateStatusStartChecklist(t *testing.T) {
	uc, _, changer := setup(t)
	ctx := context.Background()

	_, err := uc.UpdateStatus(ctx, StatusInput{
		TaskID:    "test",
		DriverID:  "d1",
		Status:    domain.StatusInProgress,
		Checklist: checklist.Values{"car_license": true},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "client_license")
	assert.Empty(t, changer.calls)

	res, err := uc.UpdateStatus(ctx, StatusInput{
		TaskID:    "test",
		DriverID:  "d1",
		Status:    domain.StatusInProgress,
		Checklist: checklist.Values{"car_license": true, "client_license": "true", "vehicle_insurance": true},
	})
	require.NoError(t, err)
	assert.Equal(t, true, res.Checklist["client_license"])
	require.Len(t, changer.calls, 1)
	assert.Equal(t, "d1", changer.calls[0].ActorID)
	assert.Nil(t, changer.calls[0].Details)
}

func TestUpdateStatusCompletionFlows(t *testing.T) {
	uc, _, changer := setup(t)
	ctx := context.Background()

	_, err := uc.UpdateStatus(ctx, StatusInput{
		TaskID:     "delivery",
		DriverID:   "d1",
		Status:     domain.StatusCompleted,
		Completion: checklist.Values{"signature_url": "sig.png"},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "שדה חובה", verr.Fields["photo_url"])

	_, err = uc.UpdateStatus(ctx, StatusInput{
		TaskID:     "delivery",
		DriverID:   "d1",
		Status:     domain.StatusCompleted,
		Completion: checklist.Values{"signature_url": "sig.png", "photo_url": "car.jpg", "odometer": "1200"},
	})
	require.NoError(t, err)
	require.Len(t, changer.calls, 1)
	require.NotNil(t, changer.calls[0].Details)
	assert.Equal(t, "חתימת לקוח: sig.png\nתמונת רכב: car.jpg\nקילומטראז': 1200", *changer.calls[0].Details)

	advisor := "Moshe"
	extra := "Paid 50"
	_, err = uc.UpdateStatus(ctx, StatusInput{
		TaskID:      "test",
		DriverID:    "d1",
		Status:      domain.StatusCompleted,
		Details:     &extra,
		AdvisorName: &advisor,
	})
	require.NoError(t, err)
	require.Len(t, changer.calls, 2)
	assert.Equal(t, "Bring papers\nעלויות נוספות/תוספות מחיר: Paid 50\nשם היועץ: Moshe", *changer.calls[1].Details)
}

func TestUpdateStatusWorksFromCacheWhenStoreIsDown(t *testing.T) {
	uc, tasks, changer := setup(t)
	ctx := context.Background()
	_, err := uc.ListTasks(ctx, "d1", TabAll)
	require.NoError(t, err)

	tasks.err = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	_, err = uc.UpdateStatus(ctx, StatusInput{TaskID: "today", DriverID: "d1", Status: domain.StatusBlocked})
	require.NoError(t, err)
	require.Len(t, changer.calls, 1)

	list, err := uc.ListTasks(ctx, "d1", TabToday)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlocked, list.Tasks[0].Status)
}
