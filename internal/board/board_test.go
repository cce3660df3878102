package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/dispatch/domain"
)

func strPtr(s string) *string { return &s }

func task(id string, status domain.TaskStatus) domain.Task {
	return domain.Task{ID: id, Title: "task " + id, Status: status, Type: domain.TypeOther, Priority: domain.PriorityMedium}
}

func assign(taskID, driverID string, lead bool) domain.TaskAssignee {
	return domain.TaskAssignee{ID: taskID + "-" + driverID, TaskID: taskID, DriverID: driverID, IsLead: lead}
}

func scenario() Snapshot {
	return Snapshot{
		Tasks: []domain.Task{
			task("t1", domain.StatusPending),
			task("t2", domain.StatusInProgress),
			task("t3", domain.StatusCompleted),
		},
		Drivers: []domain.Profile{
			{ID: "d1", Name: strPtr("Avi"), Role: domain.RoleDriver},
			{ID: "d2", Name: strPtr("Dana"), Role: domain.RoleDriver},
		},
		Assignees: []domain.TaskAssignee{
			assign("t1", "d1", true),
			assign("t3", "d1", true),
			assign("t2", "d2", true),
		},
	}
}

func taskIDs(c Column) []string {
	ids := make([]string, 0, len(c.Cards))
	for _, card := range c.Cards {
		ids = append(ids, card.Task.ID)
	}
	return ids
}

func TestStatusModeScenario(t *testing.T) {
	v := New(scenario(), ModeStatus)

	require.Len(t, v.Columns, 4)
	want := map[string][]string{
		"pending":     {"t1"},
		"in_progress": {"t2"},
		"blocked":     {},
		"completed":   {"t3"},
	}
	order := []string{"pending", "in_progress", "blocked", "completed"}
	for i, id := range order {
		assert.Equal(t, id, v.Columns[i].ID)
		assert.Equal(t, want[id], taskIDs(v.Columns[i]), "column %s", id)
		assert.Equal(t, len(want[id]), v.Columns[i].TaskCount)
	}
	assert.Equal(t, "ממתין", v.Columns[0].Label)
}

func TestDriverModeScenario(t *testing.T) {
	v := New(scenario(), ModeDriver)

	require.Len(t, v.Columns, 2)
	assert.Equal(t, "d1", v.Columns[0].ID)
	assert.Equal(t, "Avi", v.Columns[0].Label)
	assert.Equal(t, []string{"t1", "t3"}, taskIDs(v.Columns[0]))
	assert.Equal(t, "d2", v.Columns[1].ID)
	assert.Equal(t, []string{"t2"}, taskIDs(v.Columns[1]))
}

func TestStatusPartitionIsComplete(t *testing.T) {
	s := Snapshot{Tasks: []domain.Task{
		task("a", domain.StatusPending),
		task("b", domain.StatusBlocked),
		task("c", domain.StatusBlocked),
		task("d", domain.TaskStatus("archived")),
		task("e", domain.StatusCompleted),
	}}
	v := New(s, ModeStatus)

	valid := 0
	for _, tk := range s.Tasks {
		if tk.Status.Valid() {
			valid++
		}
	}
	assert.Equal(t, valid, v.TotalCards())
	assert.Equal(t, 4, v.TotalCards())
}

func TestModeSwitchConservesTasks(t *testing.T) {
	v := New(scenario(), ModeStatus)
	before := v.TotalCards()

	round := v.Toggle().Toggle()
	assert.Equal(t, ModeStatus, round.Mode)
	assert.Equal(t, before, round.TotalCards())
	assert.Equal(t, 3, round.TotalCards())
	assert.Equal(t, v.Descriptors(), round.Descriptors())
	assert.Equal(t, ModeStatus, v.Mode, "toggle must not mutate the receiver")
}

func TestDriverModeFanOut(t *testing.T) {
	s := Snapshot{
		Tasks: []domain.Task{task("shared", domain.StatusPending), task("lonely", domain.StatusPending)},
		Assignees: []domain.TaskAssignee{
			assign("shared", "d1", true),
			assign("shared", "d2", false),
		},
	}
	v := New(s, ModeDriver)

	appearances := map[string]int{}
	for _, c := range v.Columns {
		for _, id := range taskIDs(c) {
			appearances[id]++
		}
	}
	assert.Equal(t, 2, appearances["shared"])
	assert.Equal(t, 0, appearances["lonely"])
}

func TestDuplicateRowsDoNotDuplicateCards(t *testing.T) {
	s := Snapshot{
		Tasks:     []domain.Task{task("t1", domain.StatusPending)},
		Assignees: []domain.TaskAssignee{assign("t1", "d1", true), assign("t1", "d1", false)},
	}
	v := New(s, ModeDriver)
	require.Len(t, v.Columns, 1)
	assert.Equal(t, 1, v.Columns[0].TaskCount)
}

func TestBuildersAreIdempotent(t *testing.T) {
	s := scenario()
	drivers := IndexProfiles(s.Drivers)
	for _, mode := range []Mode{ModeStatus, ModeDriver} {
		first := BuildColumns(mode, s.Assignees, drivers)
		second := BuildColumns(mode, s.Assignees, drivers)
		assert.Equal(t, first, second)

		p := NewPartitioner(mode, s.Tasks, s.Assignees)
		for _, c := range first {
			assert.Equal(t, p.ColumnTasks(c.ID), p.ColumnTasks(c.ID))
		}
		assert.Equal(t, New(s, mode).Columns, New(s, mode).Columns)
	}
}

func TestUnknownDriverLabel(t *testing.T) {
	s := Snapshot{
		Tasks:     []domain.Task{task("t1", domain.StatusPending)},
		Drivers:   []domain.Profile{{ID: "nameless", Role: domain.RoleDriver}},
		Assignees: []domain.TaskAssignee{assign("t1", "ghost", true), assign("t1", "nameless", false)},
	}
	v := New(s, ModeDriver)
	require.Len(t, v.Columns, 2)
	assert.Equal(t, UnknownDriverLabel, v.Columns[0].Label)
	assert.Equal(t, UnknownDriverLabel, v.Columns[1].Label)

	status := v.WithMode(ModeStatus)
	card := status.Columns[0].Cards[0]
	assert.Equal(t, UnknownDriverLabel, card.LeadDriver)
}

func TestDriverColumnsOnlyForAssignedDrivers(t *testing.T) {
	s := scenario()
	s.Drivers = append(s.Drivers, domain.Profile{ID: "idle", Name: strPtr("Idle"), Role: domain.RoleDriver})
	v := New(s, ModeDriver)
	_, ok := v.Column("idle")
	assert.False(t, ok)
}

func TestCardResolvesReferences(t *testing.T) {
	t1 := task("t1", domain.StatusPending)
	t1.ClientID = strPtr("c1")
	t1.VehicleID = strPtr("missing")
	t2 := task("t2", domain.StatusPending)

	s := Snapshot{
		Tasks:     []domain.Task{t1, t2},
		Drivers:   []domain.Profile{{ID: "d1", Name: strPtr("Avi")}},
		Assignees: []domain.TaskAssignee{assign("t1", "d2", false), assign("t1", "d1", true)},
		Clients:   []domain.Client{{ID: "c1", Name: "Moshe"}},
	}
	col, ok := New(s, ModeStatus).Column("pending")
	require.True(t, ok)
	require.Len(t, col.Cards, 2)

	first := col.Cards[0]
	assert.Equal(t, "Avi", first.LeadDriver)
	assert.Equal(t, "Moshe", first.Client)
	assert.Equal(t, "—", first.Vehicle)
	assert.Equal(t, "אחר", first.TypeLabel)
	assert.Equal(t, "בינוני", first.PriorityLabel)
	assert.Len(t, first.Assignees, 2)

	second := col.Cards[1]
	assert.Empty(t, second.LeadDriver)
	assert.Empty(t, second.Client)
	assert.NotNil(t, second.Assignees)
	assert.Empty(t, second.Assignees)
}

func TestEmptySnapshot(t *testing.T) {
	status := New(Snapshot{}, ModeStatus)
	assert.Len(t, status.Columns, 4)
	assert.Zero(t, status.TotalCards())

	driver := New(Snapshot{}, ModeDriver)
	assert.Empty(t, driver.Columns)
	assert.Empty(t, driver.Descriptors())

	var nilView *View
	assert.Zero(t, nilView.TotalCards())
	assert.Empty(t, nilView.Assignees("x"))
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode(" Driver ")
	assert.True(t, ok)
	assert.Equal(t, ModeDriver, m)

	_, ok = ParseMode("priority")
	assert.False(t, ok)

	assert.Equal(t, ModeStatus, New(Snapshot{}, Mode("bogus")).Mode)
}
