package board

import "github.com/fastygo/dispatch/domain"

// Partitioner answers which tasks belong to a column under one grouping mode.
//
// Status mode is disjoint since a task has a single status. Driver mode is not:
// a task with several co-driver rows appears in each of their columns.
type Partitioner struct {
	mode       Mode
	tasks      []domain.Task
	driverTask map[string]map[string]struct{}
}

// NewPartitioner prepares a partitioner over tasks and assignment rows.
func NewPartitioner(mode Mode, tasks []domain.Task, rows []domain.TaskAssignee) Partitioner {
	p := Partitioner{mode: mode, tasks: tasks}
	if mode == ModeDriver {
		p.driverTask = make(map[string]map[string]struct{})
		for _, row := range rows {
			set, ok := p.driverTask[row.DriverID]
			if !ok {
				set = make(map[string]struct{})
				p.driverTask[row.DriverID] = set
			}
			set[row.TaskID] = struct{}{}
		}
	}
	return p
}

// ColumnTasks returns the tasks of columnID in task-list order.
func (p Partitioner) ColumnTasks(columnID string) []domain.Task {
	out := make([]domain.Task, 0)
	if p.mode == ModeDriver {
		assigned := p.driverTask[columnID]
		if len(assigned) == 0 {
			return out
		}
		for _, t := range p.tasks {
			if _, ok := assigned[t.ID]; ok {
				out = append(out, t)
			}
		}
		return out
	}
	for _, t := range p.tasks {
		if string(t.Status) == columnID {
			out = append(out, t)
		}
	}
	return out
}
