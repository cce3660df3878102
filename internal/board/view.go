package board

import "github.com/fastygo/dispatch/domain"

// Snapshot is the data a single board render works from.
type Snapshot struct {
	Tasks     []domain.Task         `json:"tasks"`
	Drivers   []domain.Profile      `json:"drivers"`
	Assignees []domain.TaskAssignee `json:"task_assignees"`
	Clients   []domain.Client       `json:"clients"`
	Vehicles  []domain.Vehicle      `json:"vehicles"`
}

// Card is a task with its references resolved for display.
type Card struct {
	Task          domain.Task           `json:"task"`
	TypeLabel     string                `json:"type_label"`
	PriorityLabel string                `json:"priority_label"`
	StatusLabel   string                `json:"status_label"`
	LeadDriver    string                `json:"lead_driver,omitempty"`
	Client        string                `json:"client,omitempty"`
	Vehicle       string                `json:"vehicle,omitempty"`
	Assignees     []domain.TaskAssignee `json:"assignees"`
}

// Column is a render-ready board column.
type Column struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Kind      Mode   `json:"kind"`
	TaskCount int    `json:"task_count"`
	Cards     []Card `json:"cards"`
}

// Descriptor is the {id, label, taskCount} summary of a column.
type Descriptor struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	TaskCount int    `json:"task_count"`
}

type indices struct {
	drivers   map[string]domain.Profile
	clients   map[string]domain.Client
	vehicles  map[string]domain.Vehicle
	assignees map[string][]domain.TaskAssignee
}

// View is the board projection of one snapshot under one grouping mode.
type View struct {
	Mode    Mode     `json:"mode"`
	Columns []Column `json:"columns"`

	snapshot Snapshot
	idx      indices
}

// New builds the view of s grouped by mode. Unknown modes fall back to status.
func New(s Snapshot, mode Mode) *View {
	if mode != ModeDriver {
		mode = ModeStatus
	}
	idx := indices{
		drivers:   IndexProfiles(s.Drivers),
		clients:   IndexClients(s.Clients),
		vehicles:  IndexVehicles(s.Vehicles),
		assignees: IndexAssignments(s.Assignees),
	}
	v := &View{Mode: mode, snapshot: s, idx: idx}
	v.Columns = v.buildColumns()
	return v
}

// WithMode returns the same snapshot grouped by mode. The receiver is unchanged.
func (v *View) WithMode(mode Mode) *View {
	if v == nil {
		return New(Snapshot{}, mode)
	}
	if mode != ModeDriver {
		mode = ModeStatus
	}
	out := &View{Mode: mode, snapshot: v.snapshot, idx: v.idx}
	out.Columns = out.buildColumns()
	return out
}

// Toggle switches to the other grouping mode.
func (v *View) Toggle() *View {
	if v == nil {
		return New(Snapshot{}, ModeDriver)
	}
	return v.WithMode(v.Mode.Toggle())
}

// Column looks up a column by id.
func (v *View) Column(id string) (Column, bool) {
	if v == nil {
		return Column{}, false
	}
	for _, c := range v.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}

// Descriptors summarises the columns for headers.
func (v *View) Descriptors() []Descriptor {
	if v == nil {
		return nil
	}
	out := make([]Descriptor, 0, len(v.Columns))
	for _, c := range v.Columns {
		out = append(out, Descriptor{ID: c.ID, Label: c.Label, TaskCount: c.TaskCount})
	}
	return out
}

// TotalCards counts cards across all columns; a fanned-out task counts once per column.
func (v *View) TotalCards() int {
	if v == nil {
		return 0
	}
	total := 0
	for _, c := range v.Columns {
		total += c.TaskCount
	}
	return total
}

// Assignees returns the assignment rows of a task, or an empty list.
func (v *View) Assignees(taskID string) []domain.TaskAssignee {
	if v == nil {
		return []domain.TaskAssignee{}
	}
	rows := v.idx.assignees[taskID]
	if rows == nil {
		return []domain.TaskAssignee{}
	}
	return rows
}

func (v *View) buildColumns() []Column {
	defs := BuildColumns(v.Mode, v.snapshot.Assignees, v.idx.drivers)
	part := NewPartitioner(v.Mode, v.snapshot.Tasks, v.snapshot.Assignees)

	cols := make([]Column, 0, len(defs))
	for _, def := range defs {
		tasks := part.ColumnTasks(def.ID)
		cards := make([]Card, 0, len(tasks))
		for _, t := range tasks {
			cards = append(cards, v.card(t))
		}
		cols = append(cols, Column{
			ID:        def.ID,
			Label:     def.Label,
			Kind:      def.Kind,
			TaskCount: len(cards),
			Cards:     cards,
		})
	}
	return cols
}

func (v *View) card(t domain.Task) Card {
	rows := v.Assignees(t.ID)
	c := Card{
		Task:          t,
		TypeLabel:     t.Type.Label(),
		PriorityLabel: t.Priority.Label(),
		StatusLabel:   t.Status.Label(),
		Assignees:     rows,
	}
	for _, row := range rows {
		if row.IsLead {
			c.LeadDriver = driverLabel(row.DriverID, v.idx.drivers)
			break
		}
	}
	if t.ClientID != nil {
		c.Client = missingReference
		if cl, ok := v.idx.clients[*t.ClientID]; ok && cl.Name != "" {
			c.Client = cl.Name
		}
	}
	if t.VehicleID != nil {
		c.Vehicle = missingReference
		if vh, ok := v.idx.vehicles[*t.VehicleID]; ok && vh.LicensePlate != "" {
			c.Vehicle = vh.LicensePlate
		}
	}
	return c
}
