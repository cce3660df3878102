package board

import "github.com/fastygo/dispatch/domain"

const (
	// UnknownDriverLabel is shown for driver ids missing from the driver list.
	UnknownDriverLabel = "Unknown Driver"
	missingReference   = "—"
)

// ColumnDef identifies a column before tasks are placed into it.
type ColumnDef struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  Mode   `json:"kind"`
}

// BuildColumns derives the ordered columns for mode.
//
// Status mode always yields the four statuses, occupied or not. Driver mode
// yields one column per distinct driver id in rows, in order of first
// appearance; drivers without assignments get no column.
func BuildColumns(mode Mode, rows []domain.TaskAssignee, drivers map[string]domain.Profile) []ColumnDef {
	if mode == ModeDriver {
		return driverColumns(rows, drivers)
	}
	cols := make([]ColumnDef, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		cols = append(cols, ColumnDef{ID: string(s), Label: s.Label(), Kind: ModeStatus})
	}
	return cols
}

func driverColumns(rows []domain.TaskAssignee, drivers map[string]domain.Profile) []ColumnDef {
	seen := make(map[string]struct{}, len(rows))
	cols := make([]ColumnDef, 0)
	for _, row := range rows {
		if _, ok := seen[row.DriverID]; ok {
			continue
		}
		seen[row.DriverID] = struct{}{}
		cols = append(cols, ColumnDef{
			ID:    row.DriverID,
			Label: driverLabel(row.DriverID, drivers),
			Kind:  ModeDriver,
		})
	}
	return cols
}

func driverLabel(id string, drivers map[string]domain.Profile) string {
	d, ok := drivers[id]
	if !ok {
		return UnknownDriverLabel
	}
	if name := d.DisplayName(); name != "" {
		return name
	}
	return UnknownDriverLabel
}
