package task

import (
	"strings"
	"time"

	"github.com/fastygo/dispatch/domain"
)

// BuildAssignees turns a lead and co-drivers into assignment rows. The lead
// comes first; blanks, duplicates and a co-driver equal to the lead are dropped.
// AssignedAt increases by a microsecond per row so listing order is stable.
func BuildAssignees(taskID, leadID string, coDriverIDs []string, now time.Time) []domain.TaskAssignee {
	rows := make([]domain.TaskAssignee, 0, len(coDriverIDs)+1)
	seen := make(map[string]struct{}, len(coDriverIDs)+1)

	add := func(driverID string, lead bool) {
		driverID = strings.TrimSpace(driverID)
		if driverID == "" {
			return
		}
		if _, dup := seen[driverID]; dup {
			return
		}
		seen[driverID] = struct{}{}
		rows = append(rows, domain.TaskAssignee{
			TaskID:     taskID,
			DriverID:   driverID,
			IsLead:     lead,
			AssignedAt: now.Add(time.Duration(len(rows)) * time.Microsecond),
		})
	}

	add(leadID, true)
	for _, id := range coDriverIDs {
		add(id, false)
	}
	return rows
}

// carryAssignedAt keeps the original assignment time of drivers that stay on the task.
func carryAssignedAt(rows, previous []domain.TaskAssignee) []domain.TaskAssignee {
	prev := make(map[string]time.Time, len(previous))
	for _, p := range previous {
		prev[p.DriverID] = p.AssignedAt
	}
	for i := range rows {
		if at, ok := prev[rows[i].DriverID]; ok {
			rows[i].AssignedAt = at
		}
	}
	return rows
}

// addedAssignees returns rows whose driver was not assigned before.
func addedAssignees(before, after []domain.TaskAssignee) []domain.TaskAssignee {
	had := make(map[string]struct{}, len(before))
	for _, b := range before {
		had[b.DriverID] = struct{}{}
	}
	out := make([]domain.TaskAssignee, 0)
	for _, a := range after {
		if _, ok := had[a.DriverID]; !ok {
			out = append(out, a)
		}
	}
	return out
}

func driverIDs(rows []domain.TaskAssignee) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.DriverID)
	}
	return ids
}

func leadDriverID(rows []domain.TaskAssignee) string {
	for _, r := range rows {
		if r.IsLead {
			return r.DriverID
		}
	}
	return ""
}
