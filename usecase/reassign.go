package usecase

import "github.com/fastygo/dispatch/domain"

// ReassignRows returns rows with the assignment of from handed to to. The new
// row keeps the lead flag of the old one. If to is already assigned the two
// rows merge and the lead flag is kept when either had it.
func ReassignRows(rows []domain.TaskAssignee, from, to string) ([]domain.TaskAssignee, error) {
	fromIdx, toIdx := -1, -1
	for i, r := range rows {
		switch r.DriverID {
		case from:
			fromIdx = i
		case to:
			toIdx = i
		}
	}
	if fromIdx < 0 {
		return nil, domain.NewError(domain.ErrCodeNotFound, "task is not assigned to the source driver")
	}
	if from == to {
		return rows, nil
	}

	next := make([]domain.TaskAssignee, 0, len(rows))
	for i, r := range rows {
		switch {
		case i == fromIdx && toIdx >= 0:
			continue
		case i == fromIdx:
			r.ID = ""
			r.DriverID = to
		case i == toIdx:
			r.IsLead = r.IsLead || rows[fromIdx].IsLead
		}
		next = append(next, r)
	}
	return next, nil
}
