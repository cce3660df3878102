package board

import "github.com/fastygo/dispatch/domain"

// IndexByID maps every item to its id. When ids repeat the last item wins.
func IndexByID[T any](items []T, id func(T) string) map[string]T {
	out := make(map[string]T, len(items))
	for _, item := range items {
		out[id(item)] = item
	}
	return out
}

func IndexProfiles(profiles []domain.Profile) map[string]domain.Profile {
	return IndexByID(profiles, func(p domain.Profile) string { return p.ID })
}

func IndexClients(clients []domain.Client) map[string]domain.Client {
	return IndexByID(clients, func(c domain.Client) string { return c.ID })
}

func IndexVehicles(vehicles []domain.Vehicle) map[string]domain.Vehicle {
	return IndexByID(vehicles, func(v domain.Vehicle) string { return v.ID })
}

// IndexAssignments groups assignment rows by task id, keeping row order.
// Tasks without rows have no key; callers treat a missing key as an empty list.
func IndexAssignments(rows []domain.TaskAssignee) map[string][]domain.TaskAssignee {
	out := make(map[string][]domain.TaskAssignee)
	for _, row := range rows {
		out[row.TaskID] = append(out[row.TaskID], row)
	}
	return out
}
