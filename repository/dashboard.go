package repository

import (
	"context"
	"time"
)

// DailyCount is the number of tasks created and completed on one calendar day.
type DailyCount struct {
	Date      string
	Created   int
	Completed int
}

// DashboardRepository aggregates in the database; no method returns per-task rows.
type DashboardRepository interface {
	CountCreated(ctx context.Context, from, to time.Time) (int, error)
	CountCompleted(ctx context.Context, from, to time.Time) (int, error)
	CountOverdue(ctx context.Context, now time.Time) (int, error)
	// CountOnTime counts tasks completed in [from, to) no later than their estimated end.
	CountOnTime(ctx context.Context, from, to time.Time) (int, error)
	// DailyCounts buckets [from, to) by calendar day in the IANA zone tz. Days
	// without activity are omitted.
	DailyCounts(ctx context.Context, from, to time.Time, tz string) ([]DailyCount, error)
}
