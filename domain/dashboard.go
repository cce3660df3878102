package domain

import "time"

// Dashboard periods accepted by the admin dashboard.
const (
	PeriodToday     = "today"
	PeriodYesterday = "yesterday"
	PeriodLast7     = "last7"
	PeriodLast30    = "last30"
	PeriodCustom    = "custom"
)

// DailyPoint is one day of the created/completed series.
type DailyPoint struct {
	Date      string `json:"date"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// DashboardSummary holds the KPIs shown on the admin dashboard for a date range.
type DashboardSummary struct {
	Period     string       `json:"period"`
	From       time.Time    `json:"from"`
	To         time.Time    `json:"to"`
	Created    int          `json:"created"`
	Completed  int          `json:"completed"`
	Overdue    int          `json:"overdue"`
	OnTimeRate int          `json:"on_time_rate"`
	Series     []DailyPoint `json:"series"`
}
