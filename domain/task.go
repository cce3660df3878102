package domain

import "time"

// TaskStatus is the lifecycle state of a dispatch task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusBlocked    TaskStatus = "blocked"
	StatusCompleted  TaskStatus = "completed"
)

// Statuses lists every known status in board order.
var Statuses = []TaskStatus{StatusPending, StatusInProgress, StatusBlocked, StatusCompleted}

// Valid reports whether s is one of the four known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusBlocked, StatusCompleted:
		return true
	}
	return false
}

// TaskPriority ranks tasks on the board.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskType is the kind of dispatch work.
type TaskType string

const (
	TypePickupOrDropoffCar      TaskType = "pickup_or_dropoff_car"
	TypeReplacementCarDelivery  TaskType = "replacement_car_delivery"
	TypeDriveClientHome         TaskType = "drive_client_home"
	TypeDriveClientToDealership TaskType = "drive_client_to_dealership"
	TypeLicenceTest             TaskType = "licence_test"
	TypeRescueStuckCar          TaskType = "rescue_stuck_car"
	TypeOther                   TaskType = "other"
)

func (t TaskType) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

var statusLabels = map[TaskStatus]string{
	StatusPending:    "ממתין",
	StatusInProgress: "בתהליך",
	StatusBlocked:    "חסום",
	StatusCompleted:  "הושלם",
}

var priorityLabels = map[TaskPriority]string{
	PriorityLow:    "נמוך",
	PriorityMedium: "בינוני",
	PriorityHigh:   "גבוה",
}

var typeLabels = map[TaskType]string{
	TypePickupOrDropoffCar:      "איסוף/הורדת רכב",
	TypeReplacementCarDelivery:  "הסעת רכב חלופי",
	TypeDriveClientHome:         "הסעת לקוח הביתה",
	TypeDriveClientToDealership: "הסעת לקוח למוסך",
	TypeLicenceTest:             "ביצוע טסט",
	TypeRescueStuckCar:          "חילוץ רכב תקוע",
	TypeOther:                   "אחר",
}

// Label returns the Hebrew display label, or the raw value when unknown.
func (s TaskStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (p TaskPriority) Label() string {
	if l, ok := priorityLabels[p]; ok {
		return l
	}
	return string(p)
}

func (t TaskType) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Task represents a unit of dispatch work.
type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Type           TaskType     `json:"type"`
	Priority       TaskPriority `json:"priority"`
	Status         TaskStatus   `json:"status"`
	EstimatedStart *time.Time   `json:"estimated_start,omitempty"`
	EstimatedEnd   *time.Time   `json:"estimated_end,omitempty"`
	Address        string       `json:"address"`
	Details        string       `json:"details,omitempty"`
	ClientID       *string      `json:"client_id,omitempty"`
	VehicleID      *string      `json:"vehicle_id,omitempty"`
	CreatedBy      *string      `json:"created_by,omitempty"`
	UpdatedBy      *string      `json:"updated_by,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// IsOverdue reports whether the estimated end has passed while the task is still open.
func (t *Task) IsOverdue(now time.Time) bool {
	if t == nil || t.EstimatedEnd == nil || t.IsCompleted() {
		return false
	}
	return t.EstimatedEnd.Before(now)
}

// Intersects reports whether the task window overlaps [from, to).
// A task with only one bound set matches when that bound falls inside the range.
func (t *Task) Intersects(from, to time.Time) bool {
	if t == nil {
		return false
	}
	s, e := t.EstimatedStart, t.EstimatedEnd
	switch {
	case s != nil && e != nil:
		return s.Before(to) && e.After(from)
	case s != nil:
		return !s.Before(from) && s.Before(to)
	case e != nil:
		return !e.Before(from) && e.Before(to)
	}
	return false
}

// TaskAssignee links a task to a driver.
type TaskAssignee struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id"`
	DriverID   string    `json:"driver_id"`
	IsLead     bool      `json:"is_lead"`
	AssignedAt time.Time `json:"assigned_at"`
}
