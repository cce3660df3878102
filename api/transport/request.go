package transport

import (
	"time"

	"github.com/fastygo/dispatch/domain"
)

// TaskRequest is the body of task create and full update.
type TaskRequest struct {
	Title          string     `json:"title" validate:"required,max=200"`
	Type           string     `json:"type" validate:"required,oneof=pickup_or_dropoff_car replacement_car_delivery drive_client_home drive_client_to_dealership licence_test rescue_stuck_car other"`
	Priority       string     `json:"priority" validate:"required,oneof=low medium high"`
	Status         string     `json:"status" validate:"required,oneof=pending in_progress blocked completed"`
	EstimatedStart *time.Time `json:"estimated_start"`
	EstimatedEnd   *time.Time `json:"estimated_end"`
	Address        string     `json:"address" validate:"max=500"`
	Details        string     `json:"details" validate:"max=5000"`
	ClientID       *string    `json:"client_id" validate:"omitempty,uuid"`
	VehicleID      *string    `json:"vehicle_id" validate:"omitempty,uuid"`
	LeadDriverID   string     `json:"lead_driver_id" validate:"omitempty,uuid"`
	CoDriverIDs    []string   `json:"co_driver_ids" validate:"omitempty,max=20,dive,uuid"`
}

// Task converts the request into a domain task with the given id.
func (r TaskRequest) Task(id string) domain.Task {
	return domain.Task{
		ID:             id,
		Title:          r.Title,
		Type:           domain.TaskType(r.Type),
		Priority:       domain.TaskPriority(r.Priority),
		Status:         domain.TaskStatus(r.Status),
		EstimatedStart: r.EstimatedStart,
		EstimatedEnd:   r.EstimatedEnd,
		Address:        r.Address,
		Details:        r.Details,
		ClientID:       r.ClientID,
		VehicleID:      r.VehicleID,
	}
}

// AssignsDrivers reports whether the request carries an assignment list.
// An explicit empty co_driver_ids clears the co-drivers.
func (r TaskRequest) AssignsDrivers() bool {
	return r.LeadDriverID != "" || r.CoDriverIDs != nil
}

// TaskPatchRequest changes status, priority or details in place.
type TaskPatchRequest struct {
	Status   *string `json:"status" validate:"omitempty,oneof=pending in_progress blocked completed"`
	Priority *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Details  *string `json:"details" validate:"omitempty,max=5000"`
}

// BoardMoveRequest persists a drop on the board.
type BoardMoveRequest struct {
	TaskID  string `json:"task_id" validate:"required,uuid"`
	From    string `json:"from"`
	To      string `json:"to" validate:"required"`
	GroupBy string `json:"group_by" validate:"omitempty,oneof=status driver"`
}

// DriverStatusRequest is a driver's status change with checklist and completion answers.
type DriverStatusRequest struct {
	Status      string                 `json:"status" validate:"required,oneof=pending in_progress blocked completed"`
	Checklist   map[string]interface{} `json:"checklist"`
	Completion  map[string]interface{} `json:"completion"`
	Details     *string                `json:"details" validate:"omitempty,max=1000"`
	AdvisorName *string                `json:"advisor_name" validate:"omitempty,max=120"`
}

// NotificationPatchRequest marks one (id) or several (ids) notifications.
type NotificationPatchRequest struct {
	ID      string                 `json:"id" validate:"omitempty,uuid"`
	IDs     []string               `json:"ids" validate:"omitempty,max=500,dive,uuid"`
	Read    *bool                  `json:"read"`
	Payload map[string]interface{} `json:"payload"`
}

type PushKeysRequest struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

type PushSubscribeRequest struct {
	Endpoint string          `json:"endpoint" validate:"required,url"`
	Keys     PushKeysRequest `json:"keys"`
}

type PushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

type ProfileUpdateRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}
