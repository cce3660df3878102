package domain

import (
	"encoding/json"
	"time"
)

const (
	AuditActionCreated       = "created"
	AuditActionUpdated       = "updated"
	AuditActionStatusChanged = "status_changed"
	AuditActionReassigned    = "reassigned"
	AuditActionDeleted       = "deleted"
)

// AuditEntry records a change applied to a task.
type AuditEntry struct {
	ID        string          `json:"id"`
	TaskID    string          `json:"task_id"`
	ActorID   *string         `json:"actor_id,omitempty"`
	Action    string          `json:"action"`
	ChangedAt time.Time       `json:"changed_at"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	Diff      json.RawMessage `json:"diff,omitempty"`
}
