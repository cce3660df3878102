package domain

import "time"

const NotificationTaskAssigned = "task_assigned"

// Notification is an in-app message addressed to a single profile.
type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Type      string                 `json:"type"`
	TaskID    *string                `json:"task_id,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}

// IsDeleted reports whether the notification was soft-deleted through its payload.
func (n *Notification) IsDeleted() bool {
	if n == nil || n.Payload == nil {
		return false
	}
	switch v := n.Payload["deleted"].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// PushKeys are the browser-provided encryption keys of a push subscription.
type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushSubscription is a browser push endpoint registered by a profile.
type PushSubscription struct {
	UserID    string    `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	Keys      PushKeys  `json:"keys"`
	UpdatedAt time.Time `json:"updated_at"`
}
