package domain

import (
	"strings"
	"time"
)

// Role values carried by profiles and access tokens.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleViewer  = "viewer"
	RoleDriver  = "driver"
)

// Profile represents a person known to the platform: staff or driver.
type Profile struct {
	ID         string    `json:"id"`
	Name       *string   `json:"name,omitempty"`
	Email      *string   `json:"email,omitempty"`
	EmployeeID *string   `json:"employee_id,omitempty"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (p *Profile) IsDriver() bool {
	return p != nil && p.Role == RoleDriver
}

// DisplayName returns the trimmed name or "" when none is set.
func (p *Profile) DisplayName() string {
	if p == nil || p.Name == nil {
		return ""
	}
	return strings.TrimSpace(*p.Name)
}

// IsStaffRole reports whether role may use the admin surface.
func IsStaffRole(role string) bool {
	return role == RoleAdmin || role == RoleManager
}
