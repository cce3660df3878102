package domain

import "time"

// Client is the customer a task is performed for.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Vehicle is a car handled by a task.
type Vehicle struct {
	ID           string    `json:"id"`
	LicensePlate string    `json:"license_plate"`
	Model        string    `json:"model"`
	VIN          string    `json:"vin"`
	CreatedAt    time.Time `json:"created_at"`
}
