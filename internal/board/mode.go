package board

import "strings"

// Mode is the dimension the board columns are grouped by.
type Mode string

const (
	ModeStatus Mode = "status"
	ModeDriver Mode = "driver"
)

// ParseMode accepts "status" or "driver" (case-insensitive).
func ParseMode(raw string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeStatus:
		return ModeStatus, true
	case ModeDriver:
		return ModeDriver, true
	}
	return "", false
}

// Toggle flips between the two grouping modes.
func (m Mode) Toggle() Mode {
	if m == ModeDriver {
		return ModeStatus
	}
	return ModeDriver
}
