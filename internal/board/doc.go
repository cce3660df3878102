// Package board projects a snapshot of tasks, drivers and assignment rows into
// Kanban columns grouped by status or by assigned driver.
//
// Everything here is pure: inputs are never mutated, no I/O happens, and every
// function accepts nil or empty slices. Unknown references resolve to display
// fallbacks instead of errors.
package board
