package buffer

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	EntityTask       = "task"
	EntityTaskStatus = "task_status"
	EntityTaskPatch  = "task_patch"
	EntityAssignment = "assignment"
	EntityReassign   = "reassign"
)

// ErrFull is returned by Enqueue once the queue holds MaxSize items.
var ErrFull = errors.New("buffer: queue is full")

// Item is a write that could not reach Postgres and waits for replay.
// Items drain strictly in enqueue order.
type Item struct {
	ID        string          `json:"id"`
	ActorID   string          `json:"actor_id,omitempty"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	// TaskID groups items that must replay in enqueue order.
	TaskID    string          `json:"task_id,omitempty"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	key []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now().UTC()
	}
}
