package board

// DragPhase is the state of the pointer interaction on the board.
type DragPhase int

const (
	PhaseIdle DragPhase = iota
	PhaseDragging
	PhaseDragOver
)

func (p DragPhase) String() string {
	switch p {
	case PhaseDragging:
		return "dragging"
	case PhaseDragOver:
		return "drag_over"
	default:
		return "idle"
	}
}

// DragState is a read-only copy of the interaction state.
type DragState struct {
	Phase        DragPhase
	TaskID       string
	SourceColumn string
	OverColumn   string
}

// Drop describes where a dragged task was released.
// Persisting it is the caller's job.
type Drop struct {
	TaskID string
	From   string
	To     string
}

// Interaction tracks idle -> dragging -> dragOver -> idle.
// The zero value is idle. Not safe for concurrent use.
type Interaction struct {
	state DragState
}

// DragStart begins dragging taskID out of columnID. Any previous drag is discarded.
func (i *Interaction) DragStart(taskID, columnID string) {
	if taskID == "" {
		return
	}
	i.state = DragState{Phase: PhaseDragging, TaskID: taskID, SourceColumn: columnID}
}

// DragOver marks columnID as the hover target. An empty id means the pointer
// left every column. Ignored while idle.
func (i *Interaction) DragOver(columnID string) {
	if i.state.Phase == PhaseIdle {
		return
	}
	if columnID == "" {
		i.state.Phase = PhaseDragging
		i.state.OverColumn = ""
		return
	}
	i.state.Phase = PhaseDragOver
	i.state.OverColumn = columnID
}

// DragEnd resets to idle. It reports a Drop when the task was released over a
// column other than its source.
func (i *Interaction) DragEnd() (Drop, bool) {
	st := i.state
	i.state = DragState{}
	if st.Phase != PhaseDragOver || st.OverColumn == st.SourceColumn {
		return Drop{}, false
	}
	return Drop{TaskID: st.TaskID, From: st.SourceColumn, To: st.OverColumn}, true
}

// State returns a copy of the current drag state; Phase is PhaseIdle between drags.
func (i *Interaction) State() DragState {
	return i.state
}

// IsActive reports whether taskID is the one being dragged.
func (i *Interaction) IsActive(taskID string) bool {
	return i.state.Phase != PhaseIdle && i.state.TaskID == taskID
}

// IsOver reports whether columnID is the current hover target.
func (i *Interaction) IsOver(columnID string) bool {
	return i.state.Phase == PhaseDragOver && i.state.OverColumn == columnID
}
