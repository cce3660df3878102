package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInteractionLifecycle(t *testing.T) {
	var in Interaction
	assert.Equal(t, PhaseIdle, in.State().Phase)

	in.DragOver("blocked")
	assert.Equal(t, PhaseIdle, in.State().Phase, "drag over while idle is ignored")

	in.DragStart("t1", "pending")
	assert.Equal(t, PhaseDragging, in.State().Phase)
	assert.True(t, in.IsActive("t1"))

	in.DragOver("blocked")
	assert.Equal(t, PhaseDragOver, in.State().Phase)
	assert.True(t, in.IsOver("blocked"))
	assert.False(t, in.IsOver("pending"))

	drop, ok := in.DragEnd()
	assert.True(t, ok)
	assert.Equal(t, Drop{TaskID: "t1", From: "pending", To: "blocked"}, drop)
	assert.Equal(t, DragState{}, in.State())
	assert.False(t, in.IsActive("t1"))
}

func TestInteractionNoDrop(t *testing.T) {
	cases := []struct {
		name string
		run  func(*Interaction)
	}{
		{"end without start", func(*Interaction) {}},
		{"end without hover", func(in *Interaction) { in.DragStart("t1", "pending") }},
		{"same column", func(in *Interaction) {
			in.DragStart("t1", "pending")
			in.DragOver("pending")
		}},
		{"left all columns", func(in *Interaction) {
			in.DragStart("t1", "pending")
			in.DragOver("blocked")
			in.DragOver("")
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var in Interaction
			tc.run(&in)
			_, ok := in.DragEnd()
			assert.False(t, ok)
			assert.Equal(t, PhaseIdle, in.State().Phase)
		})
	}
}

func TestDragPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "dragging", PhaseDragging.String())
	assert.Equal(t, "drag_over", PhaseDragOver.String())
}

func TestInteractionStateIsACopy(t *testing.T) {
	var in Interaction
	in.DragStart("t1", "pending")

	st := in.State()
	st.TaskID = "t2"
	st.Phase = PhaseIdle

	assert.Equal(t, "t1", in.State().TaskID)
	assert.Equal(t, PhaseDragging, in.State().Phase)
}
