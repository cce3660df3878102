package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/dispatch/domain"
)

func TestIndexByIDLastWins(t *testing.T) {
	idx := IndexClients([]domain.Client{{ID: "c1", Name: "first"}, {ID: "c2", Name: "other"}, {ID: "c1", Name: "second"}})
	assert.Len(t, idx, 2)
	assert.Equal(t, "second", idx["c1"].Name)

	assert.Empty(t, IndexVehicles(nil))
}

func TestIndexAssignmentsKeepsInsertionOrder(t *testing.T) {
	rows := []domain.TaskAssignee{
		assign("t1", "d2", false),
		assign("t2", "d1", true),
		assign("t1", "d1", true),
	}
	idx := IndexAssignments(rows)

	assert.Len(t, idx, 2)
	assert.Equal(t, []string{"d2", "d1"}, []string{idx["t1"][0].DriverID, idx["t1"][1].DriverID})
	_, ok := idx["t3"]
	assert.False(t, ok)
}
