package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (f *fakePinger) Ping(context.Context) error { return f.err }

type fakeQueue struct {
	size int
	err  error
}

func (f fakeQueue) Size() (int, error) { return f.size, f.err }

func TestRefreshReportsEachDependency(t *testing.T) {
	pg := &fakePinger{}
	rd := &fakePinger{err: errors.New("down")}
	m := New(pg, rd, fakeQueue{size: 7}, time.Hour, nil)

	status := m.Refresh()
	assert.True(t, status.PostgreSQL)
	assert.False(t, status.Redis)
	assert.True(t, status.Buffer)
	assert.Equal(t, 7, status.BufferSize)
	assert.False(t, status.Healthy())
	assert.True(t, m.IsOnline())

	pg.err = errors.New("gone")
	rd.err = nil
	m.Refresh()
	assert.False(t, m.IsOnline())
	assert.True(t, m.GetStatus().Redis)
}

func TestMissingDependenciesAreOffline(t *testing.T) {
	m := New(nil, nil, nil, 0, nil)
	status := m.Refresh()
	assert.False(t, status.PostgreSQL)
	assert.False(t, status.Buffer)
	assert.False(t, m.IsOnline())
}

func TestBufferErrorMarksBufferUnhealthy(t *testing.T) {
	m := New(&fakePinger{}, &fakePinger{}, fakeQueue{err: errors.New("closed")}, time.Hour, nil)
	status := m.Refresh()
	assert.False(t, status.Buffer)
	assert.False(t, status.Healthy())
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	m := New(&fakePinger{}, &fakePinger{}, fakeQueue{}, time.Millisecond, nil)
	m.Start()
	assert.True(t, m.GetStatus().Healthy())
	m.Stop()
	m.Stop()
}
