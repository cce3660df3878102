package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShutdownRunsHooksInReverseOnce(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	m.Register("postgres", func(context.Context) error { order = append(order, "postgres"); return nil })
	m.Register("redis", func(context.Context) error { order = append(order, "redis"); return nil })
	m.Register("http", func(context.Context) error { order = append(order, "http"); return nil })
	m.Register("ignored", nil)

	assert.Equal(t, []string{"postgres", "redis", "http"}, m.Components())
	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http", "redis", "postgres"}, order)

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 3)
	assert.Empty(t, m.Components())
}

func TestShutdownJoinsErrorsAndContinues(t *testing.T) {
	m := New(time.Second, nil)
	errA := errors.New("a failed")
	ran := false
	m.Register("a", func(context.Context) error { return errA })
	m.Register("b", func(context.Context) error { ran = true; return errors.New("b failed") })

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, errA)
	assert.True(t, ran)
}

func TestShutdownPassesDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, m.Shutdown(context.Background()), context.DeadlineExceeded)
}
