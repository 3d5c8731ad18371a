package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	for _, name := range []string{"db", "cache", "server"} {
		name := name
		m.Register(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"server", "cache", "db"}, order)
}

func TestShutdownCollectsErrors(t *testing.T) {
	m := New(time.Second, nil)

	broken := errors.New("connection already gone")
	ran := false
	m.Register("first", func(ctx context.Context) error {
		ran = true
		return nil
	})
	m.Register("second", func(ctx context.Context) error {
		return broken
	})

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, broken)
	assert.True(t, ran, "a failing hook does not stop the rest")
}

func TestShutdownAppliesTimeout(t *testing.T) {
	m := New(50*time.Millisecond, nil)

	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegisterNilHook(t *testing.T) {
	m := New(time.Second, nil)
	m.Register("noop", nil)
	require.NoError(t, m.Shutdown(context.Background()))
}
