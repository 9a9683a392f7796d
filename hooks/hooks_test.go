package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerExecutesInPriorityOrder(t *testing.T) {
	m := NewManager()
	var order []string
	add := func(name string, priority int) {
		require.NoError(t, m.Register(&Hook{
			Name:     name,
			Phase:    BeforeShutdown,
			Priority: priority,
			Function: func(context.Context) error {
				order = append(order, name)
				return nil
			},
		}))
	}
	add("flush", 10)
	add("announce", 100)
	add("first", 1)
	add("flush-again", 10)

	require.NoError(t, m.Execute(context.Background(), BeforeShutdown))
	assert.Equal(t, []string{"first", "flush", "flush-again", "announce"}, order)
	assert.Equal(t, 4, m.Count(BeforeShutdown))
	assert.Zero(t, m.Count(AfterStart))
}

func TestManagerStopsAtFirstError(t *testing.T) {
	m := NewManager()
	boom := errors.New("boom")
	ran := false
	require.NoError(t, m.Register(&Hook{
		Name:     "fails",
		Phase:    BeforeStart,
		Priority: 1,
		Function: func(context.Context) error { return boom },
	}))
	require.NoError(t, m.Register(&Hook{
		Name:     "later",
		Phase:    BeforeStart,
		Priority: 2,
		Function: func(context.Context) error {
			ran = true
			return nil
		},
	}))

	err := m.Execute(context.Background(), BeforeStart)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fails")
	assert.False(t, ran)
}

func TestManagerRegisterValidation(t *testing.T) {
	m := NewManager()
	noop := func(context.Context) error { return nil }

	require.Error(t, m.Register(nil))
	require.Error(t, m.Register(&Hook{Name: "x", Phase: AfterStart}))
	require.Error(t, m.Register(&Hook{Name: "x", Phase: "during_start", Function: noop}))

	require.NoError(t, m.Register(&Hook{Name: "x", Phase: AfterStart, Function: noop}))
	require.Error(t, m.Register(&Hook{Name: "x", Phase: AfterStart, Function: noop}))
	require.NoError(t, m.Register(&Hook{Name: "x", Phase: AfterShutdown, Function: noop}))
}
