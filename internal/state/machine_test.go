package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_DefaultsToPaused(t *testing.T) {
	m := NewMachine("pack-1", "", nil)
	assert.Equal(t, StatePaused, m.CurrentState())
	assert.False(t, m.Running())
	assert.True(t, m.CanTransition(EventResume))
	assert.False(t, m.CanTransition(EventPause))
}

func TestMachine_ResumePause(t *testing.T) {
	type change struct{ from, to string }
	var changes []change
	m := NewMachine("pack-1", StatePaused, func(id, from, to string) {
		assert.Equal(t, "pack-1", id)
		changes = append(changes, change{from, to})
	})

	require.NoError(t, m.Trigger(EventResume))
	assert.True(t, m.Running())
	require.NoError(t, m.Trigger(EventPause))
	assert.False(t, m.Running())

	assert.Equal(t, []change{{StatePaused, StateRunning}, {StateRunning, StatePaused}}, changes)
}

func TestMachine_InvalidTransition(t *testing.T) {
	m := NewMachine("pack-1", StateRunning, nil)
	err := m.Trigger(EventResume)
	require.Error(t, err)
	assert.Contains(t, err.Error(), EventResume)
	assert.Equal(t, StateRunning, m.CurrentState())
}

func TestMachine_Counters(t *testing.T) {
	m := NewMachine("pack-1", "", nil)
	m.RecordTick()
	m.RecordTick()
	assert.EqualValues(t, 2, m.GetLifecycle().Ticks)

	m.RecordReset()
	lc := m.GetLifecycle()
	assert.Zero(t, lc.Ticks)
	assert.EqualValues(t, 1, lc.Resets)
	assert.Equal(t, "pack-1", lc.VehicleID)
}
