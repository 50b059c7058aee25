package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/langchou/voltgazer/internal/telemetry"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t), telemetry.DefaultIdentity, time.Hour)
	r.SetSourceFactory(func() telemetry.Source { return telemetry.NewSequenceSource(0.5) })
	t.Cleanup(r.CloseAll)

	b, created := r.GetOrCreate("pack-b")
	require.True(t, created)
	a, _ := r.GetOrCreate("pack-a")
	again, created := r.GetOrCreate("pack-b")
	assert.False(t, created)
	assert.Same(t, b, again)

	assert.Equal(t, []string{"pack-a", "pack-b"}, r.IDs())
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []*SimulationService{a, b}, r.List())

	got, err := r.Get("pack-a")
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Equal(t, "pack-a", got.Status().VehicleID)
	assert.Equal(t, telemetry.DefaultIdentity.BatteryPackID, got.Status().BatteryPackID)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrPackNotFound)
}

func TestRegistry_PacksAreIndependent(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t), telemetry.DefaultIdentity, time.Hour)
	t.Cleanup(r.CloseAll)

	a, _ := r.GetOrCreate("a")
	b, _ := r.GetOrCreate("b")

	a.Resume()

	assert.True(t, a.Running())
	assert.False(t, b.Running())
	assert.Len(t, a.Status().TelemetryHistory, 1)
	assert.Empty(t, b.Status().TelemetryHistory)
}
