package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DEBUG", "TICK_INTERVAL_MS", "AUTO_START", "VEHICLE_IDS", "DATABASE_URL", "MQTT_URL", "MQTT_BASE_TOPIC"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.ServerPort)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.True(t, cfg.AutoStart)
	assert.Equal(t, []string{"BMW-IX-2024-001"}, cfg.VehicleIDs)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.MQTTURL)
	assert.Equal(t, "voltgazer", cfg.MQTTBaseTopic)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DEBUG", "true")
	t.Setenv("TICK_INTERVAL_MS", "500")
	t.Setenv("AUTO_START", "false")
	t.Setenv("VEHICLE_IDS", " pack-a, ,pack-b ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.False(t, cfg.AutoStart)
	assert.Equal(t, []string{"pack-a", "pack-b"}, cfg.VehicleIDs)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TICK_INTERVAL_MS", "fast")
	t.Setenv("DEBUG", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.False(t, cfg.Debug)
}

func TestLoad_RejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("TICK_INTERVAL_MS", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{TickInterval: time.Second, VehicleIDs: []string{"a"}, MQTTBaseTopic: "bms/#"}
	assert.Error(t, cfg.Validate())

	cfg.MQTTBaseTopic = "bms"
	assert.NoError(t, cfg.Validate())

	cfg.VehicleIDs = nil
	assert.Error(t, cfg.Validate())
}
