package telemetry

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langchou/voltgazer/internal/models"
)

func point(i int) models.TelemetryDataPoint {
	return models.TelemetryDataPoint{
		Timestamp:   t0.Add(time.Duration(i) * tick),
		Power:       100 + float64(i) + 0.04,
		SOC:         50 + float64(i)/10 + 0.06,
		Temperature: 25.26,
		Voltage:     390.5,
	}
}

func TestAppendHistory(t *testing.T) {
	var h []models.TelemetryDataPoint
	for i := 0; i < models.HistoryLimit+15; i++ {
		prev := h
		h = AppendHistory(h, point(i))
		if i < models.HistoryLimit {
			assert.Len(t, h, i+1)
		} else {
			assert.Len(t, h, models.HistoryLimit)
		}
		// 旧切片不受影响
		if i > 0 && i < models.HistoryLimit {
			assert.Len(t, prev, i)
		}
	}
	assert.Equal(t, point(15), h[0])
	assert.Equal(t, point(models.HistoryLimit+14), h[len(h)-1])
}

func TestChartProjection(t *testing.T) {
	h := []models.TelemetryDataPoint{point(0), point(1)}

	chart := ChartProjection(h)

	require.Len(t, chart, 2)
	assert.Equal(t, h[0].Timestamp.Format("15:04:05"), chart[0].Time)
	assert.Equal(t, h[0].Timestamp.UnixMilli(), chart[0].Timestamp)
	assert.Equal(t, 100.0, chart[0].Power)
	assert.Equal(t, 50.1, chart[0].SOC)
	assert.Equal(t, 25.3, chart[0].Temperature)
	assert.Equal(t, 101.0, chart[1].Power)

	assert.Empty(t, ChartProjection(nil))
}

func TestBuildExport(t *testing.T) {
	h := []models.TelemetryDataPoint{point(0), point(1), point(2)}

	doc := BuildExport("BMW-IX-2024-001", h)

	assert.Equal(t, "BMW-IX-2024-001", doc.VehicleID)
	require.Len(t, doc.Telemetry, len(h))
	for i, rec := range doc.Telemetry {
		assert.Equal(t, FormatISO(h[i].Timestamp), rec.T)
		assert.Equal(t, h[i].Power, rec.P)
		assert.Equal(t, h[i].Voltage, rec.V)
		assert.Equal(t, h[i].SOC, rec.SOC)
		assert.Equal(t, h[i].Temperature, rec.Temp)
	}

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "vehicleId")
	assert.Contains(t, decoded, "telemetry")
	first := decoded["telemetry"].([]any)[0].(map[string]any)
	assert.Equal(t, "2024-11-21T12:00:00.000Z", first["t"])
	for _, k := range []string{"p", "v", "soc", "temp"} {
		assert.Contains(t, first, k)
	}
}

func TestBuildExport_EmptyHistory(t *testing.T) {
	doc := BuildExport("x", nil)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"vehicleId":"x","telemetry":[]}`, string(raw))
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2024, 3, 1, 8, 30, 15, 123_000_000, time.FixedZone("CET", 3600))
	assert.Equal(t, "telemetry_2024-03-01T07:30:15.123Z.json", ExportFilename(at))
}

func TestEncodeExport(t *testing.T) {
	data, err := EncodeExport(BuildExport("BMW-IX-2024-001", []models.TelemetryDataPoint{point(0)}))
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, "{\n  \"vehicleId\": \"BMW-IX-2024-001\",\n  \"telemetry\": [\n    {\n      \"t\": "), s)
	assert.True(t, strings.HasSuffix(s, "\n    }\n  ]\n}"), s)
}
