package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langchou/voltgazer/internal/models"
)

func TestEvaluateWarnings(t *testing.T) {
	tests := []struct {
		name     string
		soc      float64
		temp     float64
		variance float64
		want     []models.WarningType
		severity []models.Severity
	}{
		{"critical low soc", 5, 25, 5, []models.WarningType{models.WarningVoltageLow}, []models.Severity{models.SeverityCritical}},
		{"low soc", 15, 25, 5, []models.WarningType{models.WarningVoltageLow}, []models.Severity{models.SeverityWarning}},
		{"critical temperature", 50, 55, 5, []models.WarningType{models.WarningTempHigh}, []models.Severity{models.SeverityCritical}},
		{"warm", 50, 45, 5, []models.WarningType{models.WarningTempHigh}, []models.Severity{models.SeverityWarning}},
		{"variance info", 50, 25, 20, []models.WarningType{models.WarningVariance}, []models.Severity{models.SeverityInfo}},
		{"variance warning", 50, 25, 28, []models.WarningType{models.WarningVariance}, []models.Severity{models.SeverityWarning}},
		{"nominal", 50, 25, 10, nil, nil},
		{"boundaries are exclusive", 20, 40, 15, nil, nil},
		{
			"everything at once", 8, 52, 26,
			[]models.WarningType{models.WarningVoltageLow, models.WarningTempHigh, models.WarningVariance},
			[]models.Severity{models.SeverityCritical, models.SeverityCritical, models.SeverityWarning},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateWarnings(tt.soc, tt.temp, tt.variance, t0)
			require.Len(t, got, len(tt.want))
			for i, w := range got {
				assert.Equal(t, tt.want[i], w.Type)
				assert.Equal(t, tt.severity[i], w.Severity)
				assert.Equal(t, t0, w.Timestamp)
				assert.NotEmpty(t, w.Message)
			}
		})
	}
}

func TestEvaluateWarnings_Thresholds(t *testing.T) {
	got := EvaluateWarnings(5, 55, 26, t0)
	require.Len(t, got, 3)
	assert.Equal(t, 20.0, got[0].Threshold)
	assert.Equal(t, 5.0, got[0].Value)
	assert.Equal(t, 40.0, got[1].Threshold)
	assert.Equal(t, 15.0, got[2].Threshold)
}

func TestThermalRiskFor(t *testing.T) {
	assert.Equal(t, models.ThermalRiskLow, ThermalRiskFor(25))
	assert.Equal(t, models.ThermalRiskLow, ThermalRiskFor(45))
	assert.Equal(t, models.ThermalRiskMedium, ThermalRiskFor(45.1))
	assert.Equal(t, models.ThermalRiskMedium, ThermalRiskFor(55))
	assert.Equal(t, models.ThermalRiskHigh, ThermalRiskFor(55.1))
}

func TestPowerLimits(t *testing.T) {
	p := PowerLimits(30, 50, 100)
	assert.Equal(t, 400.0, p.MaxDischargePower)
	assert.Equal(t, 195.0, p.MaxChargePower)
	assert.Equal(t, 100.0, p.ThermalLimit)

	p = PowerLimits(30, 90, 98)
	assert.InDelta(t, 392.0, p.MaxDischargePower, 1e-9)
	assert.InDelta(t, 58.5, p.MaxChargePower, 1e-9)

	p = PowerLimits(52, 50, 100)
	assert.Equal(t, 400.0, p.MaxDischargePower)
	assert.Equal(t, 50.0, p.ThermalLimit)

	p = PowerLimits(56, 50, 100)
	assert.InDelta(t, 240.0, p.MaxDischargePower, 1e-9)
	assert.Equal(t, 50.0, p.ThermalLimit)
}

func TestRangeFromRealistic(t *testing.T) {
	r := RangeFromRealistic(250, 19.5)
	assert.Equal(t, 300, r.Optimistic)
	assert.Equal(t, 250, r.Realistic)
	assert.Equal(t, 200, r.Conservative)
	assert.Equal(t, 19.5, r.AverageConsumption)
}

func TestRawRange(t *testing.T) {
	assert.InDelta(t, 419.5, RawRange(100, 83.9, 20), 1e-9)
	assert.Zero(t, RawRange(50, 83.9, 0))
}

func TestCellVoltages(t *testing.T) {
	v := models.VoltageData{PackVoltage: 384, CellCount: 96, CellVariance: 10}
	cells := CellVoltages(v, NewRandSource(3))
	require.Len(t, cells, 96)
	for _, c := range cells {
		assert.InDelta(t, 4.0, c, 0.01)
	}
	assert.Nil(t, CellVoltages(models.VoltageData{}, NewRandSource(3)))
}

func TestCellVoltages_SpreadReachesVariance(t *testing.T) {
	v := models.VoltageData{PackVoltage: 384, CellCount: 96, CellVariance: 20}
	cells := CellVoltages(v, NewSequenceSource(0, 1))

	require.Len(t, cells, 96)
	// 20 mV -> 单体偏差 ±0.02 V
	assert.InDelta(t, 4.0-0.02, cells[0], 1e-9)
	assert.InDelta(t, 4.0+0.02, cells[1], 1e-9)
	assert.InDelta(t, 4.0-0.02, cells[2], 1e-9)
}
