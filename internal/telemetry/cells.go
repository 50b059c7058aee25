package telemetry

import "github.com/langchou/voltgazer/internal/models"

// CellVoltages 按平均电芯电压和压差展开单体电压
func CellVoltages(v models.VoltageData, rnd Source) []float64 {
	if v.CellCount <= 0 {
		return nil
	}
	avg := v.PackVoltage / float64(v.CellCount)
	spread := v.CellVariance / 1000 // mV -> V, 单体偏差 ±spread
	cells := make([]float64, v.CellCount)
	for i := range cells {
		cells[i] = avg + rnd.Uniform(-spread, spread)
	}
	return cells
}
