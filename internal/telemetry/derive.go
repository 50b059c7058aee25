package telemetry

import (
	"fmt"
	"math"
	"time"

	"github.com/langchou/voltgazer/internal/models"
)

// 告警阈值
const (
	lowSOCThreshold       = 20.0
	criticalSOCThreshold  = 10.0
	highTempThreshold     = 40.0
	criticalTempThreshold = 50.0
	varianceThreshold     = 15.0 // mV
	varianceWarnThreshold = 25.0 // mV
)

// SOP 基准
const (
	baseMaxDischargePower = 400.0 // kW
	baseMaxChargePower    = 195.0 // kW
)

// 续航倍数
const (
	optimisticFactor   = 1.2
	conservativeFactor = 0.8
)

func clamp(v, min, max float64) float64 {
	return math.Min(math.Max(v, min), max)
}

// ThermalRiskFor 根据平均温度判定热失控风险
func ThermalRiskFor(avgTemp float64) models.ThermalRisk {
	switch {
	case avgTemp > 55:
		return models.ThermalRiskHigh
	case avgTemp > 45:
		return models.ThermalRiskMedium
	default:
		return models.ThermalRiskLow
	}
}

// PowerLimits 由温度、SOC、SOH 推导功率上限
func PowerLimits(avgTemp, socPct, sohPct float64) models.StateOfPower {
	discharge := baseMaxDischargePower * (sohPct / 100)
	if avgTemp > 55 {
		discharge *= 0.6
	}

	charge := baseMaxChargePower
	if socPct > 85 {
		charge *= 0.3
	}

	thermalLimit := 100.0
	if avgTemp > 50 {
		thermalLimit = 50
	}

	return models.StateOfPower{
		MaxDischargePower: discharge,
		MaxChargePower:    charge,
		ThermalLimit:      thermalLimit,
	}
}

// RangeFromRealistic 由平滑后的 realistic 值推出三档续航
func RangeFromRealistic(realistic int, consumption float64) models.RangePrediction {
	return models.RangePrediction{
		Optimistic:         int(math.Floor(float64(realistic) * optimisticFactor)),
		Realistic:          realistic,
		Conservative:       int(math.Floor(float64(realistic) * conservativeFactor)),
		AverageConsumption: consumption,
	}
}

// RawRange 按当前电量和能耗计算的未平滑续航 (km)
func RawRange(socPct, nominalCapacity, consumption float64) float64 {
	if consumption <= 0 {
		return 0
	}
	return (socPct / 100) * nominalCapacity / (consumption / 100)
}

// SmoothRange 指数平滑，避免显示值跳变
func SmoothRange(prevRealistic int, raw float64) int {
	return int(math.Round(float64(prevRealistic)*0.9 + raw*0.1))
}

// EvaluateWarnings 按固定阈值生成告警
// 返回的告警 ID 为空、CellIndex 为 PackLevel，由调用方补全
func EvaluateWarnings(socPct, avgTemp, cellVariance float64, at time.Time) []models.CellWarning {
	warnings := make([]models.CellWarning, 0, 3)

	if socPct < lowSOCThreshold {
		severity := models.SeverityWarning
		if socPct < criticalSOCThreshold {
			severity = models.SeverityCritical
		}
		warnings = append(warnings, models.CellWarning{
			CellIndex: models.PackLevel,
			Type:      models.WarningVoltageLow,
			Severity:  severity,
			Value:     socPct,
			Threshold: lowSOCThreshold,
			Message:   fmt.Sprintf("Low state of charge: %.1f%%", socPct),
			Timestamp: at,
		})
	}

	if avgTemp > highTempThreshold {
		severity := models.SeverityWarning
		if avgTemp > criticalTempThreshold {
			severity = models.SeverityCritical
		}
		warnings = append(warnings, models.CellWarning{
			CellIndex: models.PackLevel,
			Type:      models.WarningTempHigh,
			Severity:  severity,
			Value:     avgTemp,
			Threshold: highTempThreshold,
			Message:   fmt.Sprintf("Elevated cell temperature: %.1f°C", avgTemp),
			Timestamp: at,
		})
	}

	if cellVariance > varianceThreshold {
		severity := models.SeverityInfo
		if cellVariance > varianceWarnThreshold {
			severity = models.SeverityWarning
		}
		warnings = append(warnings, models.CellWarning{
			CellIndex: models.PackLevel,
			Type:      models.WarningVariance,
			Severity:  severity,
			Value:     cellVariance,
			Threshold: varianceThreshold,
			Message:   fmt.Sprintf("Cell voltage spread elevated: %.1fmV", cellVariance),
			Timestamp: at,
		})
	}

	return warnings
}
