package models

import "time"

// WarningType 告警类型
type WarningType string

const (
	WarningVoltageHigh WarningType = "voltage_high"
	WarningVoltageLow  WarningType = "voltage_low"
	WarningTempHigh    WarningType = "temp_high"
	WarningTempLow     WarningType = "temp_low"
	WarningVariance    WarningType = "variance"
)

// Severity 告警级别
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// PackLevel 表示告警不针对具体电芯
const PackLevel = -1

// CellWarning 电芯告警，每个 tick 全量重建
type CellWarning struct {
	ID        string      `json:"id"`
	CellIndex int         `json:"cellIndex"`
	Type      WarningType `json:"type"`
	Severity  Severity    `json:"severity"`
	Value     float64     `json:"value"`
	Threshold float64     `json:"threshold"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}
