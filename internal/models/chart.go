package models

import "time"

// ChartPoint 图表数据点 (由历史派生，可随时重算)
type ChartPoint struct {
	Time        string  `json:"time"`      // HH:MM:SS
	Timestamp   int64   `json:"timestamp"` // epoch ms
	Power       float64 `json:"power"`
	SOC         float64 `json:"soc"`
	Temperature float64 `json:"temperature"`
}

// ExportRecord 导出记录
type ExportRecord struct {
	T    string  `json:"t"` // ISO-8601
	P    float64 `json:"p"`
	V    float64 `json:"v"`
	SOC  float64 `json:"soc"`
	Temp float64 `json:"temp"`
}

// TelemetryExport 导出文件内容
type TelemetryExport struct {
	VehicleID string         `json:"vehicleId"`
	Telemetry []ExportRecord `json:"telemetry"`
}

// ExportArtifact 导出产物
type ExportArtifact struct {
	Filename   string          `json:"filename"`
	ExportedAt time.Time       `json:"exportedAt"`
	Document   TelemetryExport `json:"document"`
}

// Snapshot 推送给渲染端的只读快照
type Snapshot struct {
	VehicleID string         `json:"vehicleId"`
	Status    *BatteryStatus `json:"status"`
	Chart     []ChartPoint   `json:"chart"`
	Running   bool           `json:"running"`
}

// ArchivedExport 已归档的导出记录
type ArchivedExport struct {
	ID          int64     `json:"id" db:"id"`
	VehicleID   string    `json:"vehicle_id" db:"vehicle_id"`
	Filename    string    `json:"filename" db:"filename"`
	SampleCount int       `json:"sample_count" db:"sample_count"`
	ExportedAt  time.Time `json:"exported_at" db:"exported_at"`
	Payload     []byte    `json:"-" db:"payload"`
}
