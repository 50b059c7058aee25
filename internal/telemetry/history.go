package telemetry

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/langchou/voltgazer/internal/models"
)

// AppendHistory 追加采样点并只保留最近 HistoryLimit 条，返回新切片
func AppendHistory(history []models.TelemetryDataPoint, p models.TelemetryDataPoint) []models.TelemetryDataPoint {
	start := 0
	if len(history)+1 > models.HistoryLimit {
		start = len(history) + 1 - models.HistoryLimit
	}
	out := make([]models.TelemetryDataPoint, 0, len(history)-start+1)
	out = append(out, history[start:]...)
	return append(out, p)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ChartProjection 把历史转换为图表数据
func ChartProjection(history []models.TelemetryDataPoint) []models.ChartPoint {
	points := make([]models.ChartPoint, 0, len(history))
	for _, p := range history {
		points = append(points, models.ChartPoint{
			Time:        p.Timestamp.Format(time.TimeOnly),
			Timestamp:   p.Timestamp.UnixMilli(),
			Power:       round1(p.Power),
			SOC:         round1(p.SOC),
			Temperature: round1(p.Temperature),
		})
	}
	return points
}

// isoMillis 与浏览器 toISOString 一致的时间格式
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// FormatISO 格式化为 UTC 毫秒 ISO-8601
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// BuildExport 构造导出文档
func BuildExport(vehicleID string, history []models.TelemetryDataPoint) models.TelemetryExport {
	records := make([]models.ExportRecord, 0, len(history))
	for _, p := range history {
		records = append(records, models.ExportRecord{
			T:    FormatISO(p.Timestamp),
			P:    p.Power,
			V:    p.Voltage,
			SOC:  p.SOC,
			Temp: p.Temperature,
		})
	}
	return models.TelemetryExport{
		VehicleID: vehicleID,
		Telemetry: records,
	}
}

// ExportFilename telemetry_<ISO>.json
func ExportFilename(at time.Time) string {
	return "telemetry_" + FormatISO(at) + ".json"
}

// EncodeExport 导出文件内容，两空格缩进
func EncodeExport(doc models.TelemetryExport) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}
