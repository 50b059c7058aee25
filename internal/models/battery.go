package models

import "time"

// 固定参数
const (
	CellCount       = 96   // 串联电芯数
	NominalCapacity = 83.9 // kWh
	HistoryLimit    = 60   // 历史采样窗口
)

// ThermalRisk 热失控风险等级
type ThermalRisk string

const (
	ThermalRiskLow    ThermalRisk = "low"
	ThermalRiskMedium ThermalRisk = "medium"
	ThermalRiskHigh   ThermalRisk = "high"
)

// CurrentDirection 电流方向
type CurrentDirection string

const (
	DirectionCharging    CurrentDirection = "charging"
	DirectionDischarging CurrentDirection = "discharging"
	DirectionIdle        CurrentDirection = "idle"
)

// ChargerType 充电接口类型
type ChargerType string

const (
	ChargerAC   ChargerType = "AC"
	ChargerDC   ChargerType = "DC"
	ChargerNone ChargerType = "none"
)

// ConnectionStatus 连接状态
type ConnectionStatus string

const (
	ConnectionConnected    ConnectionStatus = "connected"
	ConnectionDisconnected ConnectionStatus = "disconnected"
	ConnectionReconnecting ConnectionStatus = "reconnecting"
)

// StateOfCharge 荷电状态 (SOC)
type StateOfCharge struct {
	Percentage       float64   `json:"percentage"`       // 0-100%
	AbsoluteCapacity float64   `json:"absoluteCapacity"` // kWh
	Timestamp        time.Time `json:"timestamp"`
}

// StateOfHealth 健康状态 (SOH)
type StateOfHealth struct {
	Percentage               float64 `json:"percentage"`
	CycleCount               int     `json:"cycleCount"`
	EstimatedRemainingCycles int     `json:"estimatedRemainingCycles"`
	DegradationRate          float64 `json:"degradationRate"` // %/1000 cycles
}

// TemperatureData 温度数据
type TemperatureData struct {
	Average            float64     `json:"average"` // °C
	Min                float64     `json:"min"`
	Max                float64     `json:"max"`
	CellVariance       float64     `json:"cellVariance"`
	CoolingActive      bool        `json:"coolingActive"`
	HeatingActive      bool        `json:"heatingActive"`
	ThermalRunawayRisk ThermalRisk `json:"thermalRunawayRisk"`
}

// VoltageData 电压数据
type VoltageData struct {
	PackVoltage        float64 `json:"packVoltage"`    // V
	CellVoltageMin     float64 `json:"cellVoltageMin"` // V
	CellVoltageMax     float64 `json:"cellVoltageMax"` // V
	CellVariance       float64 `json:"cellVariance"`   // mV
	CellCount          int     `json:"cellCount"`
	OCV                float64 `json:"ocv"`                // 开路电压 V
	InternalResistance float64 `json:"internalResistance"` // mΩ
}

// StateOfPower 功率状态 (SOP)
type StateOfPower struct {
	MaxDischargePower float64 `json:"maxDischargePower"` // kW
	MaxChargePower    float64 `json:"maxChargePower"`    // kW
	ThermalLimit      float64 `json:"thermalLimit"`      // %
}

// CurrentData 电流数据，正值为充电
type CurrentData struct {
	Instantaneous float64          `json:"instantaneous"` // A
	Power         float64          `json:"power"`         // kW
	Direction     CurrentDirection `json:"direction"`
}

// ChargingSession 充电会话
type ChargingSession struct {
	IsCharging           bool        `json:"isCharging"`
	ChargerType          ChargerType `json:"chargerType"`
	MaxChargingPower     float64     `json:"maxChargingPower"`     // kW
	CurrentChargingPower float64     `json:"currentChargingPower"` // kW
	EstimatedTimeToFull  int         `json:"estimatedTimeToFull"`  // 分钟
	EnergyAdded          float64     `json:"energyAdded"`          // kWh
}

// RangePrediction 续航预测 (km)
type RangePrediction struct {
	Optimistic         int     `json:"optimistic"`
	Realistic          int     `json:"realistic"`
	Conservative       int     `json:"conservative"`
	AverageConsumption float64 `json:"averageConsumption"` // kWh/100km
}

// TelemetryDataPoint 历史采样点
type TelemetryDataPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Power       float64   `json:"power"`       // kW
	SOC         float64   `json:"soc"`         // %
	Temperature float64   `json:"temperature"` // °C
	Voltage     float64   `json:"voltage"`     // V
}

// BatteryStatus 电池包完整状态
type BatteryStatus struct {
	VehicleID        string               `json:"vehicleId"`
	BatteryPackID    string               `json:"batteryPackId"`
	ModelName        string               `json:"modelName"`
	NominalCapacity  float64              `json:"nominalCapacity"` // kWh
	SOC              StateOfCharge        `json:"soc"`
	SOH              StateOfHealth        `json:"soh"`
	Temperature      TemperatureData      `json:"temperature"`
	Voltage          VoltageData          `json:"voltage"`
	Current          CurrentData          `json:"current"`
	Charging         ChargingSession      `json:"charging"`
	Range            RangePrediction      `json:"range"`
	SOP              StateOfPower         `json:"sop"`
	Warnings         []CellWarning        `json:"warnings"`
	TelemetryHistory []TelemetryDataPoint `json:"telemetryHistory"`
	LastUpdated      time.Time            `json:"lastUpdated"`
	ConnectionStatus ConnectionStatus     `json:"connectionStatus"`
}

// Clone 深拷贝，调用方拿到的切片与引擎互不共享
func (s *BatteryStatus) Clone() *BatteryStatus {
	if s == nil {
		return nil
	}
	c := *s
	c.Warnings = append(make([]CellWarning, 0, len(s.Warnings)), s.Warnings...)
	c.TelemetryHistory = append(make([]TelemetryDataPoint, 0, len(s.TelemetryHistory)), s.TelemetryHistory...)
	return &c
}
