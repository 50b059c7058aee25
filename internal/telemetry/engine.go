package telemetry

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/langchou/voltgazer/internal/models"
)

// 充电参数
const (
	maxChargingPower    = 195.0 // kW, DC 快充上限
	minChargingPower    = 50.0  // kW
	taperStartSOC       = 80.0  // % 以上开始降功率
	highPowerThreshold  = 100.0 // kW
	baseVoltage         = 350.0 // V @ 0% SOC
	voltagePerSOC       = 0.8   // V / %
	initialRangePerSOC  = 5.1   // km / %
	coolingOnAbove      = 35.0
	heatingOnBelow      = 15.0
	resistanceRiseAbove = 40.0
)

// Identity 电池包标识
type Identity struct {
	VehicleID     string
	BatteryPackID string
	ModelName     string
}

// DefaultIdentity 默认车型
var DefaultIdentity = Identity{
	VehicleID:     "BMW-IX-2024-001",
	BatteryPackID: "HVB-GEN5-096S",
	ModelName:     "BMW iX xDrive50",
}

// Engine 遥测状态引擎
// 本身无状态：Initial 生成初始记录，Advance 由上一记录计算下一记录
type Engine struct {
	identity Identity
	rnd      Source
	now      func() time.Time
}

// NewEngine 创建引擎，now 为 nil 时使用 time.Now
func NewEngine(identity Identity, rnd Source, now func() time.Time) *Engine {
	if rnd == nil {
		rnd = NewRandSource(0)
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{identity: identity, rnd: rnd, now: now}
}

// Identity 返回电池包标识
func (e *Engine) Identity() Identity {
	return e.identity
}

// Source 返回引擎使用的随机数来源
func (e *Engine) Source() Source {
	return e.rnd
}

// Initial 生成随机但合理的初始状态
func (e *Engine) Initial() *models.BatteryStatus {
	now := e.now()
	r := e.rnd.Uniform

	soc := r(45, 85)
	soh := r(96, 99)
	avgTemp := r(22, 28)
	packVoltage := r(380, 420)
	chargingPower := r(80, 150)
	consumption := r(18, 22)

	remaining := (100 - soc) / 100 * models.NominalCapacity

	return &models.BatteryStatus{
		VehicleID:       e.identity.VehicleID,
		BatteryPackID:   e.identity.BatteryPackID,
		ModelName:       e.identity.ModelName,
		NominalCapacity: models.NominalCapacity,
		SOC: models.StateOfCharge{
			Percentage:       soc,
			AbsoluteCapacity: soc / 100 * models.NominalCapacity,
			Timestamp:        now,
		},
		SOH: models.StateOfHealth{
			Percentage:               soh,
			CycleCount:               int(r(50, 200)),
			EstimatedRemainingCycles: int(r(1500, 2000)),
			DegradationRate:          r(0.8, 1.2),
		},
		Temperature: models.TemperatureData{
			Average:            avgTemp,
			Min:                r(20, 24),
			Max:                r(26, 32),
			CellVariance:       r(2, 8),
			ThermalRunawayRisk: ThermalRiskFor(avgTemp),
		},
		Voltage: models.VoltageData{
			PackVoltage:        packVoltage,
			CellVoltageMin:     r(3.6, 3.7),
			CellVoltageMax:     r(3.8, 3.9),
			CellVariance:       r(5, 15),
			CellCount:          models.CellCount,
			OCV:                r(385, 415),
			InternalResistance: r(12, 18),
		},
		SOP: PowerLimits(avgTemp, soc, soh),
		Current: models.CurrentData{
			Instantaneous: chargingPower * 1000 / packVoltage,
			Power:         chargingPower,
			Direction:     models.DirectionCharging,
		},
		Charging: models.ChargingSession{
			IsCharging:           true,
			ChargerType:          models.ChargerDC,
			MaxChargingPower:     maxChargingPower,
			CurrentChargingPower: chargingPower,
			EstimatedTimeToFull:  int(math.Floor(remaining / chargingPower * 60)),
			EnergyAdded:          r(5, 20),
		},
		Range:            RangeFromRealistic(int(math.Floor(soc*initialRangePerSOC)), consumption),
		Warnings:         []models.CellWarning{},
		TelemetryHistory: []models.TelemetryDataPoint{},
		LastUpdated:      now,
		ConnectionStatus: models.ConnectionConnected,
	}
}

// Advance 由上一状态和 tick 时长计算下一状态，不修改 prev
func (e *Engine) Advance(prev *models.BatteryStatus, dt time.Duration) *models.BatteryStatus {
	now := e.now()
	r := e.rnd.Uniform
	capacity := prev.NominalCapacity
	charging := prev.Charging.IsCharging
	maxPower := prev.Charging.MaxChargingPower

	// 1. SOC
	var socChange float64
	if charging {
		socChange = prev.Charging.CurrentChargingPower / capacity * dt.Hours() * 100
	} else {
		socChange = -r(0.01, 0.05)
	}
	soc := clamp(prev.SOC.Percentage+socChange, 0, 100)

	// 2. 充电功率曲线
	chargingPower := prev.Charging.CurrentChargingPower
	if charging {
		if soc > taperStartSOC {
			chargingPower = maxPower * (1 - (soc-taperStartSOC)/40)
		} else {
			chargingPower = clamp(chargingPower+r(-5, 8), minChargingPower, maxPower)
		}
	}
	highPower := charging && chargingPower > highPowerThreshold

	// 3. 温度
	var avgTemp float64
	if highPower {
		avgTemp = clamp(prev.Temperature.Average+r(0.05, 0.2), 20, 45)
	} else {
		avgTemp = clamp(prev.Temperature.Average+r(-0.1, 0.1), 20, 35)
	}

	// 4. 电压
	packVoltage := baseVoltage + voltagePerSOC*soc + r(-2, 2)
	var cellVariance float64
	if highPower {
		cellVariance = clamp(prev.Voltage.CellVariance+r(-0.5, 1), 5, 30)
	} else {
		cellVariance = clamp(prev.Voltage.CellVariance+r(-0.5, 0.3), 5, 20)
	}
	ocv := packVoltage + r(1, 4)
	if charging {
		ocv = packVoltage - r(1, 3)
	}
	resistanceDrift := -0.01
	if avgTemp > resistanceRiseAbove {
		resistanceDrift = 0.05
	}
	avgCell := packVoltage / models.CellCount

	// 电流与功率
	current := models.CurrentData{Direction: models.DirectionIdle}
	switch {
	case charging:
		current.Power = chargingPower
		current.Instantaneous = chargingPower * 1000 / packVoltage
		current.Direction = models.DirectionCharging
	case soc > 0:
		current.Power = -r(5, 15)
		current.Instantaneous = current.Power * 1000 / packVoltage
		current.Direction = models.DirectionDischarging
	}

	next := *prev
	next.SOC = models.StateOfCharge{
		Percentage:       soc,
		AbsoluteCapacity: soc / 100 * capacity,
		Timestamp:        now,
	}
	next.Temperature = models.TemperatureData{
		Average:            avgTemp,
		Min:                avgTemp - r(2, 4),
		Max:                avgTemp + r(2, 6),
		CellVariance:       math.Abs(avgTemp - prev.Temperature.Average),
		CoolingActive:      avgTemp > coolingOnAbove,
		HeatingActive:      avgTemp < heatingOnBelow,
		ThermalRunawayRisk: ThermalRiskFor(avgTemp),
	}
	next.Voltage = models.VoltageData{
		PackVoltage:        packVoltage,
		CellVoltageMin:     avgCell - r(0.01, 0.03),
		CellVoltageMax:     avgCell + r(0.01, 0.03),
		CellVariance:       cellVariance,
		CellCount:          prev.Voltage.CellCount,
		OCV:                ocv,
		InternalResistance: clamp(prev.Voltage.InternalResistance+resistanceDrift, 10, 30),
	}
	next.Current = current

	// 5. 派生安全字段
	next.SOP = PowerLimits(avgTemp, soc, prev.SOH.Percentage)

	// 6. 告警全量重建
	next.Warnings = e.stampWarnings(EvaluateWarnings(soc, avgTemp, cellVariance, now))

	// 7. 续航
	consumption := clamp(prev.Range.AverageConsumption+r(-0.2, 0.2), 17, 23)
	realistic := SmoothRange(prev.Range.Realistic, RawRange(soc, capacity, consumption))
	next.Range = RangeFromRealistic(realistic, consumption)

	// 8. 历史
	next.TelemetryHistory = AppendHistory(prev.TelemetryHistory, models.TelemetryDataPoint{
		Timestamp:   now,
		Power:       current.Power,
		SOC:         soc,
		Temperature: avgTemp,
		Voltage:     packVoltage,
	})

	// 9. 充电会话
	complete := soc >= 100
	session := prev.Charging
	session.IsCharging = charging && !complete
	session.CurrentChargingPower = chargingPower
	if !session.IsCharging {
		session.CurrentChargingPower = 0
	}
	session.EstimatedTimeToFull = 0
	if session.IsCharging && session.CurrentChargingPower > 0 {
		remaining := (100 - soc) / 100 * capacity
		session.EstimatedTimeToFull = int(math.Floor(remaining / session.CurrentChargingPower * 60))
	}
	if charging {
		session.EnergyAdded += (soc - prev.SOC.Percentage) / 100 * capacity
	}
	next.Charging = session

	next.LastUpdated = now
	return &next
}

// stampWarnings 补全告警 ID 和电芯编号
func (e *Engine) stampWarnings(warnings []models.CellWarning) []models.CellWarning {
	for i := range warnings {
		warnings[i].ID = uuid.NewString()
		if warnings[i].Type == models.WarningTempHigh || warnings[i].Type == models.WarningVariance {
			idx := int(e.rnd.Uniform(0, models.CellCount))
			if idx >= models.CellCount {
				idx = models.CellCount - 1
			}
			warnings[i].CellIndex = idx
		}
	}
	return warnings
}
