package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/langchou/voltgazer/internal/models"
	"github.com/langchou/voltgazer/internal/state"
	"github.com/langchou/voltgazer/internal/telemetry"
)

// DefaultTickInterval 默认 tick 间隔
const DefaultTickInterval = 2000 * time.Millisecond

// SimulationService 单个电池包的模拟控制器
// 所有状态变更都在 mu 下串行执行，tick 不会与 reset/export/toggle 交错
type SimulationService struct {
	logger   *zap.Logger
	engine   *telemetry.Engine
	machine  *state.Machine
	interval time.Duration

	mu          sync.Mutex
	status      *models.BatteryStatus
	chart       []models.ChartPoint
	epoch       uint64        // 每次取消调度时递增，旧 tick 据此丢弃
	stopCh      chan struct{} // 仅在运行时非 nil
	closed      bool
	wg          sync.WaitGroup
	subscribers []chan *models.Snapshot
}

// NewSimulationService 创建模拟控制器，初始为暂停状态
func NewSimulationService(logger *zap.Logger, engine *telemetry.Engine, interval time.Duration) *SimulationService {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	s := &SimulationService{
		logger:   logger.With(zap.String("vehicle_id", engine.Identity().VehicleID)),
		engine:   engine,
		interval: interval,
	}
	s.machine = state.NewMachine(engine.Identity().VehicleID, state.StatePaused, s.onStateChange)
	s.status = engine.Initial()
	s.chart = []models.ChartPoint{}
	return s
}

// VehicleID 电池包对应的车辆 ID
func (s *SimulationService) VehicleID() string {
	return s.engine.Identity().VehicleID
}

// Interval tick 间隔
func (s *SimulationService) Interval() time.Duration {
	return s.interval
}

// Start 启动模拟，等同 Resume
func (s *SimulationService) Start() {
	s.Resume()
}

// Resume 恢复模拟：立即执行一次 tick，然后按固定间隔调度
func (s *SimulationService) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumeLocked()
}

// Pause 暂停模拟，最后一帧保持不变
func (s *SimulationService) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseLocked()
}

// Toggle 切换运行/暂停，返回切换后是否运行
func (s *SimulationService) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.Running() {
		s.pauseLocked()
	} else {
		s.resumeLocked()
	}
	return s.machine.Running()
}

func (s *SimulationService) resumeLocked() {
	if s.closed || !s.machine.CanTransition(state.EventResume) {
		return
	}
	if err := s.machine.Trigger(state.EventResume); err != nil {
		s.logger.Error("Failed to resume simulation", zap.Error(err))
		return
	}

	// 首帧不等待完整间隔
	s.tickLocked()
	s.scheduleLocked()
}

func (s *SimulationService) pauseLocked() {
	if !s.machine.CanTransition(state.EventPause) {
		return
	}
	s.cancelLocked()
	if err := s.machine.Trigger(state.EventPause); err != nil {
		s.logger.Error("Failed to pause simulation", zap.Error(err))
		return
	}
	s.notifyLocked()
}

// Reset 重新初始化状态，不改变运行/暂停
func (s *SimulationService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	running := s.machine.Running()
	// 先取消挂起的 tick，再替换状态
	if running {
		s.cancelLocked()
	}

	s.status = s.engine.Initial()
	s.chart = []models.ChartPoint{}
	s.machine.RecordReset()
	s.logger.Info("Simulation reset", zap.Float64("soc", s.status.SOC.Percentage))

	if running {
		s.scheduleLocked()
	}
	s.notifyLocked()
}

// Export 生成导出文档，不修改引擎状态
func (s *SimulationService) Export() *models.ExportArtifact {
	s.mu.Lock()
	vehicleID := s.status.VehicleID
	history := append([]models.TelemetryDataPoint(nil), s.status.TelemetryHistory...)
	s.mu.Unlock()

	now := time.Now()
	return &models.ExportArtifact{
		Filename:   telemetry.ExportFilename(now),
		ExportedAt: now,
		Document:   telemetry.BuildExport(vehicleID, history),
	}
}

// Status 当前状态副本
func (s *SimulationService) Status() *models.BatteryStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.Clone()
}

// Chart 当前图表数据副本
func (s *SimulationService) Chart() []models.ChartPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChartPoint{}, s.chart...)
}

// CellVoltages 按当前电压展开的单体电压
func (s *SimulationService) CellVoltages() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return telemetry.CellVoltages(s.status.Voltage, s.engine.Source())
}

// Running 是否运行中
func (s *SimulationService) Running() bool {
	return s.machine.Running()
}

// Lifecycle 生命周期信息
func (s *SimulationService) Lifecycle() *state.Lifecycle {
	return s.machine.GetLifecycle()
}

// Snapshot 状态、图表与运行标志的一致快照
func (s *SimulationService) Snapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe 订阅状态变化
func (s *SimulationService) Subscribe() <-chan *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan *models.Snapshot, 10)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Close 停止调度并等待 tick 协程退出，关闭订阅通道
func (s *SimulationService) Close() {
	s.mu.Lock()
	s.closed = true
	s.pauseLocked()
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
	s.mu.Unlock()
}

// scheduleLocked 启动 tick 协程，同一时刻最多一个
func (s *SimulationService) scheduleLocked() {
	stopCh := make(chan struct{})
	s.stopCh = stopCh
	epoch := s.epoch

	s.wg.Add(1)
	go s.tickLoop(stopCh, epoch)
}

// cancelLocked 取消调度，使已触发但未执行的 tick 失效
func (s *SimulationService) cancelLocked() {
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	s.epoch++
}

// tickLoop tick 循环
func (s *SimulationService) tickLoop(stopCh <-chan struct{}, epoch uint64) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.mu.Lock()
			if epoch != s.epoch {
				// 调度已被取消或状态已被替换
				s.mu.Unlock()
				return
			}
			s.tickLocked()
			s.mu.Unlock()
		}
	}
}

// tickLocked 推进一步并刷新图表
func (s *SimulationService) tickLocked() {
	s.status = s.engine.Advance(s.status, s.interval)
	s.chart = telemetry.ChartProjection(s.status.TelemetryHistory)
	s.machine.RecordTick()

	s.logger.Debug("Simulation tick",
		zap.Float64("soc", s.status.SOC.Percentage),
		zap.Float64("power", s.status.Current.Power),
		zap.Float64("temperature", s.status.Temperature.Average),
		zap.Int("warnings", len(s.status.Warnings)))

	s.notifyLocked()
}

func (s *SimulationService) snapshotLocked() *models.Snapshot {
	return &models.Snapshot{
		VehicleID: s.status.VehicleID,
		Status:    s.status.Clone(),
		Chart:     append([]models.ChartPoint{}, s.chart...),
		Running:   s.machine.Running(),
	}
}

// notifyLocked 通知订阅者，跳过慢消费者
func (s *SimulationService) notifyLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			s.logger.Debug("Subscriber busy, snapshot skipped")
		}
	}
}

// onStateChange 状态变化回调
func (s *SimulationService) onStateChange(vehicleID, from, to string) {
	s.logger.Info("Simulation state changed", zap.String("from", from), zap.String("to", to))
}
