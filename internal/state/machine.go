package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
)

// 模拟运行状态
const (
	StateRunning = "running"
	StatePaused  = "paused"
)

// 事件常量
const (
	EventResume = "resume"
	EventPause  = "pause"
)

// Lifecycle 运行状态快照
type Lifecycle struct {
	VehicleID    string    `json:"vehicle_id"`
	CurrentState string    `json:"state"`
	Since        time.Time `json:"since"`
	Ticks        uint64    `json:"ticks"`
	Resets       uint64    `json:"resets"`
}

// Machine 模拟生命周期状态机
type Machine struct {
	mu            sync.RWMutex
	vehicleID     string
	fsm           *fsm.FSM
	lifecycle     *Lifecycle
	onStateChange func(vehicleID, from, to string)
}

// NewMachine 创建状态机
func NewMachine(vehicleID, initialState string, onStateChange func(vehicleID, from, to string)) *Machine {
	if initialState == "" {
		initialState = StatePaused
	}

	m := &Machine{
		vehicleID:     vehicleID,
		onStateChange: onStateChange,
		lifecycle: &Lifecycle{
			VehicleID:    vehicleID,
			CurrentState: initialState,
			Since:        time.Now(),
		},
	}

	m.fsm = fsm.NewFSM(
		initialState,
		fsm.Events{
			{Name: EventResume, Src: []string{StatePaused}, Dst: StateRunning},
			{Name: EventPause, Src: []string{StateRunning}, Dst: StatePaused},
		},
		fsm.Callbacks{
			"after_event": func(ctx context.Context, e *fsm.Event) {
				if m.onStateChange != nil && e.Src != e.Dst {
					m.onStateChange(m.vehicleID, e.Src, e.Dst)
				}
			},
		},
	)

	return m
}

// CurrentState 获取当前状态
func (m *Machine) CurrentState() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fsm.Current()
}

// Running 是否运行中
func (m *Machine) Running() bool {
	return m.CurrentState() == StateRunning
}

// GetLifecycle 获取状态副本
func (m *Machine) GetLifecycle() *Lifecycle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lc := *m.lifecycle
	lc.CurrentState = m.fsm.Current()
	return &lc
}

// RecordTick 记录一次 tick
func (m *Machine) RecordTick() {
	m.mu.Lock()
	m.lifecycle.Ticks++
	m.mu.Unlock()
}

// RecordReset 记录一次重置
func (m *Machine) RecordReset() {
	m.mu.Lock()
	m.lifecycle.Resets++
	m.lifecycle.Ticks = 0
	m.mu.Unlock()
}

// Trigger 触发事件
func (m *Machine) Trigger(event string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fsm.Event(context.Background(), event); err != nil {
		return fmt.Errorf("trigger event %s: %w", event, err)
	}

	m.lifecycle.CurrentState = m.fsm.Current()
	m.lifecycle.Since = time.Now()
	return nil
}

// CanTransition 检查是否可以转换
func (m *Machine) CanTransition(event string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fsm.Can(event)
}
