package service

import (
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/langchou/voltgazer/internal/telemetry"
)

// ErrPackNotFound 电池包不存在
var ErrPackNotFound = errors.New("battery pack not found")

// Registry 电池包 ID -> 模拟控制器
type Registry struct {
	mu       sync.RWMutex
	logger   *zap.Logger
	identity telemetry.Identity
	interval time.Duration
	newRand  func() telemetry.Source
	packs    map[string]*SimulationService
}

// NewRegistry 创建注册表，identity 提供除 VehicleID 以外的默认标识
func NewRegistry(logger *zap.Logger, identity telemetry.Identity, interval time.Duration) *Registry {
	return &Registry{
		logger:   logger,
		identity: identity,
		interval: interval,
		newRand:  func() telemetry.Source { return telemetry.NewRandSource(0) },
		packs:    make(map[string]*SimulationService),
	}
}

// SetSourceFactory 替换随机数来源工厂
func (r *Registry) SetSourceFactory(factory func() telemetry.Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.newRand = factory
}

// GetOrCreate 获取或创建控制器，返回是否新建
func (r *Registry) GetOrCreate(vehicleID string) (*SimulationService, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if svc, ok := r.packs[vehicleID]; ok {
		return svc, false
	}

	identity := r.identity
	identity.VehicleID = vehicleID
	engine := telemetry.NewEngine(identity, r.newRand(), nil)
	svc := NewSimulationService(r.logger, engine, r.interval)
	r.packs[vehicleID] = svc

	r.logger.Info("Registered battery pack",
		zap.String("vehicle_id", vehicleID),
		zap.String("pack_id", identity.BatteryPackID),
		zap.Duration("interval", r.interval))
	return svc, true
}

// Get 获取控制器
func (r *Registry) Get(vehicleID string) (*SimulationService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.packs[vehicleID]
	if !ok {
		return nil, ErrPackNotFound
	}
	return svc, nil
}

// IDs 按字典序返回所有电池包 ID
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.packs))
	for id := range r.packs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// List 按 ID 顺序返回所有控制器
func (r *Registry) List() []*SimulationService {
	ids := r.IDs()

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*SimulationService, 0, len(ids))
	for _, id := range ids {
		if svc, ok := r.packs[id]; ok {
			out = append(out, svc)
		}
	}
	return out
}

// Len 电池包数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.packs)
}

// CloseAll 停止所有模拟
func (r *Registry) CloseAll() {
	for _, svc := range r.List() {
		svc.Close()
	}
}
