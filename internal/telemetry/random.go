package telemetry

import (
	"math/rand"
	"sync"
	"time"
)

// Source 随机数来源，测试时可替换为固定序列
type Source interface {
	// Uniform 返回 [min, max) 内的均匀分布随机数
	Uniform(min, max float64) float64
}

// randSource 基于 math/rand 的默认实现
type randSource struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewRandSource 创建随机数来源，seed 为 0 时使用当前时间
func NewRandSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randSource{rand: rand.New(rand.NewSource(seed))}
}

func (r *randSource) Uniform(min, max float64) float64 {
	r.mu.Lock()
	f := r.rand.Float64()
	r.mu.Unlock()
	return min + f*(max-min)
}

// SequenceSource 按顺序返回 [0,1) 内的固定比例，循环使用
// 0.5 表示区间中点
type SequenceSource struct {
	mu     sync.Mutex
	ratios []float64
	next   int
}

// NewSequenceSource 创建固定序列来源
func NewSequenceSource(ratios ...float64) *SequenceSource {
	if len(ratios) == 0 {
		ratios = []float64{0.5}
	}
	return &SequenceSource{ratios: ratios}
}

func (s *SequenceSource) Uniform(min, max float64) float64 {
	s.mu.Lock()
	f := s.ratios[s.next%len(s.ratios)]
	s.next++
	s.mu.Unlock()
	return min + f*(max-min)
}
