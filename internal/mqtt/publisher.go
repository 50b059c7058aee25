package mqtt

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/langchou/voltgazer/internal/models"
)

// Sender 发布消息的最小接口
type Sender interface {
	Publish(topic string, payload []byte, retained bool) error
}

// Publisher 将电池包快照发布到 MQTT
type Publisher struct {
	sender    Sender
	baseTopic string
	logger    *zap.Logger
}

// NewPublisher 创建发布器
func NewPublisher(sender Sender, baseTopic string, logger *zap.Logger) *Publisher {
	return &Publisher{sender: sender, baseTopic: baseTopic, logger: logger}
}

// StateTopic <base>/<vehicleId>/state
func StateTopic(baseTopic, vehicleID string) string {
	return fmt.Sprintf("%s/%s/state", baseTopic, vehicleID)
}

// RunningTopic <base>/<vehicleId>/running
func RunningTopic(baseTopic, vehicleID string) string {
	return fmt.Sprintf("%s/%s/running", baseTopic, vehicleID)
}

// StatePayload 序列化电池状态
func StatePayload(status *models.BatteryStatus) ([]byte, error) {
	data, err := json.Marshal(status)
	if err != nil {
		return nil, fmt.Errorf("marshal battery status: %w", err)
	}
	return data, nil
}

// PublishSnapshot 发布状态与运行标志，均为 retained
func (p *Publisher) PublishSnapshot(snap *models.Snapshot) error {
	if snap == nil || snap.Status == nil {
		return nil
	}

	payload, err := StatePayload(snap.Status)
	if err != nil {
		return err
	}
	if err := p.sender.Publish(StateTopic(p.baseTopic, snap.VehicleID), payload, true); err != nil {
		return err
	}

	running := []byte("false")
	if snap.Running {
		running = []byte("true")
	}
	return p.sender.Publish(RunningTopic(p.baseTopic, snap.VehicleID), running, true)
}

// Forward 消费快照通道直到关闭，发布失败只记录日志
func (p *Publisher) Forward(snapshots <-chan *models.Snapshot) {
	for snap := range snapshots {
		if err := p.PublishSnapshot(snap); err != nil {
			p.logger.Warn("Failed to publish snapshot",
				zap.String("vehicle_id", snap.VehicleID),
				zap.Error(err))
		}
	}
}
