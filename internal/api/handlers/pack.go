package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/voltgazer/internal/service"
)

// lookupPack 按路径参数查找电池包，不存在时直接写 404
func (h *Handler) lookupPack(c *gin.Context) (*service.SimulationService, bool) {
	svc, err := h.registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Battery pack not found"})
		return nil, false
	}
	return svc, true
}

// ListPacks 电池包列表
func (h *Handler) ListPacks(c *gin.Context) {
	packs := make([]gin.H, 0, h.registry.Len())
	for _, svc := range h.registry.List() {
		lc := svc.Lifecycle()
		packs = append(packs, gin.H{
			"vehicle_id": svc.VehicleID(),
			"running":    svc.Running(),
			"state":      lc.CurrentState,
			"ticks":      lc.Ticks,
			"resets":     lc.Resets,
			"interval":   svc.Interval().Milliseconds(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": packs})
}

// GetStatus 当前电池状态
func (h *Handler) GetStatus(c *gin.Context) {
	svc, ok := h.lookupPack(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": svc.Status()})
}

// GetChart 图表数据
func (h *Handler) GetChart(c *gin.Context) {
	svc, ok := h.lookupPack(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": svc.Chart()})
}

// GetSnapshot 状态、图表与运行标志
func (h *Handler) GetSnapshot(c *gin.Context) {
	svc, ok := h.lookupPack(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": svc.Snapshot()})
}

// GetCells 单体电压
func (h *Handler) GetCells(c *gin.Context) {
	svc, ok := h.lookupPack(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": svc.CellVoltages()})
}

// Toggle 切换运行/暂停
// POST /api/packs/:id/toggle
func (h *Handler) Toggle(c *gin.Context) {
	svc, ok := h.lookupPack(c)
	if !ok {
		return
	}

	running := svc.Toggle()
	h.logger.Info("Simulation toggled via API",
		zap.String("vehicle_id", svc.VehicleID()),
		zap.Bool("running", running))
	c.JSON(http.StatusOK, gin.H{
		"vehicle_id": svc.VehicleID(),
		"running":    running,
	})
}

// Pause 暂停模拟
func (h *Handler) Pause(c *gin.Context) {
	svc, ok := h.lookupPack(c)
	if !ok {
		return
	}

	svc.Pause()
	c.JSON(http.StatusOK, gin.H{
		"message":    "Simulation paused",
		"vehicle_id": svc.VehicleID(),
		"running":    svc.Running(),
	})
}

// Resume 恢复模拟
func (h *Handler) Resume(c *gin.Context) {
	svc, ok := h.lookupPack(c)
	if !ok {
		return
	}

	svc.Resume()
	c.JSON(http.StatusOK, gin.H{
		"message":    "Simulation resumed",
		"vehicle_id": svc.VehicleID(),
		"running":    svc.Running(),
	})
}

// Reset 重置模拟，保持运行/暂停不变
// POST /api/packs/:id/reset
func (h *Handler) Reset(c *gin.Context) {
	svc, ok := h.lookupPack(c)
	if !ok {
		return
	}

	svc.Reset()
	h.logger.Info("Simulation reset via API", zap.String("vehicle_id", svc.VehicleID()))
	c.JSON(http.StatusOK, gin.H{"data": svc.Snapshot()})
}
