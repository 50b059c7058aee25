package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/voltgazer/internal/repository"
	"github.com/langchou/voltgazer/internal/telemetry"
)

// Export 下载当前遥测历史
// GET /api/packs/:id/export
// 配置了数据库时同时归档，归档失败不影响下载
func (h *Handler) Export(c *gin.Context) {
	svc, ok := h.lookupPack(c)
	if !ok {
		return
	}

	artifact := svc.Export()
	body, err := telemetry.EncodeExport(artifact.Document)
	if err != nil {
		h.logger.Error("Failed to marshal export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export telemetry"})
		return
	}

	if h.archive != nil && h.archive.Enabled() {
		if rec, err := h.archive.Create(c.Request.Context(), artifact, body); err != nil {
			h.logger.Warn("Failed to archive export",
				zap.String("vehicle_id", svc.VehicleID()),
				zap.Error(err))
		} else {
			h.logger.Info("Export archived",
				zap.String("vehicle_id", rec.VehicleID),
				zap.Int64("export_id", rec.ID),
				zap.Int("samples", rec.SampleCount))
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", artifact.Filename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// ListExports 已归档的导出
func (h *Handler) ListExports(c *gin.Context) {
	svc, ok := h.lookupPack(c)
	if !ok {
		return
	}
	if h.archive == nil || !h.archive.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Export archive disabled"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage

	exports, err := h.archive.ListByVehicle(c.Request.Context(), svc.VehicleID(), perPage, offset)
	if err != nil {
		h.logger.Error("Failed to list exports", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list exports"})
		return
	}

	total, _ := h.archive.CountByVehicle(c.Request.Context(), svc.VehicleID())

	c.JSON(http.StatusOK, gin.H{
		"data": exports,
		"pagination": gin.H{
			"page":     page,
			"per_page": perPage,
			"total":    total,
		},
	})
}

// GetExport 下载已归档的导出
func (h *Handler) GetExport(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid export ID"})
		return
	}
	if h.archive == nil || !h.archive.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Export archive disabled"})
		return
	}

	rec, err := h.archive.GetByID(c.Request.Context(), id)
	switch {
	case errors.Is(err, repository.ErrExportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Export not found"})
		return
	case err != nil:
		h.logger.Error("Failed to get export", zap.Error(err), zap.Int64("export_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get export"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", rec.Filename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", rec.Payload)
}
