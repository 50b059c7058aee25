package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/langchou/voltgazer/internal/models"
	"github.com/langchou/voltgazer/internal/service"
	"github.com/langchou/voltgazer/pkg/ws"
)

// ExportArchive 导出归档存储
type ExportArchive interface {
	Enabled() bool
	Create(ctx context.Context, artifact *models.ExportArtifact, payload []byte) (*models.ArchivedExport, error)
	ListByVehicle(ctx context.Context, vehicleID string, limit, offset int) ([]*models.ArchivedExport, error)
	CountByVehicle(ctx context.Context, vehicleID string) (int, error)
	GetByID(ctx context.Context, id int64) (*models.ArchivedExport, error)
}

// Handler HTTP 处理器
type Handler struct {
	logger   *zap.Logger
	registry *service.Registry
	archive  ExportArchive
	wsHub    *ws.Hub
	upgrader websocket.Upgrader
}

// NewHandler 创建处理器
func NewHandler(
	logger *zap.Logger,
	registry *service.Registry,
	archive ExportArchive,
	wsHub *ws.Hub,
) *Handler {
	return &Handler{
		logger:   logger,
		registry: registry,
		archive:  archive,
		wsHub:    wsHub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 开发环境允许所有来源
			},
		},
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		// 电池包
		api.GET("/packs", h.ListPacks)
		api.GET("/packs/:id/status", h.GetStatus)
		api.GET("/packs/:id/chart", h.GetChart)
		api.GET("/packs/:id/snapshot", h.GetSnapshot)
		api.GET("/packs/:id/cells", h.GetCells)

		// 模拟控制
		api.POST("/packs/:id/toggle", h.Toggle)
		api.POST("/packs/:id/pause", h.Pause)
		api.POST("/packs/:id/resume", h.Resume)
		api.POST("/packs/:id/reset", h.Reset)

		// 导出
		api.GET("/packs/:id/export", h.Export)
		api.GET("/packs/:id/exports", h.ListExports)
		api.GET("/exports/:id", h.GetExport)
	}

	// WebSocket
	r.GET("/ws", h.HandleWebSocket)

	// 健康检查
	r.GET("/health", h.HealthCheck)
}

// HandleWebSocket WebSocket 处理
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	client.Register()

	// 启动读写协程
	go client.ReadPump()
	go client.WritePump()
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"ws_clients": h.wsHub.ClientCount(),
		"packs":      h.registry.Len(),
		"archive":    h.archive != nil && h.archive.Enabled(),
	})
}
