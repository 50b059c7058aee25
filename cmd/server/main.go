package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/langchou/voltgazer/internal/api/handlers"
	"github.com/langchou/voltgazer/internal/config"
	"github.com/langchou/voltgazer/internal/models"
	"github.com/langchou/voltgazer/internal/mqtt"
	"github.com/langchou/voltgazer/internal/repository"
	"github.com/langchou/voltgazer/internal/service"
	"github.com/langchou/voltgazer/internal/telemetry"
	"github.com/langchou/voltgazer/pkg/ws"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := initLogger(cfg.Debug)
	defer logger.Sync()

	logger.Info("Starting Voltgazer",
		zap.String("port", cfg.ServerPort),
		zap.Duration("tick_interval", cfg.TickInterval),
		zap.Strings("vehicles", cfg.VehicleIDs))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 导出归档（可选）
	var db *repository.DB
	if cfg.DatabaseURL != "" {
		db, err = repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect database", zap.Error(err))
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Info("Database migrated successfully")
	} else {
		logger.Info("DATABASE_URL not set, export archive disabled")
	}
	exportRepo := repository.NewExportRepository(db)

	// 创建电池包模拟
	identity := telemetry.Identity{
		VehicleID:     cfg.VehicleIDs[0],
		BatteryPackID: cfg.PackID,
		ModelName:     cfg.ModelName,
	}
	registry := service.NewRegistry(logger, identity, cfg.TickInterval)
	if cfg.RandomSeed != 0 {
		// 每个电池包使用不同的种子
		next := cfg.RandomSeed
		registry.SetSourceFactory(func() telemetry.Source {
			src := telemetry.NewRandSource(next)
			next++
			return src
		})
	}
	for _, id := range cfg.VehicleIDs {
		registry.GetOrCreate(id)
	}

	// 创建 WebSocket Hub
	wsHub := ws.NewHub(logger)
	wsHub.SetInitDataProvider(func() *ws.InitData {
		packs := registry.List()
		snaps := make([]*models.Snapshot, 0, len(packs))
		for _, svc := range packs {
			snaps = append(snaps, svc.Snapshot())
		}
		return &ws.InitData{Packs: snaps}
	})
	go wsHub.Run()

	// MQTT 发布（可选）
	var mqttClient *mqtt.Client
	if cfg.MQTTURL != "" {
		mqttClient, err = mqtt.NewClient(cfg.MQTTURL, "voltgazer-"+cfg.PackID, logger)
		if err != nil {
			logger.Error("Failed to connect MQTT broker, publisher disabled", zap.Error(err))
		}
	}

	// 订阅状态更新并转发
	for _, svc := range registry.List() {
		go wsHub.Forward(svc.Subscribe())
		if mqttClient != nil {
			publisher := mqtt.NewPublisher(mqttClient, cfg.MQTTBaseTopic, logger)
			go publisher.Forward(svc.Subscribe())
		}
	}

	if cfg.AutoStart {
		for _, svc := range registry.List() {
			svc.Start()
		}
	}

	// 创建 HTTP 处理器
	handler := handlers.NewHandler(logger, registry, exportRepo, wsHub)

	// 设置 Gin 模式
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	handler.RegisterRoutes(router)

	// 启动 HTTP 服务器
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", server.Addr))

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// 停止模拟，订阅通道随之关闭
	registry.CloseAll()
	wsHub.Stop()
	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}

	// 优雅关闭
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// initLogger 初始化日志
func initLogger(debug bool) *zap.Logger {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}

	logger, _ := config.Build()
	return logger
}

// corsMiddleware CORS 中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
