package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franklioxygen/MyTube-sub001/docs"
	"github.com/franklioxygen/MyTube-sub001/internal/application/services"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/config"
	"github.com/franklioxygen/MyTube-sub001/internal/interfaces/http/routes"
	"github.com/franklioxygen/MyTube-sub001/pkg/logger"
	"github.com/gin-gonic/gin"
)

// @title MyTube API
// @version 1.0
// @description 自托管媒体库的下载编排服务:单条下载队列与订阅连续下载任务

// @license.name MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := logger.Init(logger.Options{
		Level:     cfg.Log.Level,
		Output:    cfg.Log.Output,
		Format:    cfg.Log.Format,
		FilePath:  cfg.Log.FilePath,
		Colorize:  cfg.Log.Colorize,
		AddSource: cfg.Log.AddSource,
	}); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	container, err := services.NewServiceContainer(cfg)
	if err != nil {
		log.Fatal("Failed to initialize service container:", err)
	}

	// 上一进程崩溃或被杀时遗留的active任务从持久化游标处继续
	if cfg.Maintenance.RecoverActiveOnStart {
		n, err := container.GetTaskService().RecoverActiveTasks(context.Background())
		if err != nil {
			logger.Error("failed to recover active tasks", "error", err)
		} else if n > 0 {
			logger.Info("recovered active tasks", "count", n)
		}
	}

	router := routes.NewRouter(container)
	srv := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced server shutdown", "error", err)
	}

	// 容器停机会中断进行中的下载并等待处理协程退出
	container.Close()
	logger.Info("server stopped")
}
