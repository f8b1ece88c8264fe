package services

import (
	"fmt"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/application/contracts"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/config"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/repository"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/storage"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/ytdlp"
	"github.com/franklioxygen/MyTube-sub001/pkg/logger"
)

// serviceVersion 健康检查里上报的服务版本
const serviceVersion = "1.0.0"

// ServiceContainer 应用服务容器,负责依赖装配与生命周期
// 构造顺序:存储 -> 仓储 -> 下载器 -> 应用服务 -> 后台清扫
type ServiceContainer struct {
	config *config.Config
	db     *storage.DB

	ytdlpClient *ytdlp.Client

	taskService         contracts.TaskService
	downloadService     contracts.DownloadService
	libraryService      contracts.LibraryService
	subscriptionService contracts.SubscriptionService
	notificationService contracts.NotificationService

	taskSvc     *AppTaskService
	manager     *DownloadManager
	maintenance *MaintenanceService
}

// NewServiceContainer 创建并装配全部服务
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	db, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	taskRepo := repository.NewTaskRepository(db)
	downloadRepo := repository.NewDownloadRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	// 上一进程崩溃遗留的active登记已无对应进程,必须先清掉,
	// 否则部分唯一索引会挡住这些URL的重新下载
	purged, err := downloadRepo.PurgeActive()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to purge stale downloads: %w", err)
	}
	if purged > 0 {
		logger.Info("purged stale active download registrations", "count", purged)
	}

	ytClient := ytdlp.NewClient(cfg.Ytdlp.BinaryPath, cfg.Ytdlp.Format,
		cfg.Ytdlp.MetadataTimeoutSeconds, cfg.Ytdlp.QPS)
	if err := ytClient.CheckBinary(); err != nil {
		logger.Warn("yt-dlp binary not available, downloads will fail until installed",
			"binary", cfg.Ytdlp.BinaryPath, "error", err)
	}

	notifier := NewAppNotificationService(cfg)
	videoSvc := NewVideoDownloadService(cfg, ytClient, videoRepo, downloadRepo, historyRepo)
	fetcher := NewVideoURLFetcher(ytClient, cfg.Task.WindowSize)
	manager := NewDownloadManager(cfg.Download.Concurrency, cfg.Download.QueueSize)
	processor := NewTaskProcessor(taskRepo, videoRepo, historyRepo, collectionRepo,
		videoSvc, fetcher, time.Duration(cfg.Task.ItemDelaySeconds)*time.Second)
	cleanup := NewTaskCleanup(cfg.Storage.MediaDir, downloadRepo)

	taskSvc := NewAppTaskService(taskRepo, subscriptionRepo, collectionRepo, downloadRepo,
		videoSvc, processor, fetcher, manager, cleanup, notifier)

	c := &ServiceContainer{
		config:              cfg,
		db:                  db,
		ytdlpClient:         ytClient,
		taskService:         taskSvc,
		downloadService:     NewAppDownloadService(downloadRepo, videoRepo, historyRepo, videoSvc, manager, notifier),
		libraryService:      NewAppLibraryService(videoRepo, collectionRepo, historyRepo),
		subscriptionService: NewAppSubscriptionService(subscriptionRepo, taskRepo, taskSvc),
		notificationService: notifier,
		taskSvc:             taskSvc,
		manager:             manager,
		maintenance:         NewMaintenanceService(cfg, taskRepo, historyRepo, downloadRepo),
	}

	if err := c.maintenance.Start(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to start maintenance service: %w", err)
	}
	return c, nil
}

// Close 按依赖逆序停机
// 先停清扫和处理循环,再关队列,最后关数据库
func (c *ServiceContainer) Close() {
	c.maintenance.Stop()
	c.taskSvc.Stop()
	c.manager.Shutdown()
	if err := c.db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}

// GetTaskService 获取连续任务服务
func (c *ServiceContainer) GetTaskService() contracts.TaskService {
	return c.taskService
}

// GetDownloadService 获取手动下载服务
func (c *ServiceContainer) GetDownloadService() contracts.DownloadService {
	return c.downloadService
}

// GetLibraryService 获取媒体库服务
func (c *ServiceContainer) GetLibraryService() contracts.LibraryService {
	return c.libraryService
}

// GetSubscriptionService 获取订阅服务
func (c *ServiceContainer) GetSubscriptionService() contracts.SubscriptionService {
	return c.subscriptionService
}

// GetNotificationService 获取通知服务
func (c *ServiceContainer) GetNotificationService() contracts.NotificationService {
	return c.notificationService
}

// GetConfig 获取配置
func (c *ServiceContainer) GetConfig() *config.Config {
	return c.config
}

// GetHealthStatus 汇总系统健康状态
// 数据库不可用整体unhealthy,yt-dlp缺失降级为degraded
func (c *ServiceContainer) GetHealthStatus() *contracts.SystemHealth {
	now := time.Now()

	dbHealth := contracts.ComponentHealth{Name: "database", Status: contracts.HealthStatusHealthy, LastCheck: now}
	if err := c.db.Conn().Ping(); err != nil {
		dbHealth.Status = contracts.HealthStatusUnhealthy
		dbHealth.Message = err.Error()
	}

	ytHealth := contracts.ComponentHealth{Name: "ytdlp", Status: contracts.HealthStatusHealthy, LastCheck: now}
	if err := c.ytdlpClient.CheckBinary(); err != nil {
		ytHealth.Status = contracts.HealthStatusUnhealthy
		ytHealth.Message = err.Error()
	}

	overall := contracts.HealthStatusHealthy
	if ytHealth.Status != contracts.HealthStatusHealthy {
		overall = contracts.HealthStatusDegraded
	}
	if dbHealth.Status != contracts.HealthStatusHealthy {
		overall = contracts.HealthStatusUnhealthy
	}

	return &contracts.SystemHealth{
		Status:     overall,
		Components: []contracts.ComponentHealth{dbHealth, ytHealth},
		Timestamp:  now,
		Version:    serviceVersion,
	}
}
