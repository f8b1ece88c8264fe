package services

import (
	"context"
	"fmt"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/application/contracts"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/config"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/telegram"
)

// AppNotificationService Telegram通知服务
// 通知关闭时client为nil,所有方法静默无操作
type AppNotificationService struct {
	telegramClient *telegram.Client
	config         *config.Config
}

// NewAppNotificationService 创建通知服务
func NewAppNotificationService(cfg *config.Config) *AppNotificationService {
	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient = telegram.NewClient(&cfg.Telegram)
	}
	return &AppNotificationService{
		telegramClient: telegramClient,
		config:         cfg,
	}
}

// IsEnabled 通知是否可用
func (s *AppNotificationService) IsEnabled() bool {
	return s.telegramClient != nil && s.config.Telegram.Enabled
}

// NotifyDownloadComplete 单条下载成功通知
func (s *AppNotificationService) NotifyDownloadComplete(ctx context.Context, req contracts.DownloadNotificationRequest) error {
	if !s.IsEnabled() {
		return nil
	}
	content := fmt.Sprintf("上传者: %s\n大小: %.2f MB\nURL: %s",
		req.Uploader, float64(req.FileSize)/(1024*1024), req.SourceURL)
	return s.telegramClient.SendNotification(&telegram.NotificationMessage{
		Type:      telegram.NotifyDownloadCompleted,
		Title:     req.Title,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// NotifyDownloadFailed 单条下载失败通知
func (s *AppNotificationService) NotifyDownloadFailed(ctx context.Context, req contracts.DownloadNotificationRequest) error {
	if !s.IsEnabled() {
		return nil
	}
	title := req.Title
	if title == "" {
		title = req.SourceURL
	}
	content := fmt.Sprintf("URL: %s\n原因: %s", req.SourceURL, req.ErrorMessage)
	return s.telegramClient.SendNotification(&telegram.NotificationMessage{
		Type:      telegram.NotifyDownloadFailed,
		Title:     title,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// NotifyTaskComplete 连续任务完成通知,附带本轮统计
func (s *AppNotificationService) NotifyTaskComplete(ctx context.Context, req contracts.TaskNotificationRequest) error {
	if !s.IsEnabled() {
		return nil
	}
	return s.telegramClient.SendNotification(&telegram.NotificationMessage{
		Type:      telegram.NotifyTaskCompleted,
		Title:     req.SourceName,
		Content:   taskSummaryContent(req),
		Timestamp: time.Now(),
	})
}

// NotifyTaskCancelled 连续任务取消通知
func (s *AppNotificationService) NotifyTaskCancelled(ctx context.Context, req contracts.TaskNotificationRequest) error {
	if !s.IsEnabled() {
		return nil
	}
	return s.telegramClient.SendNotification(&telegram.NotificationMessage{
		Type:      telegram.NotifyTaskCancelled,
		Title:     req.SourceName,
		Content:   taskSummaryContent(req),
		Timestamp: time.Now(),
	})
}

func taskSummaryContent(req contracts.TaskNotificationRequest) string {
	content := fmt.Sprintf("总数: %d\n成功: %d\n跳过: %d\n失败: %d",
		req.TotalVideos, req.DownloadedCount, req.SkippedCount, req.FailedCount)
	if req.ErrorMessage != "" {
		content += fmt.Sprintf("\n错误: %s", req.ErrorMessage)
	}
	return content
}
