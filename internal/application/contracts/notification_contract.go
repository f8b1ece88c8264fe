package contracts

import "context"

// DownloadNotificationRequest 单条下载结果通知请求
type DownloadNotificationRequest struct {
	DownloadID   string `json:"download_id"`
	Title        string `json:"title"`
	Uploader     string `json:"uploader,omitempty"`
	SourceURL    string `json:"source_url"`
	FileSize     int64  `json:"file_size,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// TaskNotificationRequest 连续任务结果通知请求
type TaskNotificationRequest struct {
	TaskID          string `json:"task_id"`
	SourceName      string `json:"source_name"`
	TotalVideos     int    `json:"total_videos"`
	DownloadedCount int    `json:"downloaded_count"`
	SkippedCount    int    `json:"skipped_count"`
	FailedCount     int    `json:"failed_count"`
	ErrorMessage    string `json:"error_message,omitempty"`
}

// NotificationService 通知服务业务契约
// 通知关闭时所有方法为无操作;发送失败只记日志,不影响下载结果
type NotificationService interface {
	NotifyDownloadComplete(ctx context.Context, req DownloadNotificationRequest) error
	NotifyDownloadFailed(ctx context.Context, req DownloadNotificationRequest) error
	NotifyTaskComplete(ctx context.Context, req TaskNotificationRequest) error
	NotifyTaskCancelled(ctx context.Context, req TaskNotificationRequest) error
}
