package telegram

import "time"

// 通知类型
const (
	NotifyDownloadCompleted = "download_completed"
	NotifyDownloadFailed    = "download_failed"
	NotifyTaskCompleted     = "task_completed"
	NotifyTaskCancelled     = "task_cancelled"
)

type NotificationMessage struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
