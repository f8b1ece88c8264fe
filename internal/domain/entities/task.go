package entities

import "time"

// TaskStatus 连续下载任务状态枚举
type TaskStatus string

const (
	TaskStatusActive    TaskStatus = "active"    // 处理中,进程重启后自动恢复
	TaskStatusPaused    TaskStatus = "paused"    // 已暂停,保留游标
	TaskStatusCompleted TaskStatus = "completed" // 列表已耗尽
	TaskStatusCancelled TaskStatus = "cancelled" // 已取消
)

// IsTerminal 判断状态是否为终态
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// Task 连续下载任务实体
// 一个任务跟踪单个订阅源(频道或播放列表)的逐条下载进度,
// 游标和计数在每条视频处理完后持久化,进程崩溃后可从断点恢复
type Task struct {
	ID                string      `json:"id"`                        // 任务ID
	SubscriptionID    *string     `json:"subscription_id,omitempty"` // 来源订阅,与CollectionID二选一
	CollectionID      *string     `json:"collection_id,omitempty"`   // 目标合集,与SubscriptionID二选一
	SourceURL         string      `json:"source_url"`                // 频道或播放列表URL
	Platform          string      `json:"platform"`                  // youtube/bilibili/generic
	Status            TaskStatus  `json:"status"`                    // 任务状态
	TotalVideos       int         `json:"total_videos"`              // 枚举到的视频总数,0表示未知
	DownloadedCount   int         `json:"downloaded_count"`          // 成功下载数
	SkippedCount      int         `json:"skipped_count"`             // 去重跳过数
	FailedCount       int         `json:"failed_count"`              // 失败数
	CurrentVideoIndex int         `json:"current_video_index"`       // 已消费条目数,即下次处理的0基索引
	Error             string      `json:"error,omitempty"`           // 致命错误信息
	CreatedAt         time.Time   `json:"created_at"`                // 创建时间
	UpdatedAt         time.Time   `json:"updated_at"`                // 更新时间
	CompletedAt       *time.Time  `json:"completed_at,omitempty"`    // 完成时间
}

// CanPause 仅active任务可暂停
func (t *Task) CanPause() bool {
	return t.Status == TaskStatusActive
}

// CanResume 仅paused任务可恢复
func (t *Task) CanResume() bool {
	return t.Status == TaskStatusPaused
}

// CanCancel 非终态任务均可取消
func (t *Task) CanCancel() bool {
	return !t.Status.IsTerminal()
}

// Progress 返回0-100的进度百分比,总数未知时返回0
func (t *Task) Progress() float64 {
	if t.TotalVideos <= 0 {
		return 0
	}
	p := float64(t.CurrentVideoIndex) / float64(t.TotalVideos) * 100
	if p > 100 {
		p = 100
	}
	return p
}
