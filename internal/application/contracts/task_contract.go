package contracts

import (
	"context"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
)

// CreateTaskRequest 创建频道连续下载任务请求
// URL与SubscriptionID二选一:给URL时自动注册(或复用)订阅
type CreateTaskRequest struct {
	URL            string `json:"url,omitempty" validate:"omitempty,url"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	Name           string `json:"name,omitempty"`
}

// CreatePlaylistTaskRequest 创建播放列表任务请求
// 下载成功的视频按顺序加入指定名称的合集
type CreatePlaylistTaskRequest struct {
	URL            string `json:"url" validate:"required,url"`
	CollectionName string `json:"collection_name" validate:"required,min=1,max=200"`
}

// TaskResponse 任务响应统一格式
type TaskResponse struct {
	ID                string              `json:"id"`
	SubscriptionID    *string             `json:"subscription_id,omitempty"`
	CollectionID      *string             `json:"collection_id,omitempty"`
	SourceURL         string              `json:"source_url"`
	Platform          string              `json:"platform"`
	Status            entities.TaskStatus `json:"status"`
	TotalVideos       int                 `json:"total_videos"`
	DownloadedCount   int                 `json:"downloaded_count"`
	SkippedCount      int                 `json:"skipped_count"`
	FailedCount       int                 `json:"failed_count"`
	CurrentVideoIndex int                 `json:"current_video_index"`
	Progress          float64             `json:"progress"`
	Error             string              `json:"error,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	CompletedAt       *time.Time          `json:"completed_at,omitempty"`
}

// TaskListResponse 任务列表响应
type TaskListResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	TotalCount int            `json:"total_count"`
	Summary    TaskSummary    `json:"summary"`
}

// TaskSummary 任务列表摘要
type TaskSummary struct {
	ActiveCount    int `json:"active_count"`
	PausedCount    int `json:"paused_count"`
	CompletedCount int `json:"completed_count"`
	CancelledCount int `json:"cancelled_count"`
}

// TaskService 连续下载任务业务契约
type TaskService interface {
	// 任务创建:插入任务行后立即返回,首个下载异步执行
	CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error)
	CreatePlaylistTask(ctx context.Context, req CreatePlaylistTaskRequest) (*TaskResponse, error)

	// 任务查询
	GetTask(ctx context.Context, id string) (*TaskResponse, error)
	ListTasks(ctx context.Context) (*TaskListResponse, error)

	// 状态迁移:pause/resume只在active与paused之间,cancel对终态幂等
	PauseTask(ctx context.Context, id string) error
	ResumeTask(ctx context.Context, id string) error
	CancelTask(ctx context.Context, id string) error

	// 删除与清理:删除非终态任务时先取消再删除
	DeleteTask(ctx context.Context, id string) error
	ClearFinishedTasks(ctx context.Context) (int, error)

	// 启动恢复:上一进程遗留的active任务从持久化游标继续
	RecoverActiveTasks(ctx context.Context) (int, error)
}
