package contracts

import (
	"context"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
)

// DownloadRequest 手动下载请求
// Kind留空默认video,audio时只提取音轨
type DownloadRequest struct {
	URL  string `json:"url" validate:"required,url"`
	Kind string `json:"kind,omitempty" validate:"omitempty,oneof=video audio"`
}

// DownloadResponse 下载登记响应统一格式
type DownloadResponse struct {
	ID             string                 `json:"id"`
	SourceURL      string                 `json:"source_url"`
	Title          string                 `json:"title,omitempty"`
	Uploader       string                 `json:"uploader,omitempty"`
	Platform       string                 `json:"platform"`
	Kind           entities.DownloadKind  `json:"kind"`
	State          entities.DownloadState `json:"state"`
	Progress       float64                `json:"progress"`
	Speed          int64                  `json:"speed"`
	TotalSize      int64                  `json:"total_size"`
	DownloadedSize int64                  `json:"downloaded_size"`
	TaskID         *string                `json:"task_id,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// DownloadListResponse 下载列表响应,含队列占用概览
type DownloadListResponse struct {
	Downloads   []DownloadResponse `json:"downloads"`
	TotalCount  int                `json:"total_count"`
	ActiveCount int                `json:"active_count"`
	QueuedCount int                `json:"queued_count"`
	Concurrency int                `json:"concurrency"`
}

// DownloadService 手动下载队列业务契约
// 手动下载与连续任务是两个独立的并发域,互不抢占槽位
type DownloadService interface {
	// CreateDownload 入队一个单条下载,满并发时排队,重复URL返回冲突
	CreateDownload(ctx context.Context, req DownloadRequest) (*DownloadResponse, error)

	// GetDownload 查询单条下载登记
	GetDownload(ctx context.Context, id string) (*DownloadResponse, error)

	// ListDownloads 列出进行中与排队中的下载
	ListDownloads(ctx context.Context) (*DownloadListResponse, error)

	// CancelDownload 取消下载:排队中直接移除,进行中触发取消钩子
	CancelDownload(ctx context.Context, id string) error
}
