package contracts

import (
	"context"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
)

// VideoResponse 已入库视频响应
type VideoResponse struct {
	ID            string    `json:"id"`
	SourceURL     string    `json:"source_url"`
	Title         string    `json:"title"`
	Uploader      string    `json:"uploader"`
	Platform      string    `json:"platform"`
	Duration      int64     `json:"duration"`
	FileSize      int64     `json:"file_size"`
	FilePath      string    `json:"file_path"`
	ThumbnailPath string    `json:"thumbnail_path,omitempty"`
	UploadDate    string    `json:"upload_date,omitempty"`
	DownloadedAt  time.Time `json:"downloaded_at"`
}

// VideoListResponse 视频列表响应
type VideoListResponse struct {
	Videos     []VideoResponse `json:"videos"`
	TotalCount int             `json:"total_count"`
}

// CollectionResponse 合集响应
type CollectionResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	VideoCount int       `json:"video_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CollectionListResponse 合集列表响应
type CollectionListResponse struct {
	Collections []CollectionResponse `json:"collections"`
	TotalCount  int                  `json:"total_count"`
}

// HistoryListRequest 历史查询分页参数
type HistoryListRequest struct {
	Limit  int `json:"limit,omitempty" form:"limit"`
	Offset int `json:"offset,omitempty" form:"offset"`
}

// HistoryItemResponse 下载历史响应
type HistoryItemResponse struct {
	ID        string                 `json:"id"`
	TaskID    *string                `json:"task_id,omitempty"`
	SourceURL string                 `json:"source_url"`
	Title     string                 `json:"title"`
	Uploader  string                 `json:"uploader,omitempty"`
	Platform  string                 `json:"platform"`
	Status    entities.HistoryStatus `json:"status"`
	Error     string                 `json:"error,omitempty"`
	VideoID   *string                `json:"video_id,omitempty"`
	FilePath  string                 `json:"file_path,omitempty"`
	FileSize  int64                  `json:"file_size,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// HistoryListResponse 历史列表响应
type HistoryListResponse struct {
	Items  []HistoryItemResponse `json:"items"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// LibraryService 媒体库业务契约:视频、合集与下载历史的查询维护
type LibraryService interface {
	// 视频库
	ListVideos(ctx context.Context) (*VideoListResponse, error)
	GetVideo(ctx context.Context, id string) (*VideoResponse, error)
	// DeleteVideo 删除入库记录并追加deleted历史;removeFile为真时同时删除媒体文件
	DeleteVideo(ctx context.Context, id string, removeFile bool) error

	// 合集只读视图,合集本身由播放列表任务创建
	ListCollections(ctx context.Context) (*CollectionListResponse, error)
	GetCollectionVideos(ctx context.Context, id string) (*VideoListResponse, error)

	// 历史账本:只追加,支持单条删除与整体清空
	ListHistory(ctx context.Context, req HistoryListRequest) (*HistoryListResponse, error)
	DeleteHistoryItem(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) (int, error)
}
