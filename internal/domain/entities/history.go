package entities

import "time"

// HistoryStatus 下载历史状态枚举
type HistoryStatus string

const (
	HistoryStatusSuccess HistoryStatus = "success" // 下载成功
	HistoryStatusFailed  HistoryStatus = "failed"  // 下载失败
	HistoryStatusSkipped HistoryStatus = "skipped" // 去重跳过
	HistoryStatusDeleted HistoryStatus = "deleted" // 成功后媒体文件被删除
)

// HistoryItem 下载历史实体,只追加不修改
type HistoryItem struct {
	ID        string        `json:"id"`                  // 历史记录ID
	TaskID    *string       `json:"task_id,omitempty"`   // 所属连续任务,手动下载为空
	SourceURL string        `json:"source_url"`          // 视频页面URL
	Title     string        `json:"title"`               // 视频标题
	Uploader  string        `json:"uploader"`            // 上传者
	Platform  string        `json:"platform"`            // youtube/bilibili/generic
	Status    HistoryStatus `json:"status"`              // success/failed/skipped/deleted
	Error     string        `json:"error,omitempty"`     // 失败原因
	VideoID   *string       `json:"video_id,omitempty"`  // 入库视频回溯引用,视频删除后仍保留
	FilePath  string        `json:"file_path,omitempty"`
	FileSize  int64         `json:"file_size,omitempty"` // 成功下载的字节数
	CreatedAt time.Time     `json:"created_at"`          // 记录时间
}
