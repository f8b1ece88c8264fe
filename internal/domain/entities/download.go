package entities

import "time"

// DownloadState 下载登记状态枚举
type DownloadState string

const (
	DownloadStateActive DownloadState = "active" // 正在下载
	DownloadStateQueued DownloadState = "queued" // 排队等待空闲槽位
)

// DownloadKind 下载类型枚举
type DownloadKind string

const (
	DownloadKindVideo DownloadKind = "video" // 手动视频下载
	DownloadKindAudio DownloadKind = "audio" // 手动纯音频下载
	DownloadKindTask  DownloadKind = "task"  // 连续任务的单条条目
)

// Download 下载登记实体
// 登记表只保留进行中和排队中的下载,同一URL的active登记全局唯一,
// 下载结束(成功或失败)后从登记表移除并写入历史
type Download struct {
	ID             string        `json:"id"`                // 下载ID
	SourceURL      string        `json:"source_url"`        // 视频页面URL
	Title          string        `json:"title"`             // 视频标题,入队时可为空
	Uploader       string        `json:"uploader"`          // 上传者
	Platform       string        `json:"platform"`          // youtube/bilibili/generic
	Kind           DownloadKind  `json:"kind"`              // video/audio/task
	State          DownloadState `json:"state"`             // active/queued
	Progress       float64       `json:"progress"`          // 0-100
	Speed          int64         `json:"speed"`             // 瞬时速度,字节每秒,未知为0
	TotalSize      int64         `json:"total_size"`        // 预估总字节数,未知为0
	DownloadedSize int64         `json:"downloaded_size"`   // 已下载字节数
	TaskID         *string       `json:"task_id,omitempty"` // 所属连续任务,手动下载为空
	CreatedAt      time.Time     `json:"created_at"`        // 入队时间,决定排队顺序
	UpdatedAt      time.Time     `json:"updated_at"`        // 更新时间
}
