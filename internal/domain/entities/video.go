package entities

import "time"

// Video 已入库视频实体
// SourceURL全局唯一,是去重索引的依据
type Video struct {
	ID            string    `json:"id"`         // 视频ID
	SourceURL     string    `json:"source_url"` // 视频页面URL,唯一
	Title         string    `json:"title"`
	Uploader      string    `json:"uploader"`
	Platform      string    `json:"platform"`       // youtube/bilibili/generic
	Duration      int64     `json:"duration"`       // 时长,秒
	FileSize      int64     `json:"file_size"`      // 媒体文件大小,字节
	FilePath      string    `json:"file_path"`      // 媒体文件路径
	ThumbnailPath string    `json:"thumbnail_path"` // 封面图路径,可为空
	UploadDate    string    `json:"upload_date"`    // 发布日期,yyyymmdd,可为空
	DownloadedAt  time.Time `json:"downloaded_at"`  // 入库时间
}
