package entities

import "time"

// Collection 视频合集实体
// 连续任务可挂接一个合集,下载成功的视频按顺序加入
type Collection struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	VideoCount int       `json:"video_count"` // 合集内视频数,查询时聚合
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
