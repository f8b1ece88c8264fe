package entities

import "time"

// SubscriptionKind 订阅源类型枚举
type SubscriptionKind string

const (
	SubscriptionKindChannel  SubscriptionKind = "channel"  // 频道,一次性穷举
	SubscriptionKindPlaylist SubscriptionKind = "playlist" // 播放列表,按窗口分批处理
)

// Subscription 订阅源实体
type Subscription struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"` // 频道名或列表标题
	URL           string           `json:"url"`
	Platform      string           `json:"platform"` // youtube/bilibili/generic
	Kind          SubscriptionKind `json:"kind"`     // channel/playlist
	CreatedAt     time.Time        `json:"created_at"`
	LastCheckedAt *time.Time       `json:"last_checked_at,omitempty"` // 最近一次任务完成时间
}
