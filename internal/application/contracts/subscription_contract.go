package contracts

import (
	"context"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
)

// SubscriptionRequest 注册订阅源请求
// Kind留空时按URL形态自动判断(含播放列表参数视为playlist)
type SubscriptionRequest struct {
	URL  string `json:"url" validate:"required,url"`
	Name string `json:"name,omitempty"`
	Kind string `json:"kind,omitempty" validate:"omitempty,oneof=channel playlist"`
}

// SubscriptionResponse 订阅源响应
type SubscriptionResponse struct {
	ID            string                    `json:"id"`
	Name          string                    `json:"name"`
	URL           string                    `json:"url"`
	Platform      string                    `json:"platform"`
	Kind          entities.SubscriptionKind `json:"kind"`
	CreatedAt     time.Time                 `json:"created_at"`
	LastCheckedAt *time.Time                `json:"last_checked_at,omitempty"`
}

// SubscriptionListResponse 订阅列表响应
type SubscriptionListResponse struct {
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
	TotalCount    int                    `json:"total_count"`
}

// SubscriptionService 订阅源业务契约
type SubscriptionService interface {
	// CreateSubscription 注册订阅源,URL重复返回冲突
	CreateSubscription(ctx context.Context, req SubscriptionRequest) (*SubscriptionResponse, error)
	ListSubscriptions(ctx context.Context) (*SubscriptionListResponse, error)
	// DeleteSubscription 删除订阅,先取消其未结束的任务
	DeleteSubscription(ctx context.Context, id string) error
}
