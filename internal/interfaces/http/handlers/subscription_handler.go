package handlers

import (
	"github.com/franklioxygen/MyTube-sub001/internal/application/contracts"
	"github.com/franklioxygen/MyTube-sub001/internal/application/services"
	apperrors "github.com/franklioxygen/MyTube-sub001/internal/shared/errors"
	"github.com/franklioxygen/MyTube-sub001/pkg/utils"
	"github.com/gin-gonic/gin"
)

// SubscriptionHandler 订阅源REST处理器
type SubscriptionHandler struct {
	container *services.ServiceContainer
}

// NewSubscriptionHandler 创建订阅处理器
func NewSubscriptionHandler(container *services.ServiceContainer) *SubscriptionHandler {
	return &SubscriptionHandler{container: container}
}

// CreateSubscription 注册订阅源
// @Summary 注册订阅源
// @Description 注册频道或播放列表订阅,kind留空时按URL形态自动判断
// @Tags 订阅
// @Accept json
// @Produce json
// @Param request body contracts.SubscriptionRequest true "订阅请求"
// @Success 200 {object} utils.Response "订阅已注册"
// @Failure 400 {object} map[string]interface{} "请求参数错误"
// @Failure 409 {object} map[string]interface{} "该URL已注册"
// @Router /subscriptions [post]
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req contracts.SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "invalid request body: "+err.Error()))
		return
	}

	response, err := h.container.GetSubscriptionService().CreateSubscription(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, response)
}

// ListSubscriptions 获取订阅列表
// @Summary 获取订阅列表
// @Description 列出全部已注册的订阅源
// @Tags 订阅
// @Produce json
// @Success 200 {object} utils.Response "订阅列表"
// @Router /subscriptions [get]
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	response, err := h.container.GetSubscriptionService().ListSubscriptions(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, response)
}

// DeleteSubscription 删除订阅源
// @Summary 删除订阅源
// @Description 删除订阅源,先取消其未结束的任务,已入库视频不受影响
// @Tags 订阅
// @Produce json
// @Param id path string true "订阅ID"
// @Success 200 {object} utils.Response "已删除"
// @Failure 404 {object} map[string]interface{} "订阅不存在"
// @Router /subscriptions/{id} [delete]
func (h *SubscriptionHandler) DeleteSubscription(c *gin.Context) {
	subscriptionID := c.Param("id")
	if err := h.container.GetSubscriptionService().DeleteSubscription(c.Request.Context(), subscriptionID); err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, gin.H{"subscription_id": subscriptionID})
}
