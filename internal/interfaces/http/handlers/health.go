package handlers

import (
	"net/http"

	"github.com/franklioxygen/MyTube-sub001/internal/application/contracts"
	"github.com/franklioxygen/MyTube-sub001/internal/application/services"
	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	container *services.ServiceContainer
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(container *services.ServiceContainer) *HealthHandler {
	return &HealthHandler{container: container}
}

// HealthCheck 健康检查
// @Summary 健康检查
// @Description 汇总数据库与yt-dlp的组件健康状态,数据库不可用时返回503
// @Tags 系统
// @Produce json
// @Success 200 {object} contracts.SystemHealth "健康或降级"
// @Failure 503 {object} contracts.SystemHealth "不可用"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	health := h.container.GetHealthStatus()

	status := http.StatusOK
	if health.Status == contracts.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}
