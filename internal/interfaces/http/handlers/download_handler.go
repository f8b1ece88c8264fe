package handlers

import (
	"github.com/franklioxygen/MyTube-sub001/internal/application/contracts"
	"github.com/franklioxygen/MyTube-sub001/internal/application/services"
	apperrors "github.com/franklioxygen/MyTube-sub001/internal/shared/errors"
	"github.com/franklioxygen/MyTube-sub001/pkg/utils"
	"github.com/gin-gonic/gin"
)

// DownloadHandler 手动下载REST处理器
type DownloadHandler struct {
	container *services.ServiceContainer
}

// NewDownloadHandler 创建下载处理器
func NewDownloadHandler(container *services.ServiceContainer) *DownloadHandler {
	return &DownloadHandler{container: container}
}

// CreateDownload 创建手动下载
// @Summary 创建手动下载
// @Description 登记单条视频下载,有空闲槽位立即开始,否则排队等待
// @Tags 下载
// @Accept json
// @Produce json
// @Param request body contracts.DownloadRequest true "下载请求"
// @Success 200 {object} utils.Response "下载已登记"
// @Failure 400 {object} map[string]interface{} "请求参数错误"
// @Failure 409 {object} map[string]interface{} "该URL已在库中或正在下载"
// @Failure 429 {object} map[string]interface{} "排队队列已满"
// @Router /downloads [post]
func (h *DownloadHandler) CreateDownload(c *gin.Context) {
	var req contracts.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "invalid request body: "+err.Error()))
		return
	}

	response, err := h.container.GetDownloadService().CreateDownload(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, response)
}

// ListDownloads 获取下载列表
// @Summary 获取下载列表
// @Description 列出进行中与排队中的下载及并发占用概览
// @Tags 下载
// @Produce json
// @Success 200 {object} utils.Response "下载列表"
// @Router /downloads [get]
func (h *DownloadHandler) ListDownloads(c *gin.Context) {
	response, err := h.container.GetDownloadService().ListDownloads(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, response)
}

// GetDownload 获取下载详情
// @Summary 获取下载详情
// @Description 按ID查询单条下载登记
// @Tags 下载
// @Produce json
// @Param id path string true "下载ID"
// @Success 200 {object} utils.Response "下载详情"
// @Failure 404 {object} map[string]interface{} "下载不存在"
// @Router /downloads/{id} [get]
func (h *DownloadHandler) GetDownload(c *gin.Context) {
	response, err := h.container.GetDownloadService().GetDownload(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, response)
}

// CancelDownload 取消下载
// @Summary 取消下载
// @Description 取消手动下载,排队中的直接移除,进行中的中断并清理临时文件
// @Tags 下载
// @Produce json
// @Param id path string true "下载ID"
// @Success 200 {object} utils.Response "已取消"
// @Failure 404 {object} map[string]interface{} "下载不存在"
// @Failure 409 {object} map[string]interface{} "任务持有的下载不能在此取消"
// @Router /downloads/{id} [delete]
func (h *DownloadHandler) CancelDownload(c *gin.Context) {
	downloadID := c.Param("id")
	if err := h.container.GetDownloadService().CancelDownload(c.Request.Context(), downloadID); err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, gin.H{"download_id": downloadID, "status": "cancelled"})
}
