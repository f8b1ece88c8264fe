package handlers

import (
	"strconv"

	"github.com/franklioxygen/MyTube-sub001/internal/application/contracts"
	"github.com/franklioxygen/MyTube-sub001/internal/application/services"
	apperrors "github.com/franklioxygen/MyTube-sub001/internal/shared/errors"
	"github.com/franklioxygen/MyTube-sub001/pkg/utils"
	"github.com/gin-gonic/gin"
)

// LibraryHandler 媒体库REST处理器:视频、合集与下载历史
type LibraryHandler struct {
	container *services.ServiceContainer
}

// NewLibraryHandler 创建媒体库处理器
func NewLibraryHandler(container *services.ServiceContainer) *LibraryHandler {
	return &LibraryHandler{container: container}
}

// ListVideos 获取视频库
// @Summary 获取视频库
// @Description 列出全部已入库视频
// @Tags 媒体库
// @Produce json
// @Success 200 {object} utils.Response "视频列表"
// @Router /videos [get]
func (h *LibraryHandler) ListVideos(c *gin.Context) {
	response, err := h.container.GetLibraryService().ListVideos(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, response)
}

// GetVideo 获取视频详情
// @Summary 获取视频详情
// @Description 按ID获取入库视频
// @Tags 媒体库
// @Produce json
// @Param id path string true "视频ID"
// @Success 200 {object} utils.Response "视频详情"
// @Failure 404 {object} map[string]interface{} "视频不存在"
// @Router /videos/{id} [get]
func (h *LibraryHandler) GetVideo(c *gin.Context) {
	response, err := h.container.GetLibraryService().GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, response)
}

// DeleteVideo 删除视频
// @Summary 删除视频
// @Description 从库中删除视频并记入历史账本,默认连同媒体文件一起删除
// @Tags 媒体库
// @Produce json
// @Param id path string true "视频ID"
// @Param remove_file query bool false "是否删除媒体文件" default(true)
// @Success 200 {object} utils.Response "已删除"
// @Failure 404 {object} map[string]interface{} "视频不存在"
// @Router /videos/{id} [delete]
func (h *LibraryHandler) DeleteVideo(c *gin.Context) {
	videoID := c.Param("id")
	removeFile, err := strconv.ParseBool(c.DefaultQuery("remove_file", "true"))
	if err != nil {
		c.Error(apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "remove_file must be a boolean"))
		return
	}

	if err := h.container.GetLibraryService().DeleteVideo(c.Request.Context(), videoID, removeFile); err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, gin.H{"video_id": videoID, "file_removed": removeFile})
}

// ListCollections 获取合集列表
// @Summary 获取合集列表
// @Description 列出全部合集,合集由播放列表任务创建
// @Tags 媒体库
// @Produce json
// @Success 200 {object} utils.Response "合集列表"
// @Router /collections [get]
func (h *LibraryHandler) ListCollections(c *gin.Context) {
	response, err := h.container.GetLibraryService().ListCollections(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, response)
}

// GetCollectionVideos 获取合集内视频
// @Summary 获取合集内视频
// @Description 按播放列表顺序列出合集内的视频
// @Tags 媒体库
// @Produce json
// @Param id path string true "合集ID"
// @Success 200 {object} utils.Response "视频列表"
// @Failure 404 {object} map[string]interface{} "合集不存在"
// @Router /collections/{id}/videos [get]
func (h *LibraryHandler) GetCollectionVideos(c *gin.Context) {
	response, err := h.container.GetLibraryService().GetCollectionVideos(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, response)
}

// ListHistory 获取下载历史
// @Summary 获取下载历史
// @Description 按时间倒序分页列出下载历史账本
// @Tags 媒体库
// @Produce json
// @Param limit query int false "每页数量" default(50)
// @Param offset query int false "偏移量" default(0)
// @Success 200 {object} utils.Response "历史列表"
// @Router /history [get]
func (h *LibraryHandler) ListHistory(c *gin.Context) {
	var req contracts.HistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "invalid query parameters: "+err.Error()))
		return
	}

	response, err := h.container.GetLibraryService().ListHistory(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, response)
}

// DeleteHistoryItem 删除单条历史
// @Summary 删除单条历史
// @Description 按ID删除一条历史记录,不影响已入库的视频
// @Tags 媒体库
// @Produce json
// @Param id path string true "历史记录ID"
// @Success 200 {object} utils.Response "已删除"
// @Failure 404 {object} map[string]interface{} "记录不存在"
// @Router /history/{id} [delete]
func (h *LibraryHandler) DeleteHistoryItem(c *gin.Context) {
	itemID := c.Param("id")
	if err := h.container.GetLibraryService().DeleteHistoryItem(c.Request.Context(), itemID); err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, gin.H{"history_id": itemID})
}

// ClearHistory 清空历史
// @Summary 清空历史
// @Description 删除全部历史记录
// @Tags 媒体库
// @Produce json
// @Success 200 {object} utils.Response "清理数量"
// @Router /history [delete]
func (h *LibraryHandler) ClearHistory(c *gin.Context) {
	n, err := h.container.GetLibraryService().ClearHistory(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, gin.H{"cleared": n})
}
