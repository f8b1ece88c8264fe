package handlers

import (
	"github.com/franklioxygen/MyTube-sub001/internal/application/contracts"
	"github.com/franklioxygen/MyTube-sub001/internal/application/services"
	apperrors "github.com/franklioxygen/MyTube-sub001/internal/shared/errors"
	"github.com/franklioxygen/MyTube-sub001/pkg/utils"
	"github.com/gin-gonic/gin"
)

// TaskHandler 连续下载任务REST处理器,纯协议转换层
type TaskHandler struct {
	container *services.ServiceContainer
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(container *services.ServiceContainer) *TaskHandler {
	return &TaskHandler{container: container}
}

// CreateTask 创建频道下载任务
// @Summary 创建频道下载任务
// @Description 为频道订阅创建连续下载任务,任务创建后立即返回并异步逐条下载
// @Tags 任务
// @Accept json
// @Produce json
// @Param request body contracts.CreateTaskRequest true "创建任务请求"
// @Success 200 {object} utils.Response "任务已创建"
// @Failure 400 {object} map[string]interface{} "请求参数错误"
// @Failure 409 {object} map[string]interface{} "同源任务已存在"
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req contracts.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "invalid request body: "+err.Error()))
		return
	}

	response, err := h.container.GetTaskService().CreateTask(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, response)
}

// CreatePlaylistTask 创建播放列表下载任务
// @Summary 创建播放列表下载任务
// @Description 下载整个播放列表并把成功的视频按顺序归入指定名称的合集
// @Tags 任务
// @Accept json
// @Produce json
// @Param request body contracts.CreatePlaylistTaskRequest true "创建播放列表任务请求"
// @Success 200 {object} utils.Response "任务已创建"
// @Failure 400 {object} map[string]interface{} "请求参数错误"
// @Router /tasks/playlist [post]
func (h *TaskHandler) CreatePlaylistTask(c *gin.Context) {
	var req contracts.CreatePlaylistTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "invalid request body: "+err.Error()))
		return
	}

	response, err := h.container.GetTaskService().CreatePlaylistTask(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, response)
}

// ListTasks 获取任务列表
// @Summary 获取任务列表
// @Description 列出全部任务及按状态分组的数量摘要
// @Tags 任务
// @Produce json
// @Success 200 {object} utils.Response "任务列表"
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	response, err := h.container.GetTaskService().ListTasks(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, response)
}

// GetTask 获取任务详情
// @Summary 获取任务详情
// @Description 按ID获取任务当前状态、计数器与进度
// @Tags 任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} utils.Response "任务详情"
// @Failure 404 {object} map[string]interface{} "任务不存在"
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	response, err := h.container.GetTaskService().GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, response)
}

// PauseTask 暂停任务
// @Summary 暂停任务
// @Description 暂停active任务,当前视频下载完后在条目边界停下
// @Tags 任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} utils.Response "已暂停"
// @Failure 404 {object} map[string]interface{} "任务不存在"
// @Failure 409 {object} map[string]interface{} "任务状态不允许暂停"
// @Router /tasks/{id}/pause [post]
func (h *TaskHandler) PauseTask(c *gin.Context) {
	taskID := c.Param("id")
	if err := h.container.GetTaskService().PauseTask(c.Request.Context(), taskID); err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, gin.H{"task_id": taskID, "status": "paused"})
}

// ResumeTask 恢复任务
// @Summary 恢复任务
// @Description 恢复paused任务,从持久化游标处继续下载
// @Tags 任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} utils.Response "已恢复"
// @Failure 404 {object} map[string]interface{} "任务不存在"
// @Failure 409 {object} map[string]interface{} "任务状态不允许恢复"
// @Router /tasks/{id}/resume [post]
func (h *TaskHandler) ResumeTask(c *gin.Context) {
	taskID := c.Param("id")
	if err := h.container.GetTaskService().ResumeTask(c.Request.Context(), taskID); err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, gin.H{"task_id": taskID, "status": "active"})
}

// CancelTask 取消任务
// @Summary 取消任务
// @Description 取消任务并中断正在进行的下载,对已结束的任务幂等
// @Tags 任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} utils.Response "已取消"
// @Failure 404 {object} map[string]interface{} "任务不存在"
// @Router /tasks/{id}/cancel [post]
func (h *TaskHandler) CancelTask(c *gin.Context) {
	taskID := c.Param("id")
	if err := h.container.GetTaskService().CancelTask(c.Request.Context(), taskID); err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, gin.H{"task_id": taskID, "status": "cancelled"})
}

// DeleteTask 删除任务
// @Summary 删除任务
// @Description 删除任务记录,未结束的任务先取消再删除,历史账本不受影响
// @Tags 任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} utils.Response "已删除"
// @Failure 404 {object} map[string]interface{} "任务不存在"
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID := c.Param("id")
	if err := h.container.GetTaskService().DeleteTask(c.Request.Context(), taskID); err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, gin.H{"task_id": taskID})
}

// ClearFinishedTasks 清理已结束任务
// @Summary 清理已结束任务
// @Description 删除全部completed与cancelled状态的任务记录
// @Tags 任务
// @Produce json
// @Success 200 {object} utils.Response "清理数量"
// @Router /tasks/clear-finished [post]
func (h *TaskHandler) ClearFinishedTasks(c *gin.Context) {
	n, err := h.container.GetTaskService().ClearFinishedTasks(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	utils.Success(c, gin.H{"cleared": n})
}
