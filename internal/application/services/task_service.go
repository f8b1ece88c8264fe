package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/franklioxygen/MyTube-sub001/internal/application/contracts"
	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/domain/valueobjects"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/repository"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/ytdlp"
	apperrors "github.com/franklioxygen/MyTube-sub001/internal/shared/errors"
	"github.com/franklioxygen/MyTube-sub001/pkg/logger"
)

// runToken 单任务执行令牌
// 持有者运行期间的重复触发置rerun,由持有者退出时补跑,
// 避免恢复请求落在上一轮收尾的窗口里被丢掉
type runToken struct {
	rerun atomic.Bool
}

// AppTaskService 连续下载任务服务
// 负责任务的创建、状态迁移和异步处理循环的调度,
// 单个任务同一时刻只允许一个处理协程,由running令牌表保证
type AppTaskService struct {
	taskRepo         *repository.TaskRepository
	subscriptionRepo *repository.SubscriptionRepository
	collectionRepo   *repository.CollectionRepository
	downloadRepo     *repository.DownloadRepository
	videoSvc         *VideoDownloadService
	processor        *TaskProcessor
	fetcher          URLFetcher
	manager          *DownloadManager
	cleanup          *TaskCleanup
	notifier         contracts.NotificationService

	// running 以任务ID为键的执行令牌,LoadOrStore成功者获得本轮处理权
	running sync.Map

	// urlCache 穷举型任务本轮枚举到的条目,取消时用于匹配同URL的独立下载
	mu       sync.RWMutex
	urlCache map[string][]ytdlp.FlatEntry

	rootCtx    context.Context
	rootCancel context.CancelFunc
	wg         sync.WaitGroup
}

// NewAppTaskService 创建任务服务
func NewAppTaskService(
	taskRepo *repository.TaskRepository,
	subscriptionRepo *repository.SubscriptionRepository,
	collectionRepo *repository.CollectionRepository,
	downloadRepo *repository.DownloadRepository,
	videoSvc *VideoDownloadService,
	processor *TaskProcessor,
	fetcher URLFetcher,
	manager *DownloadManager,
	cleanup *TaskCleanup,
	notifier contracts.NotificationService,
) *AppTaskService {
	ctx, cancel := context.WithCancel(context.Background())
	return &AppTaskService{
		taskRepo:         taskRepo,
		subscriptionRepo: subscriptionRepo,
		collectionRepo:   collectionRepo,
		downloadRepo:     downloadRepo,
		videoSvc:         videoSvc,
		processor:        processor,
		fetcher:          fetcher,
		manager:          manager,
		cleanup:          cleanup,
		notifier:         notifier,
		urlCache:         make(map[string][]ytdlp.FlatEntry),
		rootCtx:          ctx,
		rootCancel:       cancel,
	}
}

// CreateTask 创建频道连续下载任务
// 给URL时自动注册或复用订阅,任务行落库后立即返回,列表消费异步进行
func (s *AppTaskService) CreateTask(ctx context.Context, req contracts.CreateTaskRequest) (*contracts.TaskResponse, error) {
	sub, err := s.resolveSubscription(req)
	if err != nil {
		return nil, err
	}

	task := &entities.Task{
		ID:             uuid.New().String(),
		SubscriptionID: &sub.ID,
		SourceURL:      sub.URL,
		Platform:       sub.Platform,
		Status:         entities.TaskStatusActive,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to create task", err)
	}

	logger.Info("continuous task created",
		"task_id", task.ID,
		"subscription_id", sub.ID,
		"kind", string(sub.Kind),
		"url", sub.URL)
	s.spawnRun(task.ID)

	resp := taskToResponse(task)
	return &resp, nil
}

// CreatePlaylistTask 创建播放列表下载任务
// 先建同名合集再建任务,不做任何网络调用,枚举推迟到处理循环
func (s *AppTaskService) CreatePlaylistTask(ctx context.Context, req contracts.CreatePlaylistTaskRequest) (*contracts.TaskResponse, error) {
	rawURL := strings.TrimSpace(req.URL)
	if err := validateSourceURL(rawURL); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.CollectionName)
	if name == "" {
		return nil, apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "collection_name is required")
	}

	col := &entities.Collection{
		ID:   uuid.New().String(),
		Name: name,
	}
	if err := s.collectionRepo.Create(col); err != nil {
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to create collection", err)
	}

	task := &entities.Task{
		ID:           uuid.New().String(),
		CollectionID: &col.ID,
		SourceURL:    rawURL,
		Platform:     valueobjects.DetectPlatform(rawURL).String(),
		Status:       entities.TaskStatusActive,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to create task", err)
	}

	logger.Info("playlist task created",
		"task_id", task.ID,
		"collection_id", col.ID,
		"collection", name,
		"url", rawURL)
	s.spawnRun(task.ID)

	resp := taskToResponse(task)
	return &resp, nil
}

// GetTask 查询单个任务
func (s *AppTaskService) GetTask(ctx context.Context, id string) (*contracts.TaskResponse, error) {
	task, err := s.taskRepo.GetByID(id)
	if err != nil {
		return nil, taskLookupError(err)
	}
	resp := taskToResponse(task)
	return &resp, nil
}

// ListTasks 列出全部任务并附带状态摘要
func (s *AppTaskService) ListTasks(ctx context.Context) (*contracts.TaskListResponse, error) {
	tasks, err := s.taskRepo.GetAll()
	if err != nil {
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to list tasks", err)
	}

	resp := &contracts.TaskListResponse{
		Tasks:      make([]contracts.TaskResponse, 0, len(tasks)),
		TotalCount: len(tasks),
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, taskToResponse(t))
		switch t.Status {
		case entities.TaskStatusActive:
			resp.Summary.ActiveCount++
		case entities.TaskStatusPaused:
			resp.Summary.PausedCount++
		case entities.TaskStatusCompleted:
			resp.Summary.CompletedCount++
		case entities.TaskStatusCancelled:
			resp.Summary.CancelledCount++
		}
	}
	return resp, nil
}

// PauseTask 暂停任务
// 只写状态,处理循环在下一条目边界看到paused后自行退出,游标保留
func (s *AppTaskService) PauseTask(ctx context.Context, id string) error {
	task, err := s.taskRepo.GetByID(id)
	if err != nil {
		return taskLookupError(err)
	}
	if !task.CanPause() {
		return apperrors.NewServiceError(apperrors.ErrorCodeConflict,
			fmt.Sprintf("task is %s, only active tasks can be paused", task.Status))
	}
	if err := s.taskRepo.UpdateStatus(id, entities.TaskStatusPaused); err != nil {
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to pause task", err)
	}
	logger.Info("task paused", "task_id", id)
	return nil
}

// ResumeTask 恢复暂停的任务,从持久化游标继续
func (s *AppTaskService) ResumeTask(ctx context.Context, id string) error {
	task, err := s.taskRepo.GetByID(id)
	if err != nil {
		return taskLookupError(err)
	}
	if !task.CanResume() {
		return apperrors.NewServiceError(apperrors.ErrorCodeConflict,
			fmt.Sprintf("task is %s, only paused tasks can be resumed", task.Status))
	}
	if err := s.taskRepo.UpdateStatus(id, entities.TaskStatusActive); err != nil {
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to resume task", err)
	}
	logger.Info("task resumed", "task_id", id, "current_index", task.CurrentVideoIndex)
	s.spawnRun(id)
	return nil
}

// CancelTask 取消任务,对终态任务幂等
// 先落库cancelled再中断下载,顺序保证处理循环不会在取消后推进游标
func (s *AppTaskService) CancelTask(ctx context.Context, id string) error {
	task, err := s.taskRepo.GetByID(id)
	if err != nil {
		return taskLookupError(err)
	}
	if task.Status.IsTerminal() {
		return nil
	}
	if err := s.taskRepo.MarkCancelled(id, ""); err != nil {
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to cancel task", err)
	}

	// 游标可能在首次读取后又推进过,重载后先定位在途条目,
	// 中断下载会让处理循环退出并丢弃URL缓存,顺序不能反
	fresh, err := s.taskRepo.GetByID(id)
	if err != nil {
		fresh = task
	}
	inflight := s.inflightEntry(fresh)

	aborted := s.abortTaskDownloads(id)
	s.cleanup.CleanupCurrentVideoTempFiles(fresh, inflight, aborted)

	logger.Info("task cancelled",
		"task_id", id,
		"downloaded", fresh.DownloadedCount,
		"current_index", fresh.CurrentVideoIndex)
	if err := s.notifier.NotifyTaskCancelled(ctx, s.taskNotification(fresh)); err != nil {
		logger.Warn("task cancel notification failed", "task_id", id, "error", err)
	}
	return nil
}

// DeleteTask 删除任务,非终态任务先取消
// 历史记录与已下载文件保留,只移除任务行
func (s *AppTaskService) DeleteTask(ctx context.Context, id string) error {
	task, err := s.taskRepo.GetByID(id)
	if err != nil {
		return taskLookupError(err)
	}
	if !task.Status.IsTerminal() {
		if err := s.CancelTask(ctx, id); err != nil {
			return err
		}
	}
	if err := s.taskRepo.Delete(id); err != nil {
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to delete task", err)
	}
	logger.Info("task deleted", "task_id", id)
	return nil
}

// ClearFinishedTasks 批量删除completed与cancelled任务
func (s *AppTaskService) ClearFinishedTasks(ctx context.Context) (int, error) {
	n, err := s.taskRepo.DeleteFinished()
	if err != nil {
		return 0, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to clear finished tasks", err)
	}
	if n > 0 {
		logger.Info("finished tasks cleared", "count", n)
	}
	return int(n), nil
}

// RecoverActiveTasks 启动时恢复上一进程遗留的active任务
// 游标落在最后一条已完成视频之后,恢复只会重复枚举不会重复下载
func (s *AppTaskService) RecoverActiveTasks(ctx context.Context) (int, error) {
	tasks, err := s.taskRepo.GetByStatus(entities.TaskStatusActive)
	if err != nil {
		return 0, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to load active tasks", err)
	}
	for _, t := range tasks {
		s.spawnRun(t.ID)
	}
	if len(tasks) > 0 {
		logger.Info("resuming active tasks from previous run", "count", len(tasks))
	}
	return len(tasks), nil
}

// Stop 停止所有处理循环并等待退出
// 进度在每条视频后已落盘,active任务留在库里等下次启动恢复
func (s *AppTaskService) Stop() {
	s.rootCancel()
	s.wg.Wait()
}

// spawnRun 在受控协程里启动一轮任务处理,Stop会等它们收尾
func (s *AppTaskService) spawnRun(taskID string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runTask(taskID)
	}()
}

// runTask 对单个任务执行一轮完整的列表消费
// 令牌保证同一任务不会被并发处理,持有者在跑时来的触发
// 记到令牌上,退出后任务仍为active就补跑一轮
func (s *AppTaskService) runTask(taskID string) {
	tok := &runToken{}
	if prev, loaded := s.running.LoadOrStore(taskID, tok); loaded {
		prev.(*runToken).rerun.Store(true)
		logger.Debug("task already being processed, queued rerun", "task_id", taskID)
		return
	}
	defer func() {
		s.dropEntries(taskID)
		s.running.Delete(taskID)
		if !tok.rerun.Load() || s.rootCtx.Err() != nil {
			return
		}
		if status, err := s.taskRepo.GetStatus(taskID); err == nil && status == entities.TaskStatusActive {
			s.spawnRun(taskID)
		}
	}()

	task, err := s.taskRepo.GetByID(taskID)
	if err != nil {
		logger.Error("failed to load task for processing", "task_id", taskID, "error", err)
		return
	}
	if task.Status != entities.TaskStatusActive {
		return
	}

	source, err := s.resolveSource(task)
	if err != nil {
		logger.Error("task source unavailable", "task_id", taskID, "error", err)
		if err := s.taskRepo.MarkCancelled(taskID, fmt.Sprintf("source unavailable: %v", err)); err != nil {
			logger.Error("failed to mark task cancelled", "task_id", taskID, "error", err)
		}
		return
	}

	ctx := s.rootCtx
	var cached []ytdlp.FlatEntry

	if source.Windowed && task.TotalVideos == 0 {
		n, err := s.fetcher.Count(ctx, source)
		if err != nil || n <= 0 {
			// 拿不到总数就退化为一次性穷举
			if err != nil {
				logger.Warn("playlist size probe failed, falling back to full enumeration",
					"task_id", taskID, "error", err)
			}
			source.Windowed = false
		} else {
			if err := s.taskRepo.UpdateTotalVideos(taskID, n); err != nil {
				logger.Error("failed to store video total", "task_id", taskID, "error", err)
				return
			}
			task.TotalVideos = n
		}
	}

	if !source.Windowed {
		entries, err := s.fetcher.FetchAll(ctx, source)
		if err != nil {
			// 枚举失败按空列表收尾,任务以已知进度完成而不是悬挂
			logger.Warn("source enumeration failed, treating as empty list",
				"task_id", taskID, "url", source.URL, "error", err)
			entries = nil
		}
		if entries == nil {
			entries = []ytdlp.FlatEntry{}
		}
		total := len(entries)
		if total < task.CurrentVideoIndex {
			// 远端列表缩水到游标之前,本轮没有新条目可消费
			total = task.CurrentVideoIndex
		}
		if total != task.TotalVideos {
			if err := s.taskRepo.UpdateTotalVideos(taskID, total); err != nil {
				logger.Error("failed to store video total", "task_id", taskID, "error", err)
				return
			}
			task.TotalVideos = total
		}
		cached = entries
		s.storeEntries(taskID, entries)
	}

	s.processor.Process(ctx, task, source, cached)
	s.finishRun(taskID)
}

// finishRun 处理循环退出后的收尾:刷新订阅检查时间并通知
// 只有completed需要动作,paused/cancelled各自的入口已处理过
func (s *AppTaskService) finishRun(taskID string) {
	task, err := s.taskRepo.GetByID(taskID)
	if err != nil {
		logger.Error("failed to reload task after processing", "task_id", taskID, "error", err)
		return
	}
	if task.Status != entities.TaskStatusCompleted {
		return
	}
	if task.SubscriptionID != nil {
		if err := s.subscriptionRepo.TouchLastChecked(*task.SubscriptionID, time.Now()); err != nil {
			logger.Warn("failed to update subscription check time",
				"subscription_id", *task.SubscriptionID, "error", err)
		}
	}
	if err := s.notifier.NotifyTaskComplete(s.rootCtx, s.taskNotification(task)); err != nil {
		logger.Warn("task completion notification failed", "task_id", taskID, "error", err)
	}
}

// resolveSource 把任务映射为枚举源
// 播放列表按窗口分批,频道一次性穷举
func (s *AppTaskService) resolveSource(task *entities.Task) (Source, error) {
	if task.SubscriptionID != nil {
		sub, err := s.subscriptionRepo.GetByID(*task.SubscriptionID)
		if err != nil {
			return Source{}, err
		}
		return Source{URL: sub.URL, Windowed: sub.Kind == entities.SubscriptionKindPlaylist}, nil
	}
	// 合集任务的源就是播放列表本身
	return Source{URL: task.SourceURL, Windowed: true}, nil
}

// resolveSubscription 解析创建请求指向的订阅
// 优先用SubscriptionID,否则按URL复用已有订阅或注册新订阅
func (s *AppTaskService) resolveSubscription(req contracts.CreateTaskRequest) (*entities.Subscription, error) {
	if req.SubscriptionID != "" {
		sub, err := s.subscriptionRepo.GetByID(req.SubscriptionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NewServiceError(apperrors.ErrorCodeNotFound, "subscription not found")
			}
			return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to load subscription", err)
		}
		return sub, nil
	}

	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return nil, apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "either url or subscription_id is required")
	}
	if err := validateSourceURL(rawURL); err != nil {
		return nil, err
	}

	existing, err := s.subscriptionRepo.GetByURL(rawURL)
	if err != nil {
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to look up subscription", err)
	}
	if existing != nil {
		return existing, nil
	}

	sub := &entities.Subscription{
		ID:       uuid.New().String(),
		Name:     strings.TrimSpace(req.Name),
		URL:      rawURL,
		Platform: valueobjects.DetectPlatform(rawURL).String(),
		Kind:     DetectSubscriptionKind(rawURL),
	}
	if sub.Name == "" {
		sub.Name = rawURL
	}
	if err := s.subscriptionRepo.Create(sub); err != nil {
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to create subscription", err)
	}
	logger.Info("subscription registered", "subscription_id", sub.ID, "kind", string(sub.Kind), "url", rawURL)
	return sub, nil
}

// abortTaskDownloads 中断任务名下所有下载,返回被中断的登记行ID
// 在途行可能在中断后立刻出登记,调用方清理残留靠返回的ID而非重查;
// 同URL的独立下载也一并取消,属尽力而为,取消失败不阻塞任务取消
func (s *AppTaskService) abortTaskDownloads(taskID string) []string {
	var aborted []string
	rows, err := s.downloadRepo.GetByTaskID(taskID)
	if err != nil {
		logger.Warn("failed to list task downloads for cancellation", "task_id", taskID, "error", err)
	} else {
		for _, row := range rows {
			aborted = append(aborted, row.ID)
			s.videoSvc.CancelRun(row.ID)
		}
	}

	urls := make(map[string]struct{})
	for _, e := range s.cachedEntries(taskID) {
		if e.URL != "" {
			urls[e.URL] = struct{}{}
		}
	}
	if len(urls) == 0 {
		return aborted
	}
	all, err := s.downloadRepo.GetAll()
	if err != nil {
		logger.Warn("failed to scan downloads for url match", "task_id", taskID, "error", err)
		return aborted
	}
	for _, row := range all {
		if row.TaskID != nil {
			continue
		}
		if _, ok := urls[row.SourceURL]; !ok {
			continue
		}
		if s.manager.Cancel(row.ID) {
			aborted = append(aborted, row.ID)
			logger.Info("cancelled standalone download matching task url",
				"task_id", taskID, "download_id", row.ID, "url", row.SourceURL)
		}
	}
	return aborted
}

// inflightEntry 返回取消瞬间正在处理的条目,仅穷举型任务有缓存可查
func (s *AppTaskService) inflightEntry(task *entities.Task) *ytdlp.FlatEntry {
	entries := s.cachedEntries(task.ID)
	if task.CurrentVideoIndex >= 0 && task.CurrentVideoIndex < len(entries) {
		e := entries[task.CurrentVideoIndex]
		return &e
	}
	return nil
}

func (s *AppTaskService) taskNotification(task *entities.Task) contracts.TaskNotificationRequest {
	return contracts.TaskNotificationRequest{
		TaskID:          task.ID,
		SourceName:      s.sourceName(task),
		TotalVideos:     task.TotalVideos,
		DownloadedCount: task.DownloadedCount,
		SkippedCount:    task.SkippedCount,
		FailedCount:     task.FailedCount,
		ErrorMessage:    task.Error,
	}
}

// sourceName 取订阅名或合集名用于通知文案,查不到就退回URL
func (s *AppTaskService) sourceName(task *entities.Task) string {
	if task.SubscriptionID != nil {
		if sub, err := s.subscriptionRepo.GetByID(*task.SubscriptionID); err == nil {
			return sub.Name
		}
	}
	if task.CollectionID != nil {
		if col, err := s.collectionRepo.GetByID(*task.CollectionID); err == nil {
			return col.Name
		}
	}
	return task.SourceURL
}

func (s *AppTaskService) storeEntries(taskID string, entries []ytdlp.FlatEntry) {
	s.mu.Lock()
	s.urlCache[taskID] = entries
	s.mu.Unlock()
}

func (s *AppTaskService) cachedEntries(taskID string) []ytdlp.FlatEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.urlCache[taskID]
}

func (s *AppTaskService) dropEntries(taskID string) {
	s.mu.Lock()
	delete(s.urlCache, taskID)
	s.mu.Unlock()
}

// DetectSubscriptionKind 根据URL形态判断订阅类型
// 带列表参数或playlist路径的按播放列表处理,其余视为频道
func DetectSubscriptionKind(rawURL string) entities.SubscriptionKind {
	lower := strings.ToLower(rawURL)
	if strings.Contains(lower, "list=") || strings.Contains(lower, "/playlist") {
		return entities.SubscriptionKindPlaylist
	}
	return entities.SubscriptionKindChannel
}

func validateSourceURL(rawURL string) error {
	if rawURL == "" {
		return apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "url is required")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "url must start with http:// or https://")
	}
	return nil
}

func taskLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewServiceError(apperrors.ErrorCodeNotFound, "task not found")
	}
	return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to load task", err)
}

func taskToResponse(t *entities.Task) contracts.TaskResponse {
	return contracts.TaskResponse{
		ID:                t.ID,
		SubscriptionID:    t.SubscriptionID,
		CollectionID:      t.CollectionID,
		SourceURL:         t.SourceURL,
		Platform:          t.Platform,
		Status:            t.Status,
		TotalVideos:       t.TotalVideos,
		DownloadedCount:   t.DownloadedCount,
		SkippedCount:      t.SkippedCount,
		FailedCount:       t.FailedCount,
		CurrentVideoIndex: t.CurrentVideoIndex,
		Progress:          t.Progress(),
		Error:             t.Error,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		CompletedAt:       t.CompletedAt,
	}
}
