package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franklioxygen/MyTube-sub001/internal/application/contracts"
	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/repository"
	apperrors "github.com/franklioxygen/MyTube-sub001/internal/shared/errors"
	"github.com/franklioxygen/MyTube-sub001/pkg/logger"
)

// AppDownloadService 手动下载队列服务
// 接收单条URL请求,经去重预检后交给并发管理器执行,
// 与连续任务共用同一套登记表和历史账本
type AppDownloadService struct {
	downloadRepo *repository.DownloadRepository
	videoRepo    *repository.VideoRepository
	historyRepo  *repository.HistoryRepository
	videoSvc     *VideoDownloadService
	manager      *DownloadManager
	notifier     contracts.NotificationService
}

// NewAppDownloadService 创建手动下载服务
func NewAppDownloadService(
	downloadRepo *repository.DownloadRepository,
	videoRepo *repository.VideoRepository,
	historyRepo *repository.HistoryRepository,
	videoSvc *VideoDownloadService,
	manager *DownloadManager,
	notifier contracts.NotificationService,
) *AppDownloadService {
	return &AppDownloadService{
		downloadRepo: downloadRepo,
		videoRepo:    videoRepo,
		historyRepo:  historyRepo,
		videoSvc:     videoSvc,
		manager:      manager,
		notifier:     notifier,
	}
}

// CreateDownload 入队一个手动下载
// 同步做两级去重预检(已入库、已登记),通过后登记排队行并提交作业,
// 预检放过的并发重复会在排队行转active或视频入库时被唯一约束拦下
func (s *AppDownloadService) CreateDownload(ctx context.Context, req contracts.DownloadRequest) (*contracts.DownloadResponse, error) {
	rawURL := strings.TrimSpace(req.URL)
	if err := validateSourceURL(rawURL); err != nil {
		return nil, err
	}
	kind := entities.DownloadKindVideo
	switch req.Kind {
	case "", string(entities.DownloadKindVideo):
	case string(entities.DownloadKindAudio):
		kind = entities.DownloadKindAudio
	default:
		return nil, apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "kind must be video or audio")
	}

	inLibrary, err := s.videoRepo.ExistsBySourceURL(rawURL)
	if err != nil {
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to check video library", err)
	}
	if inLibrary {
		return nil, apperrors.NewServiceError(apperrors.ErrorCodeConflict, "video already in library")
	}
	registered, err := s.downloadRepo.ExistsBySourceURL(rawURL)
	if err != nil {
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to check download queue", err)
	}
	if registered {
		return nil, apperrors.NewServiceError(apperrors.ErrorCodeConflict, "url already downloading or queued")
	}

	dl, err := s.videoSvc.RegisterQueued(rawURL, "", kind)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewServiceError(apperrors.ErrorCodeConflict, "url already downloading or queued")
		}
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to register download", err)
	}

	if _, err := s.manager.Add(dl.ID, s.downloadJob(dl)); err != nil {
		s.videoSvc.Unregister(dl.ID)
		switch {
		case errors.Is(err, ErrQueueFull):
			return nil, apperrors.NewServiceError(apperrors.ErrorCodeQuotaExceeded, "download queue is full")
		case errors.Is(err, ErrManagerClosed):
			return nil, apperrors.NewServiceError(apperrors.ErrorCodeServiceUnavailable, "download manager is shutting down")
		default:
			return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to enqueue download", err)
		}
	}

	logger.Info("download enqueued", "download_id", dl.ID, "url", rawURL)
	resp := downloadToResponse(dl)
	return &resp, nil
}

// downloadJob 把一条登记包装成管理器作业
// 作业拿到槽位时可能已被取消,先查ctx再转active,保证取消的排队行自清理
func (s *AppDownloadService) downloadJob(dl *entities.Download) DownloadJob {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			// 排队期间被取消,移除登记即可,历史不记取消
			s.videoSvc.Unregister(dl.ID)
			logger.Info("queued download cancelled before start", "download_id", dl.ID)
			return err
		}

		if err := s.videoSvc.Activate(dl); err != nil {
			s.videoSvc.Unregister(dl.ID)
			if errors.Is(err, repository.ErrDuplicate) {
				// 排队期间同URL被其他下载抢先激活,按去重跳过收场
				s.appendSkipped(dl, "already downloading")
				logger.Info("queued download skipped, url taken by another download",
					"download_id", dl.ID, "url", dl.SourceURL)
				return nil
			}
			logger.Error("failed to activate queued download", "download_id", dl.ID, "error", err)
			return err
		}

		video, err := s.videoSvc.Run(ctx, dl)
		switch {
		case err == nil:
			s.notifyComplete(ctx, dl, video)
		case errors.Is(err, context.Canceled):
			// 取消由用户发起,不另行通知
		case errors.Is(err, ErrVideoExists):
			// 跳过历史已由下载执行器记录
		default:
			s.notifyFailed(ctx, dl, err)
		}
		return err
	}
}

// GetDownload 查询单条下载登记
func (s *AppDownloadService) GetDownload(ctx context.Context, id string) (*contracts.DownloadResponse, error) {
	row, err := s.downloadRepo.GetByID(id)
	if err != nil {
		return nil, downloadLookupError(err)
	}
	resp := downloadToResponse(row)
	return &resp, nil
}

// ListDownloads 列出进行中与排队中的下载,含并发占用概览
func (s *AppDownloadService) ListDownloads(ctx context.Context) (*contracts.DownloadListResponse, error) {
	rows, err := s.downloadRepo.GetAll()
	if err != nil {
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to list downloads", err)
	}

	resp := &contracts.DownloadListResponse{
		Downloads:   make([]contracts.DownloadResponse, 0, len(rows)),
		TotalCount:  len(rows),
		Concurrency: s.manager.Concurrency(),
	}
	for _, row := range rows {
		resp.Downloads = append(resp.Downloads, downloadToResponse(row))
		switch row.State {
		case entities.DownloadStateActive:
			resp.ActiveCount++
		case entities.DownloadStateQueued:
			resp.QueuedCount++
		}
	}
	return resp, nil
}

// CancelDownload 取消手动下载
// 排队中直接出队移除,进行中触发取消钩子杀子进程;
// 任务名下的登记行不走这里,提示调用方取消任务
func (s *AppDownloadService) CancelDownload(ctx context.Context, id string) error {
	row, err := s.downloadRepo.GetByID(id)
	if err != nil {
		return downloadLookupError(err)
	}
	if row.TaskID != nil {
		return apperrors.NewServiceError(apperrors.ErrorCodeConflict,
			"download belongs to a continuous task, cancel the task instead")
	}

	if s.manager.Cancel(id) {
		logger.Info("download cancel requested", "download_id", id, "state", string(row.State))
		return nil
	}

	// 管理器不认识这行:上一进程遗留的排队积压,直接移除登记
	if err := s.downloadRepo.Remove(id); err != nil {
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to remove download", err)
	}
	logger.Info("stale queued download removed", "download_id", id)
	return nil
}

func (s *AppDownloadService) appendSkipped(dl *entities.Download, reason string) {
	title := dl.Title
	if title == "" {
		title = dl.SourceURL
	}
	item := &entities.HistoryItem{
		TaskID:    dl.TaskID,
		SourceURL: dl.SourceURL,
		Title:     title,
		Uploader:  dl.Uploader,
		Platform:  dl.Platform,
		Status:    entities.HistoryStatusSkipped,
		Error:     reason,
	}
	if err := s.historyRepo.Append(item); err != nil {
		logger.Error("failed to append history", "url", dl.SourceURL, "error", err)
	}
}

func (s *AppDownloadService) notifyComplete(ctx context.Context, dl *entities.Download, video *entities.Video) {
	req := contracts.DownloadNotificationRequest{
		DownloadID: dl.ID,
		Title:      video.Title,
		Uploader:   video.Uploader,
		SourceURL:  dl.SourceURL,
		FileSize:   video.FileSize,
	}
	if err := s.notifier.NotifyDownloadComplete(ctx, req); err != nil {
		logger.Warn("download completion notification failed", "download_id", dl.ID, "error", err)
	}
}

func (s *AppDownloadService) notifyFailed(ctx context.Context, dl *entities.Download, cause error) {
	req := contracts.DownloadNotificationRequest{
		DownloadID:   dl.ID,
		Title:        dl.Title,
		Uploader:     dl.Uploader,
		SourceURL:    dl.SourceURL,
		ErrorMessage: cause.Error(),
	}
	if err := s.notifier.NotifyDownloadFailed(ctx, req); err != nil {
		logger.Warn("download failure notification failed", "download_id", dl.ID, "error", err)
	}
}

func downloadLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewServiceError(apperrors.ErrorCodeNotFound, "download not found")
	}
	return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to load download", err)
}

func downloadToResponse(d *entities.Download) contracts.DownloadResponse {
	return contracts.DownloadResponse{
		ID:             d.ID,
		SourceURL:      d.SourceURL,
		Title:          d.Title,
		Uploader:       d.Uploader,
		Platform:       d.Platform,
		Kind:           d.Kind,
		State:          d.State,
		Progress:       d.Progress,
		Speed:          d.Speed,
		TotalSize:      d.TotalSize,
		DownloadedSize: d.DownloadedSize,
		TaskID:         d.TaskID,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
