package services

import (
	"context"
	"errors"

	"github.com/franklioxygen/MyTube-sub001/internal/application/contracts"
	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/repository"
	apperrors "github.com/franklioxygen/MyTube-sub001/internal/shared/errors"
	"github.com/franklioxygen/MyTube-sub001/pkg/logger"
)

const (
	defaultHistoryPageSize = 50
	maxHistoryPageSize     = 500
)

// AppLibraryService 媒体库服务
// 视频、合集与历史账本的查询维护,不参与下载流程
type AppLibraryService struct {
	videoRepo      *repository.VideoRepository
	collectionRepo *repository.CollectionRepository
	historyRepo    *repository.HistoryRepository
}

// NewAppLibraryService 创建媒体库服务
func NewAppLibraryService(
	videoRepo *repository.VideoRepository,
	collectionRepo *repository.CollectionRepository,
	historyRepo *repository.HistoryRepository,
) *AppLibraryService {
	return &AppLibraryService{
		videoRepo:      videoRepo,
		collectionRepo: collectionRepo,
		historyRepo:    historyRepo,
	}
}

// ListVideos 列出已入库视频
func (s *AppLibraryService) ListVideos(ctx context.Context) (*contracts.VideoListResponse, error) {
	videos, err := s.videoRepo.GetAll()
	if err != nil {
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to list videos", err)
	}
	return videosToResponse(videos), nil
}

// GetVideo 查询单个视频
func (s *AppLibraryService) GetVideo(ctx context.Context, id string) (*contracts.VideoResponse, error) {
	v, err := s.videoRepo.GetByID(id)
	if err != nil {
		return nil, videoLookupError(err)
	}
	resp := videoToResponse(v)
	return &resp, nil
}

// DeleteVideo 删除入库记录
// 追加deleted历史后移除视频行,该URL即可重新下载;
// removeFile为真时连媒体文件和封面一起删,文件删除失败只记日志
func (s *AppLibraryService) DeleteVideo(ctx context.Context, id string, removeFile bool) error {
	v, err := s.videoRepo.GetByID(id)
	if err != nil {
		return videoLookupError(err)
	}

	item := &entities.HistoryItem{
		SourceURL: v.SourceURL,
		Title:     v.Title,
		Uploader:  v.Uploader,
		Platform:  v.Platform,
		Status:    entities.HistoryStatusDeleted,
		VideoID:   &v.ID,
		FilePath:  v.FilePath,
		FileSize:  v.FileSize,
	}
	if err := s.historyRepo.Append(item); err != nil {
		logger.Error("failed to append deletion history", "video_id", id, "error", err)
	}

	if err := s.videoRepo.Delete(id); err != nil {
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to delete video", err)
	}
	if removeFile {
		removeFiles(v.FilePath, v.ThumbnailPath)
	}
	logger.Info("video deleted", "video_id", id, "title", v.Title, "file_removed", removeFile)
	return nil
}

// ListCollections 列出全部合集
func (s *AppLibraryService) ListCollections(ctx context.Context) (*contracts.CollectionListResponse, error) {
	cols, err := s.collectionRepo.GetAll()
	if err != nil {
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to list collections", err)
	}
	resp := &contracts.CollectionListResponse{
		Collections: make([]contracts.CollectionResponse, 0, len(cols)),
		TotalCount:  len(cols),
	}
	for _, c := range cols {
		resp.Collections = append(resp.Collections, contracts.CollectionResponse{
			ID:         c.ID,
			Name:       c.Name,
			VideoCount: c.VideoCount,
			CreatedAt:  c.CreatedAt,
			UpdatedAt:  c.UpdatedAt,
		})
	}
	return resp, nil
}

// GetCollectionVideos 按加入顺序列出合集内视频
func (s *AppLibraryService) GetCollectionVideos(ctx context.Context, id string) (*contracts.VideoListResponse, error) {
	if _, err := s.collectionRepo.GetByID(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewServiceError(apperrors.ErrorCodeNotFound, "collection not found")
		}
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to load collection", err)
	}
	videos, err := s.collectionRepo.ListVideos(id)
	if err != nil {
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to list collection videos", err)
	}
	return videosToResponse(videos), nil
}

// ListHistory 分页查询下载历史,新记录在前
func (s *AppLibraryService) ListHistory(ctx context.Context, req contracts.HistoryListRequest) (*contracts.HistoryListResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultHistoryPageSize
	}
	if limit > maxHistoryPageSize {
		limit = maxHistoryPageSize
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	items, err := s.historyRepo.List(limit, offset)
	if err != nil {
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to list history", err)
	}
	resp := &contracts.HistoryListResponse{
		Items:  make([]contracts.HistoryItemResponse, 0, len(items)),
		Limit:  limit,
		Offset: offset,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, contracts.HistoryItemResponse{
			ID:        it.ID,
			TaskID:    it.TaskID,
			SourceURL: it.SourceURL,
			Title:     it.Title,
			Uploader:  it.Uploader,
			Platform:  it.Platform,
			Status:    it.Status,
			Error:     it.Error,
			VideoID:   it.VideoID,
			FilePath:  it.FilePath,
			FileSize:  it.FileSize,
			CreatedAt: it.CreatedAt,
		})
	}
	return resp, nil
}

// DeleteHistoryItem 删除单条历史记录
func (s *AppLibraryService) DeleteHistoryItem(ctx context.Context, id string) error {
	if err := s.historyRepo.Delete(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewServiceError(apperrors.ErrorCodeNotFound, "history item not found")
		}
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to delete history item", err)
	}
	return nil
}

// ClearHistory 清空历史账本,返回删除条数
func (s *AppLibraryService) ClearHistory(ctx context.Context) (int, error) {
	n, err := s.historyRepo.DeleteAll()
	if err != nil {
		return 0, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to clear history", err)
	}
	if n > 0 {
		logger.Info("history cleared", "count", n)
	}
	return int(n), nil
}

func videoLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewServiceError(apperrors.ErrorCodeNotFound, "video not found")
	}
	return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to load video", err)
}

func videoToResponse(v *entities.Video) contracts.VideoResponse {
	return contracts.VideoResponse{
		ID:            v.ID,
		SourceURL:     v.SourceURL,
		Title:         v.Title,
		Uploader:      v.Uploader,
		Platform:      v.Platform,
		Duration:      v.Duration,
		FileSize:      v.FileSize,
		FilePath:      v.FilePath,
		ThumbnailPath: v.ThumbnailPath,
		UploadDate:    v.UploadDate,
		DownloadedAt:  v.DownloadedAt,
	}
}

func videosToResponse(videos []*entities.Video) *contracts.VideoListResponse {
	resp := &contracts.VideoListResponse{
		Videos:     make([]contracts.VideoResponse, 0, len(videos)),
		TotalCount: len(videos),
	}
	for _, v := range videos {
		resp.Videos = append(resp.Videos, videoToResponse(v))
	}
	return resp
}
