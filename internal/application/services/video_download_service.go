package services

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/domain/valueobjects"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/config"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/repository"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/ytdlp"
	"github.com/franklioxygen/MyTube-sub001/pkg/httpclient"
	"github.com/franklioxygen/MyTube-sub001/pkg/logger"
	"github.com/franklioxygen/MyTube-sub001/pkg/utils"
	"github.com/google/uuid"
)

// ErrVideoExists 下载完成落库时发现同URL视频已被其他执行域入库
var ErrVideoExists = errors.New("video already in library")

const thumbnailTimeout = 30 * time.Second

// MediaDownloader 单视频下载所需的平台能力
// 一个实现背后按URL自动分发平台,取消按下载ID杀子进程
type MediaDownloader interface {
	FetchMetadata(ctx context.Context, url string) (*ytdlp.Metadata, error)
	FetchMedia(ctx context.Context, id string, req ytdlp.MediaRequest, onProgress func(ytdlp.Progress)) (*ytdlp.MediaResult, error)
	Cancel(id string) bool
}

// VideoDownloadService 单条视频的下载流水线
// 登记→元数据→媒体→封面→入库→出登记,手动队列与连续任务共用;
// success与failed历史在此追加,取消只清登记不留历史
type VideoDownloadService struct {
	cfg          *config.Config
	downloader   MediaDownloader
	videoRepo    *repository.VideoRepository
	downloadRepo *repository.DownloadRepository
	historyRepo  *repository.HistoryRepository
}

func NewVideoDownloadService(cfg *config.Config, downloader MediaDownloader,
	videoRepo *repository.VideoRepository, downloadRepo *repository.DownloadRepository,
	historyRepo *repository.HistoryRepository) *VideoDownloadService {
	return &VideoDownloadService{
		cfg:          cfg,
		downloader:   downloader,
		videoRepo:    videoRepo,
		downloadRepo: downloadRepo,
		historyRepo:  historyRepo,
	}
}

// RegisterQueued 为手动下载登记排队行,先占住用户可见的队列位置
// 排队行只由手动路径产生,kind取video或audio
func (s *VideoDownloadService) RegisterQueued(url, title string, kind entities.DownloadKind) (*entities.Download, error) {
	return s.register(url, title, nil, kind, entities.DownloadStateQueued)
}

// RegisterActive 为即将开始的下载登记active行
// 同URL已有active登记时返回ErrDuplicate,由部分唯一索引裁决并发
func (s *VideoDownloadService) RegisterActive(url, title string, taskID *string) (*entities.Download, error) {
	kind := entities.DownloadKindVideo
	if taskID != nil {
		kind = entities.DownloadKindTask
	}
	return s.register(url, title, taskID, kind, entities.DownloadStateActive)
}

func (s *VideoDownloadService) register(url, title string, taskID *string,
	kind entities.DownloadKind, state entities.DownloadState) (*entities.Download, error) {
	d := &entities.Download{
		ID:        uuid.New().String(),
		SourceURL: url,
		Title:     title,
		Platform:  valueobjects.DetectPlatform(url).String(),
		Kind:      kind,
		State:     state,
		TaskID:    taskID,
	}
	if err := s.downloadRepo.Register(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Activate 排队行转active,同URL冲突时返回ErrDuplicate
func (s *VideoDownloadService) Activate(dl *entities.Download) error {
	if err := s.downloadRepo.MarkActive(dl.ID); err != nil {
		return err
	}
	dl.State = entities.DownloadStateActive
	return nil
}

// Unregister 下载结束后移除登记,失败只记日志
func (s *VideoDownloadService) Unregister(id string) {
	if err := s.downloadRepo.Remove(id); err != nil {
		logger.Error("failed to remove download registration", "id", id, "error", err)
	}
}

// CancelRun 触发进行中下载的取消钩子,杀掉对应子进程
func (s *VideoDownloadService) CancelRun(id string) bool {
	return s.downloader.Cancel(id)
}

// Run 执行一条已登记为active的下载直至终态
// 成功返回入库视频并追加success历史;失败追加failed历史并返回原因;
// 取消(调用方ctx或取消钩子)只清登记,错误链含context.Canceled;
// 他域抢先入库时丢弃本次产物,记skipped历史,返回ErrVideoExists
func (s *VideoDownloadService) Run(ctx context.Context, dl *entities.Download) (*entities.Video, error) {
	meta, err := s.downloader.FetchMetadata(ctx, dl.SourceURL)
	if err != nil {
		return nil, s.finishRun(ctx, dl, nil, err)
	}

	title := meta.Title
	if title == "" {
		title = dl.Title
	}
	uploader := meta.BestUploader()
	if err := s.downloadRepo.UpdateMetadata(dl.ID, title, uploader); err != nil {
		logger.Warn("failed to update download metadata", "id", dl.ID, "error", err)
	}

	res, err := s.downloader.FetchMedia(ctx, dl.ID, ytdlp.MediaRequest{
		URL:          dl.SourceURL,
		OutputDir:    s.cfg.Storage.MediaDir,
		FilenameBase: utils.MediaFilename(title, uploader),
		AudioOnly:    dl.Kind == entities.DownloadKindAudio,
	}, func(p ytdlp.Progress) {
		if err := s.downloadRepo.UpdateProgress(dl.ID, p.Percent, p.SpeedBPS, p.TotalBytes, p.DownloadedBytes); err != nil {
			logger.Debug("failed to update progress", "id", dl.ID, "error", err)
		}
	})
	if err != nil {
		return nil, s.finishRun(ctx, dl, meta, err)
	}

	thumbPath := s.fetchThumbnail(ctx, meta.ThumbnailURL, res.FilePath)

	video := &entities.Video{
		ID:            uuid.New().String(),
		SourceURL:     dl.SourceURL,
		Title:         title,
		Uploader:      uploader,
		Platform:      dl.Platform,
		Duration:      int64(meta.Duration),
		FileSize:      res.FileSize,
		FilePath:      res.FilePath,
		ThumbnailPath: thumbPath,
		UploadDate:    meta.UploadDate,
		DownloadedAt:  time.Now(),
	}
	if err := s.videoRepo.Create(video); err != nil {
		s.Unregister(dl.ID)
		removeFiles(res.FilePath, thumbPath)
		if errors.Is(err, repository.ErrDuplicate) {
			s.appendHistory(dl, title, uploader, entities.HistoryStatusSkipped, "already in library", nil)
			return nil, fmt.Errorf("%s: %w", dl.SourceURL, ErrVideoExists)
		}
		s.appendHistory(dl, title, uploader, entities.HistoryStatusFailed, err.Error(), nil)
		return nil, fmt.Errorf("failed to register video: %w", err)
	}

	s.Unregister(dl.ID)
	s.appendHistory(dl, title, uploader, entities.HistoryStatusSuccess, "", video)
	logger.Info("video downloaded", "title", title, "uploader", uploader,
		"file", video.FilePath, "size", video.FileSize)
	return video, nil
}

// finishRun 失败与取消的统一收尾,返回传给调用方的错误
func (s *VideoDownloadService) finishRun(ctx context.Context, dl *entities.Download, meta *ytdlp.Metadata, cause error) error {
	s.Unregister(dl.ID)

	if errors.Is(cause, context.Canceled) || ctx.Err() != nil {
		logger.Info("download cancelled", "id", dl.ID, "url", dl.SourceURL)
		if errors.Is(cause, context.Canceled) {
			return cause
		}
		return fmt.Errorf("download cancelled: %w", context.Canceled)
	}

	title, uploader := dl.Title, dl.Uploader
	if meta != nil {
		if meta.Title != "" {
			title = meta.Title
		}
		uploader = meta.BestUploader()
	}
	s.appendHistory(dl, title, uploader, entities.HistoryStatusFailed, cause.Error(), nil)
	logger.Error("download failed", "url", dl.SourceURL, "error", cause)
	return cause
}

// fetchThumbnail 封面图尽力而为,失败返回空路径不影响下载结果
// 封面与媒体文件同名,扩展名取自封面URL
func (s *VideoDownloadService) fetchThumbnail(ctx context.Context, thumbnailURL, mediaPath string) string {
	if thumbnailURL == "" {
		return ""
	}
	ext := ".jpg"
	if u, err := neturl.Parse(thumbnailURL); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}
	thumbPath := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + ext

	opts := httpclient.DefaultOptions().WithContext(ctx).WithTimeout(thumbnailTimeout)
	if err := httpclient.DownloadToFile(thumbnailURL, thumbPath, opts); err != nil {
		logger.Warn("failed to fetch thumbnail", "url", thumbnailURL, "error", err)
		return ""
	}
	return thumbPath
}

// appendHistory 追加终态历史,成功时带上入库视频的回溯字段
func (s *VideoDownloadService) appendHistory(dl *entities.Download, title, uploader string,
	status entities.HistoryStatus, errMsg string, video *entities.Video) {
	if title == "" {
		title = dl.SourceURL
	}
	item := &entities.HistoryItem{
		TaskID:    dl.TaskID,
		SourceURL: dl.SourceURL,
		Title:     title,
		Uploader:  uploader,
		Platform:  dl.Platform,
		Status:    status,
		Error:     errMsg,
	}
	if video != nil {
		item.VideoID = &video.ID
		item.FilePath = video.FilePath
		item.FileSize = video.FileSize
	}
	if err := s.historyRepo.Append(item); err != nil {
		logger.Error("failed to append history", "url", dl.SourceURL, "error", err)
	}
}

// removeFiles 清理入库失败后的落盘产物
func removeFiles(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove file", "path", p, "error", err)
		}
	}
}
