package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/repository"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/ytdlp"
	"github.com/franklioxygen/MyTube-sub001/pkg/logger"
)

// URLFetcher 处理循环所需的枚举能力
type URLFetcher interface {
	Count(ctx context.Context, source Source) (int, error)
	FetchAll(ctx context.Context, source Source) ([]ytdlp.FlatEntry, error)
	FetchWindow(ctx context.Context, source Source, start, size int) ([]ytdlp.FlatEntry, error)
	WindowSize() int
}

// itemOutcome 单条视频的处理结果
type itemOutcome int

const (
	outcomeDownloaded itemOutcome = iota
	outcomeSkipped
	outcomeFailed
	outcomeHalted
)

// TaskProcessor 连续任务的执行循环
// 每条视频处理完把计数增量与游标放在同一条UPDATE持久化,
// 崩溃最多丢在途一条,已计入的进度不会回退;每轮先重读
// 任务状态,外部暂停/取消在条目边界生效
type TaskProcessor struct {
	taskRepo       *repository.TaskRepository
	videoRepo      *repository.VideoRepository
	historyRepo    *repository.HistoryRepository
	collectionRepo *repository.CollectionRepository
	downloadSvc    *VideoDownloadService
	fetcher        URLFetcher
	itemDelay      time.Duration
}

func NewTaskProcessor(taskRepo *repository.TaskRepository, videoRepo *repository.VideoRepository,
	historyRepo *repository.HistoryRepository, collectionRepo *repository.CollectionRepository,
	downloadSvc *VideoDownloadService, fetcher URLFetcher, itemDelay time.Duration) *TaskProcessor {
	return &TaskProcessor{
		taskRepo:       taskRepo,
		videoRepo:      videoRepo,
		historyRepo:    historyRepo,
		collectionRepo: collectionRepo,
		downloadSvc:    downloadSvc,
		fetcher:        fetcher,
		itemDelay:      itemDelay,
	}
}

// Process 从持久化游标起消费任务的枚举列表
// 直到列表耗尽、任务离开active或发生不可恢复错误才返回;
// cached为穷举源预取好的条目,窗口源传nil按需取窗;
// 单条失败计数后继续下一条,不中断任务
func (p *TaskProcessor) Process(ctx context.Context, task *entities.Task, source Source, cached []ytdlp.FlatEntry) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("task processor panicked", "task_id", task.ID, "panic", fmt.Sprintf("%v", r))
			if err := p.taskRepo.MarkCancelled(task.ID, fmt.Sprintf("processor panic: %v", r)); err != nil {
				logger.Error("failed to record panic on task", "task_id", task.ID, "error", err)
			}
		}
	}()

	total := task.TotalVideos
	if cached != nil && len(cached) < total {
		total = len(cached)
	}

	var window []ytdlp.FlatEntry
	windowStart := 0

	i := task.CurrentVideoIndex
	for ; i < total; i++ {
		status, err := p.taskRepo.GetStatus(task.ID)
		if err != nil {
			logger.Error("failed to re-read task status", "task_id", task.ID, "error", err)
			return
		}
		if status != entities.TaskStatusActive {
			logger.Info("task left active state, stopping", "task_id", task.ID, "status", string(status))
			return
		}

		entry, ok := p.resolveEntry(ctx, source, cached, &window, &windowStart, i)
		if !ok {
			// 枚举提前终止视为列表到头,按实际拿到的量收尾
			total = i
			break
		}

		outcome := p.processEntry(ctx, task, entry)
		if outcome == outcomeHalted {
			// 取消或进程关停,在途条目不计数,游标停在原地
			return
		}

		var dd, sd, fd int
		switch outcome {
		case outcomeDownloaded:
			dd = 1
		case outcomeSkipped:
			sd = 1
		case outcomeFailed:
			fd = 1
		}
		advanced, err := p.taskRepo.RecordProgress(task.ID, i+1, dd, sd, fd)
		if err != nil {
			// 进度落不了盘就不能继续推进,否则重启后会重复处理
			logger.Error("failed to persist task progress", "task_id", task.ID, "error", err)
			return
		}
		if !advanced {
			// 任务在本条处理期间进入终态,在途结果作废,游标不动
			logger.Info("task finalized mid-item, cursor frozen", "task_id", task.ID)
			return
		}

		// 去重跳过不碰网络,无需限速间隔
		if outcome != outcomeSkipped && i+1 < total {
			select {
			case <-time.After(p.itemDelay):
			case <-ctx.Done():
				return
			}
		}
	}

	if total < task.TotalVideos {
		if err := p.taskRepo.UpdateTotalVideos(task.ID, total); err != nil {
			logger.Error("failed to shrink task total", "task_id", task.ID, "error", err)
		}
	}
	// 列表耗尽且仍为active时收尾,与取消竞争时取消优先
	completed, err := p.taskRepo.MarkCompleted(task.ID)
	if err != nil {
		logger.Error("failed to mark task completed", "task_id", task.ID, "error", err)
		return
	}
	if completed {
		logger.Info("task drained", "task_id", task.ID, "total", total)
	}
}

// resolveEntry 取第i条(0基)条目
// 缓存列表直接索引;窗口源越界时拉取以i开头的下一窗,
// 拉取失败或窗口为空表示列表到头
func (p *TaskProcessor) resolveEntry(ctx context.Context, source Source, cached []ytdlp.FlatEntry,
	window *[]ytdlp.FlatEntry, windowStart *int, i int) (ytdlp.FlatEntry, bool) {
	if cached != nil {
		if i >= len(cached) {
			return ytdlp.FlatEntry{}, false
		}
		return cached[i], true
	}

	if i < *windowStart || i >= *windowStart+len(*window) {
		entries, err := p.fetcher.FetchWindow(ctx, source, i, p.fetcher.WindowSize())
		if err != nil {
			logger.Warn("window fetch failed, treating as end of list",
				"url", source.URL, "index", i, "error", err)
			return ytdlp.FlatEntry{}, false
		}
		if len(entries) == 0 {
			return ytdlp.FlatEntry{}, false
		}
		*window = entries
		*windowStart = i
	}
	return (*window)[i-*windowStart], true
}

// processEntry 处理单条:查重、登记、下载、挂合集
// success/failed历史由下载服务追加,skipped历史在这里追加
func (p *TaskProcessor) processEntry(ctx context.Context, task *entities.Task, entry ytdlp.FlatEntry) itemOutcome {
	exists, err := p.videoRepo.ExistsBySourceURL(entry.URL)
	if err != nil {
		logger.Error("dedup check failed", "url", entry.URL, "error", err)
		return outcomeFailed
	}
	if exists {
		p.appendSkipped(task, entry, "already in library")
		return outcomeSkipped
	}

	dl, err := p.downloadSvc.RegisterActive(entry.URL, entry.Title, &task.ID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// 另一执行域正在下载同一URL,不重复下载
			p.appendSkipped(task, entry, "already downloading")
			return outcomeSkipped
		}
		logger.Error("failed to register download", "url", entry.URL, "error", err)
		return outcomeFailed
	}

	video, err := p.downloadSvc.Run(ctx, dl)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return outcomeHalted
		}
		if errors.Is(err, ErrVideoExists) {
			return outcomeSkipped
		}
		return outcomeFailed
	}

	if task.CollectionID != nil {
		// 挂合集失败不影响下载结果
		if err := p.collectionRepo.AttachVideo(*task.CollectionID, video.ID); err != nil {
			logger.Warn("failed to attach video to collection",
				"collection_id", *task.CollectionID, "video_id", video.ID, "error", err)
		}
	}
	return outcomeDownloaded
}

func (p *TaskProcessor) appendSkipped(task *entities.Task, entry ytdlp.FlatEntry, reason string) {
	title := entry.Title
	if title == "" {
		title = entry.URL
	}
	item := &entities.HistoryItem{
		TaskID:    &task.ID,
		SourceURL: entry.URL,
		Title:     title,
		Uploader:  entry.Uploader,
		Platform:  task.Platform,
		Status:    entities.HistoryStatusSkipped,
		Error:     reason,
	}
	if err := p.historyRepo.Append(item); err != nil {
		logger.Error("failed to append history", "url", entry.URL, "error", err)
	}
}
