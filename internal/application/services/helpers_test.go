package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/application/contracts"
	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/config"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/repository"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/storage"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/ytdlp"
)

// fakeDownloader 内存版MediaDownloader
// 行为对齐真实客户端:FetchMedia注册按下载ID取消的钩子,
// 钩子触发或ctx取消都返回context.Canceled,成功时往目录写一个小文件
type fakeDownloader struct {
	mu          sync.Mutex
	metaErr     map[string]error
	media       map[string]error
	panics      map[string]bool
	blocked     map[string]chan struct{}
	started     map[string]chan struct{}
	metaBlocked map[string]chan struct{}
	metaStarted map[string]chan struct{}
	cancels     map[string]context.CancelFunc
	fetched     []string
}

func newFakeDownloader() *fakeDownloader {
	return &fakeDownloader{
		metaErr:     make(map[string]error),
		media:       make(map[string]error),
		panics:      make(map[string]bool),
		blocked:     make(map[string]chan struct{}),
		started:     make(map[string]chan struct{}),
		metaBlocked: make(map[string]chan struct{}),
		metaStarted: make(map[string]chan struct{}),
		cancels:     make(map[string]context.CancelFunc),
	}
}

func (f *fakeDownloader) failMetadata(url string, err error) {
	f.mu.Lock()
	f.metaErr[url] = err
	f.mu.Unlock()
}

func (f *fakeDownloader) failMedia(url string, err error) {
	f.mu.Lock()
	f.media[url] = err
	f.mu.Unlock()
}

func (f *fakeDownloader) panicOnMetadata(url string) {
	f.mu.Lock()
	f.panics[url] = true
	f.mu.Unlock()
}

// blockURL 让该URL的FetchMedia挂起,直到返回的通道被关闭
func (f *fakeDownloader) blockURL(url string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.blocked[url] = ch
	f.mu.Unlock()
	return ch
}

// startedCh 返回该URL的FetchMedia真正开始时关闭的通道
func (f *fakeDownloader) startedCh(url string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.started[url] = ch
	f.mu.Unlock()
	return ch
}

// blockMetadata 让该URL的FetchMetadata挂起,直到返回的通道被关闭
// 元数据阶段没有登记取消钩子,对齐真实客户端的行为
func (f *fakeDownloader) blockMetadata(url string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.metaBlocked[url] = ch
	f.mu.Unlock()
	return ch
}

// metadataStartedCh 返回该URL的FetchMetadata开始时关闭的通道
func (f *fakeDownloader) metadataStartedCh(url string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.metaStarted[url] = ch
	f.mu.Unlock()
	return ch
}

func (f *fakeDownloader) fetchedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.fetched))
	copy(out, f.fetched)
	return out
}

func (f *fakeDownloader) FetchMetadata(ctx context.Context, url string) (*ytdlp.Metadata, error) {
	f.mu.Lock()
	err := f.metaErr[url]
	shouldPanic := f.panics[url]
	block := f.metaBlocked[url]
	if ch, ok := f.metaStarted[url]; ok {
		close(ch)
		delete(f.metaStarted, url)
	}
	f.mu.Unlock()
	if shouldPanic {
		panic("metadata fetch exploded: " + url)
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &ytdlp.Metadata{
		Title:    "title " + url,
		Uploader: "uploader",
		Duration: 60,
	}, nil
}

func (f *fakeDownloader) FetchMedia(ctx context.Context, id string, req ytdlp.MediaRequest, onProgress func(ytdlp.Progress)) (*ytdlp.MediaResult, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	f.mu.Lock()
	f.fetched = append(f.fetched, req.URL)
	f.cancels[id] = cancel
	mediaErr := f.media[req.URL]
	block := f.blocked[req.URL]
	if ch, ok := f.started[req.URL]; ok {
		close(ch)
		delete(f.started, req.URL)
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		delete(f.cancels, id)
		f.mu.Unlock()
	}()

	if block != nil {
		select {
		case <-block:
		case <-runCtx.Done():
			return nil, runCtx.Err()
		}
	}
	if err := runCtx.Err(); err != nil {
		return nil, err
	}
	if mediaErr != nil {
		return nil, mediaErr
	}

	if onProgress != nil {
		onProgress(ytdlp.Progress{Percent: 100, TotalBytes: 5, DownloadedBytes: 5})
	}
	path := filepath.Join(req.OutputDir, req.FilenameBase+".mp4")
	if err := os.WriteFile(path, []byte("media"), 0644); err != nil {
		return nil, err
	}
	return &ytdlp.MediaResult{FilePath: path, FileSize: 5}, nil
}

func (f *fakeDownloader) Cancel(id string) bool {
	f.mu.Lock()
	cancel, ok := f.cancels[id]
	f.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// fakeFetcher 内存版URLFetcher,窗口按条目切片模拟
type fakeFetcher struct {
	mu         sync.Mutex
	entries    []ytdlp.FlatEntry
	count      int
	countErr   error
	fetchErr   error
	windowSize int
	fetchCalls int
}

func newFakeFetcher(entries []ytdlp.FlatEntry) *fakeFetcher {
	return &fakeFetcher{entries: entries, count: len(entries), windowSize: 3}
}

func (f *fakeFetcher) Count(ctx context.Context, source Source) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, f.countErr
}

func (f *fakeFetcher) FetchAll(ctx context.Context, source Source) ([]ytdlp.FlatEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]ytdlp.FlatEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeFetcher) FetchWindow(ctx context.Context, source Source, start, size int) ([]ytdlp.FlatEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if start >= len(f.entries) {
		return nil, nil
	}
	end := start + size
	if end > len(f.entries) {
		end = len(f.entries)
	}
	out := make([]ytdlp.FlatEntry, end-start)
	copy(out, f.entries[start:end])
	return out, nil
}

func (f *fakeFetcher) WindowSize() int {
	return f.windowSize
}

// fakeNotifier 记录收到的通知请求
type fakeNotifier struct {
	mu             sync.Mutex
	downloadDone   []contracts.DownloadNotificationRequest
	downloadFailed []contracts.DownloadNotificationRequest
	taskDone       []contracts.TaskNotificationRequest
	taskCancelled  []contracts.TaskNotificationRequest
}

func (f *fakeNotifier) NotifyDownloadComplete(ctx context.Context, req contracts.DownloadNotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloadDone = append(f.downloadDone, req)
	return nil
}

func (f *fakeNotifier) NotifyDownloadFailed(ctx context.Context, req contracts.DownloadNotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloadFailed = append(f.downloadFailed, req)
	return nil
}

func (f *fakeNotifier) NotifyTaskComplete(ctx context.Context, req contracts.TaskNotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taskDone = append(f.taskDone, req)
	return nil
}

func (f *fakeNotifier) NotifyTaskCancelled(ctx context.Context, req contracts.TaskNotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taskCancelled = append(f.taskCancelled, req)
	return nil
}

func (f *fakeNotifier) taskDoneCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.taskDone)
}

func (f *fakeNotifier) taskCancelledCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.taskCancelled)
}

func (f *fakeNotifier) downloadDoneCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.downloadDone)
}

func (f *fakeNotifier) downloadFailedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.downloadFailed)
}

// testEnv 服务层测试环境:真实SQLite仓储加内存下载器
type testEnv struct {
	cfg          *config.Config
	db           *storage.DB
	taskRepo     *repository.TaskRepository
	downloadRepo *repository.DownloadRepository
	videoRepo    *repository.VideoRepository
	colRepo      *repository.CollectionRepository
	subRepo      *repository.SubscriptionRepository
	historyRepo  *repository.HistoryRepository

	downloader *fakeDownloader
	fetcher    *fakeFetcher
	notifier   *fakeNotifier

	videoSvc    *VideoDownloadService
	processor   *TaskProcessor
	manager     *DownloadManager
	cleanup     *TaskCleanup
	taskSvc     *AppTaskService
	downloadSvc *AppDownloadService
	librarySvc  *AppLibraryService
	subSvc      *AppSubscriptionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Storage:  config.StorageConfig{DataDir: t.TempDir(), MediaDir: t.TempDir()},
		Download: config.DownloadConfig{Concurrency: 2, QueueSize: 0},
		Task:     config.TaskConfig{ItemDelaySeconds: 0, WindowSize: 3},
	}
	db, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		cfg:          cfg,
		db:           db,
		taskRepo:     repository.NewTaskRepository(db),
		downloadRepo: repository.NewDownloadRepository(db),
		videoRepo:    repository.NewVideoRepository(db),
		colRepo:      repository.NewCollectionRepository(db),
		subRepo:      repository.NewSubscriptionRepository(db),
		historyRepo:  repository.NewHistoryRepository(db),
		downloader:   newFakeDownloader(),
		fetcher:      newFakeFetcher(nil),
		notifier:     &fakeNotifier{},
	}

	env.videoSvc = NewVideoDownloadService(cfg, env.downloader, env.videoRepo, env.downloadRepo, env.historyRepo)
	env.processor = NewTaskProcessor(env.taskRepo, env.videoRepo, env.historyRepo, env.colRepo,
		env.videoSvc, env.fetcher, 0)
	env.manager = NewDownloadManager(cfg.Download.Concurrency, cfg.Download.QueueSize)
	t.Cleanup(env.manager.Shutdown)
	env.cleanup = NewTaskCleanup(cfg.Storage.MediaDir, env.downloadRepo)
	env.taskSvc = NewAppTaskService(env.taskRepo, env.subRepo, env.colRepo, env.downloadRepo,
		env.videoSvc, env.processor, env.fetcher, env.manager, env.cleanup, env.notifier)
	t.Cleanup(env.taskSvc.Stop)
	env.downloadSvc = NewAppDownloadService(env.downloadRepo, env.videoRepo, env.historyRepo,
		env.videoSvc, env.manager, env.notifier)
	env.librarySvc = NewAppLibraryService(env.videoRepo, env.colRepo, env.historyRepo)
	env.subSvc = NewAppSubscriptionService(env.subRepo, env.taskRepo, env.taskSvc)
	return env
}

// flatEntries 生成n条顺序编号的列表条目
func flatEntries(n int) []ytdlp.FlatEntry {
	entries := make([]ytdlp.FlatEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, ytdlp.FlatEntry{
			ID:       string(rune('a' + i)),
			URL:      testVideoURL(i),
			Title:    "video " + string(rune('A'+i)),
			Uploader: "channel",
		})
	}
	return entries
}

func testVideoURL(i int) string {
	return "https://youtube.com/watch?v=vid" + string(rune('a'+i))
}

// waitFor 轮询直到条件满足,超时判失败
func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// awaitClosed 等通道关闭,超时判失败
func awaitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

// createTask 落库一个任务,未填字段给默认值
func createTask(t *testing.T, env *testEnv, task *entities.Task) *entities.Task {
	t.Helper()
	if task.SourceURL == "" {
		task.SourceURL = "https://youtube.com/@testchannel"
	}
	if task.Platform == "" {
		task.Platform = "youtube"
	}
	if task.Status == "" {
		task.Status = entities.TaskStatusActive
	}
	if err := env.taskRepo.Create(task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func mustGetTask(t *testing.T, env *testEnv, id string) *entities.Task {
	t.Helper()
	task, err := env.taskRepo.GetByID(id)
	if err != nil {
		t.Fatalf("get task %s: %v", id, err)
	}
	return task
}

func historyByStatus(t *testing.T, env *testEnv, status entities.HistoryStatus) []*entities.HistoryItem {
	t.Helper()
	items, err := env.historyRepo.List(100, 0)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	var out []*entities.HistoryItem
	for _, it := range items {
		if it.Status == status {
			out = append(out, it)
		}
	}
	return out
}
