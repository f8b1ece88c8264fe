package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/config"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/repository"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/ytdlp"
	"github.com/franklioxygen/MyTube-sub001/pkg/logger"
)

// 崩溃遗留的临时分片超过该时长视为孤儿,清扫时删除
const staleTempFileAge = 24 * time.Hour

// MaintenanceService 定期清扫服务
// 按cron表达式清理终态任务、过期历史、过期排队登记和孤儿临时文件
type MaintenanceService struct {
	cfg          *config.Config
	cron         *cron.Cron
	taskRepo     *repository.TaskRepository
	historyRepo  *repository.HistoryRepository
	downloadRepo *repository.DownloadRepository

	mu      sync.Mutex
	running bool
}

// NewMaintenanceService 创建清扫服务
func NewMaintenanceService(
	cfg *config.Config,
	taskRepo *repository.TaskRepository,
	historyRepo *repository.HistoryRepository,
	downloadRepo *repository.DownloadRepository,
) *MaintenanceService {
	return &MaintenanceService{
		cfg:          cfg,
		cron:         cron.New(), // 标准5字段格式(分 时 日 月 周)
		taskRepo:     taskRepo,
		historyRepo:  historyRepo,
		downloadRepo: downloadRepo,
	}
}

// Start 启动定期清扫,配置关闭时为无操作
func (s *MaintenanceService) Start() error {
	if !s.cfg.Maintenance.Enabled {
		logger.Info("maintenance sweeps disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("maintenance service already running")
	}

	if _, err := s.cron.AddFunc(s.cfg.Maintenance.ClearFinishedCron, s.Sweep); err != nil {
		return fmt.Errorf("invalid maintenance cron expression: %w", err)
	}

	s.cron.Start()
	s.running = true
	logger.Info("maintenance service started", "cron", s.cfg.Maintenance.ClearFinishedCron)
	return nil
}

// Stop 停止定期清扫
func (s *MaintenanceService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.cron.Stop()
		s.running = false
		logger.Info("maintenance service stopped")
	}
}

// Sweep 执行一轮清扫
// 各步骤相互独立,单步失败只记日志不中断后续步骤
func (s *MaintenanceService) Sweep() {
	logger.Info("maintenance sweep started")

	if n, err := s.taskRepo.DeleteFinished(); err != nil {
		logger.Error("sweep failed to clear finished tasks", "error", err)
	} else if n > 0 {
		logger.Info("sweep cleared finished tasks", "count", n)
	}

	if days := s.cfg.Maintenance.HistoryRetentionDays; days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		if n, err := s.historyRepo.DeleteBefore(cutoff); err != nil {
			logger.Error("sweep failed to trim history", "error", err)
		} else if n > 0 {
			logger.Info("sweep trimmed history", "count", n, "retention_days", days)
		}
	}

	if days := s.cfg.Maintenance.QueuedRetentionDays; days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		if n, err := s.downloadRepo.DeleteQueuedBefore(cutoff); err != nil {
			logger.Error("sweep failed to drop stale queued downloads", "error", err)
		} else if n > 0 {
			logger.Info("sweep dropped stale queued downloads", "count", n, "retention_days", days)
		}
	}

	s.sweepTempFiles()
}

// sweepTempFiles 删除媒体目录里超龄的下载临时文件和工作目录
// 正常结束的下载当场就清了,这里兜底崩溃遗留的孤儿
func (s *MaintenanceService) sweepTempFiles() {
	dir := s.cfg.Storage.MediaDir
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("sweep could not read media directory", "dir", dir, "error", err)
		}
		return
	}

	cutoff := time.Now().Add(-staleTempFileAge)
	removed := 0
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() && !ytdlp.IsTempWorkDir(name) {
			continue
		}
		if !de.IsDir() && !isTempDownloadFile(name) {
			continue
		}
		info, err := de.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, name)
		if de.IsDir() {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		if err != nil {
			logger.Warn("sweep failed to remove temp file", "path", path, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Info("sweep removed orphaned temp files", "count", removed)
	}
}
