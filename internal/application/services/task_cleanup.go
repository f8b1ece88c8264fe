package services

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/repository"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/ytdlp"
	"github.com/franklioxygen/MyTube-sub001/pkg/logger"
	"github.com/franklioxygen/MyTube-sub001/pkg/utils"
)

// TaskCleanup 任务取消后的下载残留清理
// 扫描媒体目录里当前条目对应的临时分片,全部尽力而为,
// 任何一步失败只记日志,绝不把错误抛回取消流程
type TaskCleanup struct {
	mediaDir     string
	downloadRepo *repository.DownloadRepository
}

// NewTaskCleanup 创建清理器
func NewTaskCleanup(mediaDir string, downloadRepo *repository.DownloadRepository) *TaskCleanup {
	return &TaskCleanup{
		mediaDir:     mediaDir,
		downloadRepo: downloadRepo,
	}
}

// CleanupCurrentVideoTempFiles 清理取消瞬间正在下载的视频的下载残留
// inflight为取消时游标指向的条目,穷举型任务才有;
// downloadIDs为中断时捕获的登记行ID,对应的工作目录一并清除;
// 拿不到条目时退回下载登记表,按登记行的元数据推导文件名前缀
func (c *TaskCleanup) CleanupCurrentVideoTempFiles(task *entities.Task, inflight *ytdlp.FlatEntry, downloadIDs []string) {
	bases := make(map[string]struct{})
	dirPrefixes := make(map[string]struct{})

	if inflight != nil {
		bases[utils.MediaFilename(inflight.Title, inflight.Uploader)] = struct{}{}
	}
	for _, id := range downloadIDs {
		dirPrefixes[ytdlp.TempWorkDirName(id)] = struct{}{}
	}

	rows, err := c.downloadRepo.GetByTaskID(task.ID)
	if err != nil {
		logger.Warn("cleanup could not list task downloads", "task_id", task.ID, "error", err)
	} else {
		for _, row := range rows {
			dirPrefixes[ytdlp.TempWorkDirName(row.ID)] = struct{}{}
			if row.Title == "" {
				continue
			}
			bases[utils.MediaFilename(row.Title, row.Uploader)] = struct{}{}
		}
	}

	if len(bases) == 0 && len(dirPrefixes) == 0 {
		return
	}
	removed := c.removeTempFiles(bases, dirPrefixes)
	if removed > 0 {
		logger.Info("removed partial download files", "task_id", task.ID, "count", removed)
	}
}

// removeTempFiles 删除媒体目录下匹配任一前缀的yt-dlp临时文件和工作目录
// 目录扫描代替glob,标题里的通配符字符不会造成误匹配
func (c *TaskCleanup) removeTempFiles(bases, dirPrefixes map[string]struct{}) int {
	dirEntries, err := os.ReadDir(c.mediaDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("cleanup could not read media directory", "dir", c.mediaDir, "error", err)
		}
		return 0
	}

	removed := 0
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() {
			if !ytdlp.IsTempWorkDir(name) {
				continue
			}
			for prefix := range dirPrefixes {
				if !strings.HasPrefix(name, prefix) {
					continue
				}
				path := filepath.Join(c.mediaDir, name)
				if err := os.RemoveAll(path); err != nil {
					logger.Warn("failed to remove download work dir", "path", path, "error", err)
				} else {
					removed++
				}
				break
			}
			continue
		}
		if !isTempDownloadFile(name) {
			continue
		}
		for base := range bases {
			if !strings.HasPrefix(name, base) {
				continue
			}
			path := filepath.Join(c.mediaDir, name)
			if err := os.Remove(path); err != nil {
				if !os.IsNotExist(err) {
					logger.Warn("failed to remove partial file", "path", path, "error", err)
				}
			} else {
				removed++
			}
			break
		}
	}
	return removed
}

// isTempDownloadFile 识别yt-dlp的中间产物
// 完成的媒体文件由yt-dlp原子重命名落盘,不会出现在这里
func isTempDownloadFile(name string) bool {
	return strings.HasSuffix(name, ".part") ||
		strings.HasSuffix(name, ".ytdl") ||
		strings.HasSuffix(name, ".temp") ||
		strings.Contains(name, ".part-Frag")
}
