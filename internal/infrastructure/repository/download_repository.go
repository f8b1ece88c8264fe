package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/storage"
	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// ErrDuplicate 唯一约束冲突,同一URL已有active登记或视频已入库
var ErrDuplicate = errors.New("record already exists")

// ErrNotFound 目标记录不存在
var ErrNotFound = errors.New("not found")

// isUniqueViolation 判断是否为SQLite唯一约束冲突
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// DownloadRepository 下载登记仓储
// 登记表是当前下载状态的唯一事实来源,部分唯一索引保证
// 同一URL全局最多一条active登记,并发登记由约束冲突裁决
type DownloadRepository struct {
	db *sql.DB
}

func NewDownloadRepository(db *storage.DB) *DownloadRepository {
	return &DownloadRepository{db: db.Conn()}
}

const downloadColumns = `id, source_url, title, uploader, platform, kind, state, progress, speed, total_size, downloaded_size, task_id, created_at, updated_at`

// Register 登记一条下载
// 同一URL已有active登记时返回ErrDuplicate
func (r *DownloadRepository) Register(d *entities.Download) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Kind == "" {
		d.Kind = entities.DownloadKindVideo
	}
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	_, err := r.db.Exec(`INSERT INTO downloads (`+downloadColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.SourceURL, d.Title, d.Uploader, d.Platform, d.Kind, d.State,
		d.Progress, d.Speed, d.TotalSize, d.DownloadedSize,
		d.TaskID, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("download already active for %s: %w", d.SourceURL, ErrDuplicate)
		}
		return fmt.Errorf("failed to register download: %w", err)
	}
	return nil
}

// ExistsBySourceURL 判断URL是否已有登记,不区分状态
// 部分唯一索引只约束active行,排队去重靠此预检,漏网的重复
// 在排队行转active或视频入库时仍会被约束拦下
func (r *DownloadRepository) ExistsBySourceURL(sourceURL string) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM downloads WHERE source_url = ?`, sourceURL).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check download registry: %w", err)
	}
	return count > 0, nil
}

// GetByID 根据ID获取登记
func (r *DownloadRepository) GetByID(id string) (*entities.Download, error) {
	row := r.db.QueryRow(`SELECT `+downloadColumns+` FROM downloads WHERE id = ?`, id)
	d, err := scanDownload(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("download not found: %s: %w", id, ErrNotFound)
	}
	return d, err
}

// GetAll 获取全部登记,入队顺序排列
func (r *DownloadRepository) GetAll() ([]*entities.Download, error) {
	rows, err := r.db.Query(`SELECT ` + downloadColumns + ` FROM downloads ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDownloads(rows)
}

// GetByState 按状态获取登记,入队顺序排列
func (r *DownloadRepository) GetByState(state entities.DownloadState) ([]*entities.Download, error) {
	rows, err := r.db.Query(`SELECT `+downloadColumns+` FROM downloads WHERE state = ? ORDER BY created_at`, state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDownloads(rows)
}

// GetByTaskID 获取某个连续任务名下的登记
func (r *DownloadRepository) GetByTaskID(taskID string) ([]*entities.Download, error) {
	rows, err := r.db.Query(`SELECT `+downloadColumns+` FROM downloads WHERE task_id = ? ORDER BY created_at`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDownloads(rows)
}

// MarkActive 排队登记开始下载
func (r *DownloadRepository) MarkActive(id string) error {
	_, err := r.db.Exec(`UPDATE downloads SET state = ?, updated_at = ? WHERE id = ?`,
		entities.DownloadStateActive, time.Now(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("download already active: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to mark download active: %w", err)
	}
	return nil
}

// UpdateProgress 更新下载进度快照,速度与字节量未知时传0
func (r *DownloadRepository) UpdateProgress(id string, progress float64, speed, totalSize, downloadedSize int64) error {
	_, err := r.db.Exec(`UPDATE downloads SET progress = ?, speed = ?, total_size = ?,
		downloaded_size = ?, updated_at = ? WHERE id = ?`,
		progress, speed, totalSize, downloadedSize, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

// UpdateMetadata 元数据就绪后补写标题和上传者
func (r *DownloadRepository) UpdateMetadata(id, title, uploader string) error {
	_, err := r.db.Exec(`UPDATE downloads SET title = ?, uploader = ?, updated_at = ? WHERE id = ?`,
		title, uploader, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update download metadata: %w", err)
	}
	return nil
}

// Remove 下载结束后移除登记
func (r *DownloadRepository) Remove(id string) error {
	_, err := r.db.Exec(`DELETE FROM downloads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to remove download: %w", err)
	}
	return nil
}

// PurgeActive 删除所有active登记,启动恢复时调用
// 进程被杀后遗留的active行已无对应下载进程,必须清掉,
// 否则部分唯一索引会挡住恢复后的重新下载
func (r *DownloadRepository) PurgeActive() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM downloads WHERE state = ?`, entities.DownloadStateActive)
	if err != nil {
		return 0, fmt.Errorf("failed to purge active downloads: %w", err)
	}
	return res.RowsAffected()
}

// DeleteQueuedBefore 清理早于截止时间的排队登记
func (r *DownloadRepository) DeleteQueuedBefore(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM downloads WHERE state = ? AND created_at < ?`,
		entities.DownloadStateQueued, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale queued downloads: %w", err)
	}
	return res.RowsAffected()
}

func scanDownload(row rowScanner) (*entities.Download, error) {
	var d entities.Download
	var taskID sql.NullString

	err := row.Scan(&d.ID, &d.SourceURL, &d.Title, &d.Uploader, &d.Platform,
		&d.Kind, &d.State, &d.Progress, &d.Speed, &d.TotalSize, &d.DownloadedSize,
		&taskID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if taskID.Valid {
		d.TaskID = &taskID.String
	}
	return &d, nil
}

func scanDownloads(rows *sql.Rows) ([]*entities.Download, error) {
	downloads := make([]*entities.Download, 0)
	for rows.Next() {
		d, err := scanDownload(rows)
		if err != nil {
			return nil, err
		}
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}
