package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/storage"
	"github.com/google/uuid"
)

// HistoryRepository 下载历史仓储,只追加
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *storage.DB) *HistoryRepository {
	return &HistoryRepository{db: db.Conn()}
}

const historyColumns = `id, task_id, source_url, title, uploader, platform, status, error, video_id, file_path, file_size, created_at`

// Append 追加一条历史记录
func (r *HistoryRepository) Append(item *entities.HistoryItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(`INSERT INTO history (`+historyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.TaskID, item.SourceURL, item.Title, item.Uploader, item.Platform,
		item.Status, item.Error, item.VideoID, item.FilePath, item.FileSize, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// List 分页获取历史,最新在前
func (r *HistoryRepository) List(limit, offset int) ([]*entities.HistoryItem, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(`SELECT `+historyColumns+` FROM history
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistoryItems(rows)
}

// GetByTaskID 获取某个连续任务的全部历史
func (r *HistoryRepository) GetByTaskID(taskID string) ([]*entities.HistoryItem, error) {
	rows, err := r.db.Query(`SELECT `+historyColumns+` FROM history
		WHERE task_id = ? ORDER BY created_at`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistoryItems(rows)
}

// CountByStatus 按状态统计历史条数
func (r *HistoryRepository) CountByStatus(status entities.HistoryStatus) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM history WHERE status = ?`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

// Delete 删除单条历史记录
func (r *HistoryRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete history item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("history item not found: %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAll 清空历史账本
func (r *HistoryRepository) DeleteAll() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

// DeleteBefore 清理早于截止时间的历史,保留期为0时不调用
func (r *HistoryRepository) DeleteBefore(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM history WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old history: %w", err)
	}
	return res.RowsAffected()
}

func scanHistoryItems(rows *sql.Rows) ([]*entities.HistoryItem, error) {
	items := make([]*entities.HistoryItem, 0)
	for rows.Next() {
		var item entities.HistoryItem
		var taskID, videoID sql.NullString

		err := rows.Scan(&item.ID, &taskID, &item.SourceURL, &item.Title, &item.Uploader,
			&item.Platform, &item.Status, &item.Error, &videoID, &item.FilePath,
			&item.FileSize, &item.CreatedAt)
		if err != nil {
			return nil, err
		}
		if taskID.Valid {
			item.TaskID = &taskID.String
		}
		if videoID.Valid {
			item.VideoID = &videoID.String
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}
