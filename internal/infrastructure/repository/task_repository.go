package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/storage"
	"github.com/google/uuid"
)

// TaskRepository 连续下载任务仓储
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *storage.DB) *TaskRepository {
	return &TaskRepository{db: db.Conn()}
}

const taskColumns = `id, subscription_id, collection_id, source_url, platform, status,
	total_videos, downloaded_count, skipped_count, failed_count, current_video_index,
	error, created_at, updated_at, completed_at`

// Create 创建新任务
func (r *TaskRepository) Create(task *entities.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := r.db.Exec(`INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.SubscriptionID, task.CollectionID, task.SourceURL, task.Platform,
		task.Status, task.TotalVideos, task.DownloadedCount, task.SkippedCount,
		task.FailedCount, task.CurrentVideoIndex, task.Error,
		task.CreatedAt, task.UpdatedAt, nullTime(task.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID 根据ID获取任务
func (r *TaskRepository) GetByID(id string) (*entities.Task, error) {
	row := r.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task not found: %s: %w", id, ErrNotFound)
	}
	return task, err
}

// GetStatus 只读取任务状态,处理循环每轮调用
func (r *TaskRepository) GetStatus(id string) (entities.TaskStatus, error) {
	var status entities.TaskStatus
	err := r.db.QueryRow(`SELECT status FROM tasks WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("task not found: %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

// GetAll 获取所有任务,新建在前
func (r *TaskRepository) GetAll() ([]*entities.Task, error) {
	rows, err := r.db.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// GetByStatus 按状态获取任务
func (r *TaskRepository) GetByStatus(status entities.TaskStatus) ([]*entities.Task, error) {
	rows, err := r.db.Query(`SELECT `+taskColumns+` FROM tasks WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// UpdateStatus 更新任务状态
func (r *TaskRepository) UpdateStatus(id string, status entities.TaskStatus) error {
	res, err := r.db.Exec(`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task not found: %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateTotalVideos 枚举完成后写入视频总数
func (r *TaskRepository) UpdateTotalVideos(id string, total int) error {
	_, err := r.db.Exec(`UPDATE tasks SET total_videos = ?, updated_at = ? WHERE id = ?`,
		total, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update total videos: %w", err)
	}
	return nil
}

// RecordProgress 单条视频处理完后持久化游标和计数
// 游标推进和计数增量在同一条UPDATE内完成,崩溃后不会出现二者不一致;
// 终态任务不接受推进,返回是否写入——取消落库后哪怕还有在途
// 条目跑完,游标也停在取消时刻
func (r *TaskRepository) RecordProgress(id string, index int, downloaded, skipped, failed int) (bool, error) {
	res, err := r.db.Exec(`UPDATE tasks SET
		downloaded_count = downloaded_count + ?,
		skipped_count = skipped_count + ?,
		failed_count = failed_count + ?,
		current_video_index = ?,
		updated_at = ?
		WHERE id = ? AND status IN (?, ?)`,
		downloaded, skipped, failed, index, time.Now(), id,
		entities.TaskStatusActive, entities.TaskStatusPaused)
	if err != nil {
		return false, fmt.Errorf("failed to record progress: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkCompleted 列表耗尽后标记完成
// 只覆盖active状态,与取消竞争时取消优先,返回是否写入
func (r *TaskRepository) MarkCompleted(id string) (bool, error) {
	now := time.Now()
	res, err := r.db.Exec(`UPDATE tasks SET status = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		entities.TaskStatusCompleted, now, now, id, entities.TaskStatusActive)
	if err != nil {
		return false, fmt.Errorf("failed to mark task completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkCancelled 取消任务并记录原因
func (r *TaskRepository) MarkCancelled(id string, errMsg string) error {
	now := time.Now()
	res, err := r.db.Exec(`UPDATE tasks SET status = ?, error = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		entities.TaskStatusCancelled, errMsg, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to mark task cancelled: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task not found: %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete 删除任务
func (r *TaskRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// DeleteFinished 删除所有终态任务,返回删除数量
func (r *TaskRepository) DeleteFinished() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM tasks WHERE status IN (?, ?)`,
		entities.TaskStatusCompleted, entities.TaskStatusCancelled)
	if err != nil {
		return 0, fmt.Errorf("failed to delete finished tasks: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*entities.Task, error) {
	var task entities.Task
	var subID, colID sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(&task.ID, &subID, &colID, &task.SourceURL, &task.Platform, &task.Status,
		&task.TotalVideos, &task.DownloadedCount, &task.SkippedCount, &task.FailedCount,
		&task.CurrentVideoIndex, &task.Error, &task.CreatedAt, &task.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if subID.Valid {
		task.SubscriptionID = &subID.String
	}
	if colID.Valid {
		task.CollectionID = &colID.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}
	return &task, nil
}

func scanTasks(rows *sql.Rows) ([]*entities.Task, error) {
	tasks := make([]*entities.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
