package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/storage"
	"github.com/google/uuid"
)

// VideoRepository 已入库视频仓储
// source_url唯一约束就是全局去重索引
type VideoRepository struct {
	db *sql.DB
}

func NewVideoRepository(db *storage.DB) *VideoRepository {
	return &VideoRepository{db: db.Conn()}
}

const videoColumns = `id, source_url, title, uploader, platform, duration, file_size,
	file_path, thumbnail_path, upload_date, downloaded_at`

// Create 视频入库
// 同一URL已入库时返回ErrDuplicate
func (r *VideoRepository) Create(v *entities.Video) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.DownloadedAt.IsZero() {
		v.DownloadedAt = time.Now()
	}

	_, err := r.db.Exec(`INSERT INTO videos (`+videoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.SourceURL, v.Title, v.Uploader, v.Platform, v.Duration, v.FileSize,
		v.FilePath, v.ThumbnailPath, v.UploadDate, v.DownloadedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("video already exists for %s: %w", v.SourceURL, ErrDuplicate)
		}
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

// ExistsBySourceURL 去重检查
func (r *VideoRepository) ExistsBySourceURL(sourceURL string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM videos WHERE source_url = ?`, sourceURL).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check video existence: %w", err)
	}
	return true, nil
}

// GetByID 根据ID获取视频
func (r *VideoRepository) GetByID(id string) (*entities.Video, error) {
	row := r.db.QueryRow(`SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	v, err := scanVideo(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("video not found: %s: %w", id, ErrNotFound)
	}
	return v, err
}

// GetBySourceURL 根据URL获取视频
func (r *VideoRepository) GetBySourceURL(sourceURL string) (*entities.Video, error) {
	row := r.db.QueryRow(`SELECT `+videoColumns+` FROM videos WHERE source_url = ?`, sourceURL)
	v, err := scanVideo(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("video not found for url: %s", sourceURL)
	}
	return v, err
}

// GetAll 获取全部视频,最新入库在前
func (r *VideoRepository) GetAll() ([]*entities.Video, error) {
	rows, err := r.db.Query(`SELECT ` + videoColumns + ` FROM videos ORDER BY downloaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVideos(rows)
}

// Delete 删除视频记录,同时解除所有合集关联
// 删除后该URL可重新下载
func (r *VideoRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM collection_videos WHERE video_id = ?`, id); err != nil {
		return fmt.Errorf("failed to detach video from collections: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("video not found: %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

func scanVideo(row rowScanner) (*entities.Video, error) {
	var v entities.Video
	err := row.Scan(&v.ID, &v.SourceURL, &v.Title, &v.Uploader, &v.Platform,
		&v.Duration, &v.FileSize, &v.FilePath, &v.ThumbnailPath, &v.UploadDate, &v.DownloadedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func scanVideos(rows *sql.Rows) ([]*entities.Video, error) {
	videos := make([]*entities.Video, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
