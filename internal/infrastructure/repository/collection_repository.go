package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/storage"
	"github.com/google/uuid"
)

// CollectionRepository 合集仓储
type CollectionRepository struct {
	db *sql.DB
}

func NewCollectionRepository(db *storage.DB) *CollectionRepository {
	return &CollectionRepository{db: db.Conn()}
}

// Create 创建合集
func (r *CollectionRepository) Create(c *entities.Collection) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.Exec(`INSERT INTO collections (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)`, c.ID, c.Name, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// GetByID 根据ID获取合集
func (r *CollectionRepository) GetByID(id string) (*entities.Collection, error) {
	var c entities.Collection
	err := r.db.QueryRow(`SELECT c.id, c.name, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM collection_videos cv WHERE cv.collection_id = c.id)
		FROM collections c WHERE c.id = ?`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.VideoCount)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("collection not found: %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetAll 获取全部合集
func (r *CollectionRepository) GetAll() ([]*entities.Collection, error) {
	rows, err := r.db.Query(`SELECT c.id, c.name, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM collection_videos cv WHERE cv.collection_id = c.id)
		FROM collections c ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collections := make([]*entities.Collection, 0)
	for rows.Next() {
		var c entities.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.VideoCount); err != nil {
			return nil, err
		}
		collections = append(collections, &c)
	}
	return collections, rows.Err()
}

// AttachVideo 将视频追加到合集末尾
// 重复挂接按无操作处理
func (r *CollectionRepository) AttachVideo(collectionID, videoID string) error {
	_, err := r.db.Exec(`INSERT INTO collection_videos (collection_id, video_id, position)
		SELECT ?, ?, COALESCE(MAX(position), 0) + 1
		FROM collection_videos WHERE collection_id = ?`,
		collectionID, videoID, collectionID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("failed to attach video to collection: %w", err)
	}
	return nil
}

// ListVideos 按合集内顺序获取视频
func (r *CollectionRepository) ListVideos(collectionID string) ([]*entities.Video, error) {
	rows, err := r.db.Query(`SELECT `+videoColumns+` FROM videos
		JOIN collection_videos cv ON cv.video_id = videos.id
		WHERE cv.collection_id = ? ORDER BY cv.position`, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVideos(rows)
}

// Delete 删除合集及其关联,视频本身保留
func (r *CollectionRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM collection_videos WHERE collection_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear collection videos: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("collection not found: %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}
