package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/storage"
	"github.com/google/uuid"
)

// SubscriptionRepository 订阅源仓储
type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *storage.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db.Conn()}
}

const subscriptionColumns = `id, name, url, platform, kind, created_at, last_checked_at`

// Create 创建订阅
// 同一URL重复订阅时返回ErrDuplicate
func (r *SubscriptionRepository) Create(s *entities.Subscription) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(`INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.URL, s.Platform, s.Kind, s.CreatedAt, nullTime(s.LastCheckedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("subscription already exists for %s: %w", s.URL, ErrDuplicate)
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// GetByID 根据ID获取订阅
func (r *SubscriptionRepository) GetByID(id string) (*entities.Subscription, error) {
	row := r.db.QueryRow(`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id)
	s, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("subscription not found: %s: %w", id, ErrNotFound)
	}
	return s, err
}

// GetByURL 根据URL获取订阅,不存在时返回nil
func (r *SubscriptionRepository) GetByURL(url string) (*entities.Subscription, error) {
	row := r.db.QueryRow(`SELECT `+subscriptionColumns+` FROM subscriptions WHERE url = ?`, url)
	s, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// GetAll 获取全部订阅
func (r *SubscriptionRepository) GetAll() ([]*entities.Subscription, error) {
	rows, err := r.db.Query(`SELECT ` + subscriptionColumns + ` FROM subscriptions ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]*entities.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// TouchLastChecked 任务完成后记录检查时间
func (r *SubscriptionRepository) TouchLastChecked(id string, at time.Time) error {
	_, err := r.db.Exec(`UPDATE subscriptions SET last_checked_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("failed to touch subscription: %w", err)
	}
	return nil
}

// Delete 删除订阅
func (r *SubscriptionRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subscription not found: %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanSubscription(row rowScanner) (*entities.Subscription, error) {
	var s entities.Subscription
	var lastChecked sql.NullTime

	err := row.Scan(&s.ID, &s.Name, &s.URL, &s.Platform, &s.Kind, &s.CreatedAt, &lastChecked)
	if err != nil {
		return nil, err
	}
	if lastChecked.Valid {
		t := lastChecked.Time
		s.LastCheckedAt = &t
	}
	return &s, nil
}
