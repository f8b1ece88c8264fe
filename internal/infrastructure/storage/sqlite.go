package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB SQLite数据库句柄
type DB struct {
	conn *sql.DB
}

// schema 建表语句,启动时幂等执行
// downloads表的部分唯一索引保证同一URL最多一条active登记,
// videos表的source_url唯一约束即去重索引,并发竞争由约束冲突暴露
const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id                  TEXT PRIMARY KEY,
	subscription_id     TEXT,
	collection_id       TEXT,
	source_url          TEXT NOT NULL,
	platform            TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL,
	total_videos        INTEGER NOT NULL DEFAULT 0,
	downloaded_count    INTEGER NOT NULL DEFAULT 0,
	skipped_count       INTEGER NOT NULL DEFAULT 0,
	failed_count        INTEGER NOT NULL DEFAULT 0,
	current_video_index INTEGER NOT NULL DEFAULT 0,
	error               TEXT NOT NULL DEFAULT '',
	created_at          TIMESTAMP NOT NULL,
	updated_at          TIMESTAMP NOT NULL,
	completed_at        TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

CREATE TABLE IF NOT EXISTS history (
	id         TEXT PRIMARY KEY,
	task_id    TEXT,
	source_url TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	uploader   TEXT NOT NULL DEFAULT '',
	platform   TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL,
	error      TEXT NOT NULL DEFAULT '',
	video_id   TEXT,
	file_path  TEXT NOT NULL DEFAULT '',
	file_size  INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_created_at ON history(created_at);
CREATE INDEX IF NOT EXISTS idx_history_task_id ON history(task_id);

CREATE TABLE IF NOT EXISTS downloads (
	id              TEXT PRIMARY KEY,
	source_url      TEXT NOT NULL,
	title           TEXT NOT NULL DEFAULT '',
	uploader        TEXT NOT NULL DEFAULT '',
	platform        TEXT NOT NULL DEFAULT '',
	kind            TEXT NOT NULL DEFAULT 'video',
	state           TEXT NOT NULL,
	progress        REAL NOT NULL DEFAULT 0,
	speed           INTEGER NOT NULL DEFAULT 0,
	total_size      INTEGER NOT NULL DEFAULT 0,
	downloaded_size INTEGER NOT NULL DEFAULT 0,
	task_id         TEXT,
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_downloads_active_url
	ON downloads(source_url) WHERE state = 'active';

CREATE TABLE IF NOT EXISTS videos (
	id             TEXT PRIMARY KEY,
	source_url     TEXT NOT NULL UNIQUE,
	title          TEXT NOT NULL DEFAULT '',
	uploader       TEXT NOT NULL DEFAULT '',
	platform       TEXT NOT NULL DEFAULT '',
	duration       INTEGER NOT NULL DEFAULT 0,
	file_size      INTEGER NOT NULL DEFAULT 0,
	file_path      TEXT NOT NULL DEFAULT '',
	thumbnail_path TEXT NOT NULL DEFAULT '',
	upload_date    TEXT NOT NULL DEFAULT '',
	downloaded_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS collections (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS collection_videos (
	collection_id TEXT NOT NULL,
	video_id      TEXT NOT NULL,
	position      INTEGER NOT NULL,
	PRIMARY KEY (collection_id, video_id)
);

CREATE TABLE IF NOT EXISTS subscriptions (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL DEFAULT '',
	url             TEXT NOT NULL UNIQUE,
	platform        TEXT NOT NULL DEFAULT '',
	kind            TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL,
	last_checked_at TIMESTAMP
);
`

// Open 打开(或创建)dataDir下的数据库并执行建表
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "mytube.db")
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", dbPath)

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite单写者,串行化连接池规避SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Conn 返回底层连接,仓储层使用
func (d *DB) Conn() *sql.DB {
	return d.conn
}

func (d *DB) Close() error {
	return d.conn.Close()
}
