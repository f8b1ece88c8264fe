package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/config"
)

func TestMaintenanceSweep(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Maintenance = config.MaintenanceConfig{
		Enabled:              true,
		ClearFinishedCron:    "0 4 * * *",
		HistoryRetentionDays: 30,
		QueuedRetentionDays:  7,
	}
	svc := NewMaintenanceService(env.cfg, env.taskRepo, env.historyRepo, env.downloadRepo)

	createTask(t, env, &entities.Task{Status: entities.TaskStatusCompleted})
	createTask(t, env, &entities.Task{Status: entities.TaskStatusCancelled})
	keepTask := createTask(t, env, &entities.Task{Status: entities.TaskStatusActive})

	oldItem := &entities.HistoryItem{
		SourceURL: testVideoURL(0), Title: "t", Status: entities.HistoryStatusSuccess,
		CreatedAt: time.Now().AddDate(0, 0, -40),
	}
	freshItem := &entities.HistoryItem{
		SourceURL: testVideoURL(1), Title: "t", Status: entities.HistoryStatusSuccess,
	}
	for _, item := range []*entities.HistoryItem{oldItem, freshItem} {
		if err := env.historyRepo.Append(item); err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}

	stale, err := env.videoSvc.RegisterQueued(testVideoURL(2), "", entities.DownloadKindVideo)
	if err != nil {
		t.Fatalf("seed stale queued: %v", err)
	}
	if _, err := env.db.Conn().Exec(`UPDATE downloads SET created_at = ? WHERE id = ?`,
		time.Now().AddDate(0, 0, -8), stale.ID); err != nil {
		t.Fatalf("age stale queued row: %v", err)
	}
	if _, err := env.videoSvc.RegisterQueued(testVideoURL(3), "", entities.DownloadKindVideo); err != nil {
		t.Fatalf("seed fresh queued: %v", err)
	}

	mediaDir := env.cfg.Storage.MediaDir
	oldPart := filepath.Join(mediaDir, "dead video.mp4.part")
	freshPart := filepath.Join(mediaDir, "live video.mp4.part")
	oldMedia := filepath.Join(mediaDir, "movie.mp4")
	for _, p := range []string{oldPart, freshPart, oldMedia} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatalf("plant file %s: %v", p, err)
		}
	}

	// 崩溃遗留的下载工作目录:超龄的删,新鲜的和普通目录不动
	oldWorkDir := filepath.Join(mediaDir, ".dl-crashed123")
	freshWorkDir := filepath.Join(mediaDir, ".dl-running456")
	plainDir := filepath.Join(mediaDir, "archive")
	for _, d := range []string{oldWorkDir, freshWorkDir, plainDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("plant dir %s: %v", d, err)
		}
		if err := os.WriteFile(filepath.Join(d, "media.mp4.part"), []byte("x"), 0644); err != nil {
			t.Fatalf("plant dir content: %v", err)
		}
	}

	aged := time.Now().Add(-25 * time.Hour)
	for _, p := range []string{oldPart, oldMedia, oldWorkDir, plainDir} {
		if err := os.Chtimes(p, aged, aged); err != nil {
			t.Fatalf("age %s: %v", p, err)
		}
	}

	svc.Sweep()

	tasks, err := env.taskRepo.GetAll()
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != keepTask.ID {
		t.Errorf("tasks after sweep = %d, want only the active one", len(tasks))
	}

	items, err := env.historyRepo.List(10, 0)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(items) != 1 || items[0].SourceURL != testVideoURL(1) {
		t.Errorf("history after sweep = %d rows, want only the fresh one", len(items))
	}

	staleLeft, err := env.downloadRepo.ExistsBySourceURL(testVideoURL(2))
	if err != nil || staleLeft {
		t.Errorf("stale queued row survived sweep (exists=%v err=%v)", staleLeft, err)
	}
	freshLeft, err := env.downloadRepo.ExistsBySourceURL(testVideoURL(3))
	if err != nil || !freshLeft {
		t.Errorf("fresh queued row dropped by sweep (exists=%v err=%v)", freshLeft, err)
	}

	if _, err := os.Stat(oldPart); !os.IsNotExist(err) {
		t.Error("orphaned temp file survived sweep")
	}
	if _, err := os.Stat(freshPart); err != nil {
		t.Errorf("recent temp file removed by sweep: %v", err)
	}
	if _, err := os.Stat(oldMedia); err != nil {
		t.Errorf("media file removed by sweep: %v", err)
	}
	if _, err := os.Stat(oldWorkDir); !os.IsNotExist(err) {
		t.Error("orphaned download work dir survived sweep")
	}
	if _, err := os.Stat(freshWorkDir); err != nil {
		t.Errorf("recent download work dir removed by sweep: %v", err)
	}
	if _, err := os.Stat(plainDir); err != nil {
		t.Errorf("unrelated directory removed by sweep: %v", err)
	}
}

func TestMaintenanceStart(t *testing.T) {
	env := newTestEnv(t)

	t.Run("disabled is a no-op", func(t *testing.T) {
		env.cfg.Maintenance = config.MaintenanceConfig{Enabled: false}
		svc := NewMaintenanceService(env.cfg, env.taskRepo, env.historyRepo, env.downloadRepo)
		if err := svc.Start(); err != nil {
			t.Fatalf("start: %v", err)
		}
		svc.Stop()
	})

	t.Run("invalid cron expression", func(t *testing.T) {
		env.cfg.Maintenance = config.MaintenanceConfig{Enabled: true, ClearFinishedCron: "not a cron"}
		svc := NewMaintenanceService(env.cfg, env.taskRepo, env.historyRepo, env.downloadRepo)
		if err := svc.Start(); err == nil {
			t.Fatal("want error for invalid cron expression")
		}
	})

	t.Run("double start rejected", func(t *testing.T) {
		env.cfg.Maintenance = config.MaintenanceConfig{Enabled: true, ClearFinishedCron: "0 4 * * *"}
		svc := NewMaintenanceService(env.cfg, env.taskRepo, env.historyRepo, env.downloadRepo)
		if err := svc.Start(); err != nil {
			t.Fatalf("start: %v", err)
		}
		defer svc.Stop()
		if err := svc.Start(); err == nil {
			t.Fatal("want error for second start")
		}
	})
}
