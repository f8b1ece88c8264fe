package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/application/contracts"
	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	apperrors "github.com/franklioxygen/MyTube-sub001/internal/shared/errors"
)

func seedLibraryVideo(t *testing.T, env *testEnv, url string) *entities.Video {
	t.Helper()
	mediaPath := filepath.Join(env.cfg.Storage.MediaDir, "seeded.mp4")
	thumbPath := filepath.Join(env.cfg.Storage.MediaDir, "seeded.jpg")
	for _, p := range []string{mediaPath, thumbPath} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	v := &entities.Video{
		SourceURL:     url,
		Title:         "seeded",
		Uploader:      "channel",
		Platform:      "youtube",
		FilePath:      mediaPath,
		ThumbnailPath: thumbPath,
	}
	if err := env.videoRepo.Create(v); err != nil {
		t.Fatalf("seed video: %v", err)
	}
	return v
}

func TestDeleteVideoWithFileRemoval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	v := seedLibraryVideo(t, env, testVideoURL(0))

	if err := env.librarySvc.DeleteVideo(ctx, v.ID, true); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	if _, err := env.librarySvc.GetVideo(ctx, v.ID); !apperrors.IsCode(err, apperrors.ErrorCodeNotFound) {
		t.Errorf("deleted video lookup: err = %v, want NOT_FOUND", err)
	}
	for _, p := range []string{v.FilePath, v.ThumbnailPath} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("file %s not removed", filepath.Base(p))
		}
	}

	// 删除入账deleted历史,之后同URL可重新下载
	deleted := historyByStatus(t, env, entities.HistoryStatusDeleted)
	if len(deleted) != 1 || deleted[0].SourceURL != testVideoURL(0) || deleted[0].FilePath != v.FilePath {
		t.Errorf("deleted history = %+v", deleted)
	}
	exists, err := env.videoRepo.ExistsBySourceURL(testVideoURL(0))
	if err != nil || exists {
		t.Errorf("url still held after deletion (exists=%v err=%v)", exists, err)
	}
}

func TestDeleteVideoKeepsFileWhenAsked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	v := seedLibraryVideo(t, env, testVideoURL(0))

	if err := env.librarySvc.DeleteVideo(ctx, v.ID, false); err != nil {
		t.Fatalf("delete video: %v", err)
	}
	if _, err := os.Stat(v.FilePath); err != nil {
		t.Errorf("media file removed despite remove_file=false: %v", err)
	}
}

func TestDeleteVideoNotFound(t *testing.T) {
	env := newTestEnv(t)
	err := env.librarySvc.DeleteVideo(context.Background(), "missing", false)
	if !apperrors.IsCode(err, apperrors.ErrorCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestDeleteVideoDetachesFromCollection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	v := seedLibraryVideo(t, env, testVideoURL(0))
	col := &entities.Collection{Name: "mixed"}
	if err := env.colRepo.Create(col); err != nil {
		t.Fatalf("create collection: %v", err)
	}
	if err := env.colRepo.AttachVideo(col.ID, v.ID); err != nil {
		t.Fatalf("attach video: %v", err)
	}

	if err := env.librarySvc.DeleteVideo(ctx, v.ID, false); err != nil {
		t.Fatalf("delete video: %v", err)
	}
	resp, err := env.librarySvc.GetCollectionVideos(ctx, col.ID)
	if err != nil {
		t.Fatalf("collection videos: %v", err)
	}
	if resp.TotalCount != 0 {
		t.Errorf("collection still references %d deleted videos", resp.TotalCount)
	}
}

func TestGetCollectionVideosNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.librarySvc.GetCollectionVideos(context.Background(), "missing")
	if !apperrors.IsCode(err, apperrors.ErrorCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestListHistoryPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		item := &entities.HistoryItem{
			SourceURL: testVideoURL(i),
			Title:     "t",
			Platform:  "youtube",
			Status:    entities.HistoryStatusSuccess,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := env.historyRepo.Append(item); err != nil {
			t.Fatalf("seed history %d: %v", i, err)
		}
	}

	resp, err := env.librarySvc.ListHistory(ctx, contracts.HistoryListRequest{Limit: 2})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(resp.Items) != 2 || resp.Items[0].SourceURL != testVideoURL(4) {
		t.Errorf("first page = %d items starting at %s, want newest first",
			len(resp.Items), resp.Items[0].SourceURL)
	}

	resp, err = env.librarySvc.ListHistory(ctx, contracts.HistoryListRequest{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("list history offset: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].SourceURL != testVideoURL(0) {
		t.Errorf("last page = %d items, want the oldest row only", len(resp.Items))
	}

	// 缺省和越界的分页参数落回安全值
	resp, err = env.librarySvc.ListHistory(ctx, contracts.HistoryListRequest{Limit: 0, Offset: -3})
	if err != nil {
		t.Fatalf("list history defaults: %v", err)
	}
	if resp.Limit != defaultHistoryPageSize || resp.Offset != 0 {
		t.Errorf("normalized limit/offset = %d/%d, want %d/0", resp.Limit, resp.Offset, defaultHistoryPageSize)
	}
	resp, err = env.librarySvc.ListHistory(ctx, contracts.HistoryListRequest{Limit: 9999})
	if err != nil {
		t.Fatalf("list history capped: %v", err)
	}
	if resp.Limit != maxHistoryPageSize {
		t.Errorf("capped limit = %d, want %d", resp.Limit, maxHistoryPageSize)
	}
}

func TestDeleteHistoryItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := &entities.HistoryItem{SourceURL: testVideoURL(0), Title: "t", Status: entities.HistoryStatusFailed}
	if err := env.historyRepo.Append(item); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	if err := env.librarySvc.DeleteHistoryItem(ctx, item.ID); err != nil {
		t.Fatalf("delete history item: %v", err)
	}
	if err := env.librarySvc.DeleteHistoryItem(ctx, item.ID); !apperrors.IsCode(err, apperrors.ErrorCodeNotFound) {
		t.Errorf("repeat delete: err = %v, want NOT_FOUND", err)
	}
}

func TestClearHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := env.historyRepo.Append(&entities.HistoryItem{
			SourceURL: testVideoURL(i), Title: "t", Status: entities.HistoryStatusSuccess,
		}); err != nil {
			t.Fatalf("seed history %d: %v", i, err)
		}
	}

	n, err := env.librarySvc.ClearHistory(ctx)
	if err != nil {
		t.Fatalf("clear history: %v", err)
	}
	if n != 3 {
		t.Errorf("cleared = %d, want 3", n)
	}
	resp, err := env.librarySvc.ListHistory(ctx, contracts.HistoryListRequest{})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("history not empty after clear: %d rows", len(resp.Items))
	}
}
