package services

import (
	"context"
	"testing"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/application/contracts"
	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	apperrors "github.com/franklioxygen/MyTube-sub001/internal/shared/errors"
)

func TestCreateSubscription(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		req      contracts.SubscriptionRequest
		wantKind entities.SubscriptionKind
		wantName string
	}{
		{
			name:     "explicit playlist kind",
			req:      contracts.SubscriptionRequest{URL: "https://youtube.com/@chan1", Kind: "playlist", Name: "n1"},
			wantKind: entities.SubscriptionKindPlaylist,
			wantName: "n1",
		},
		{
			name:     "kind inferred from list parameter",
			req:      contracts.SubscriptionRequest{URL: "https://youtube.com/playlist?list=PL9", Name: "n2"},
			wantKind: entities.SubscriptionKindPlaylist,
			wantName: "n2",
		},
		{
			name:     "kind inferred as channel, name falls back to url",
			req:      contracts.SubscriptionRequest{URL: "https://youtube.com/@chan3"},
			wantKind: entities.SubscriptionKindChannel,
			wantName: "https://youtube.com/@chan3",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := env.subSvc.CreateSubscription(ctx, tc.req)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if resp.Kind != tc.wantKind || resp.Name != tc.wantName {
				t.Errorf("kind/name = %s/%q, want %s/%q", resp.Kind, resp.Name, tc.wantKind, tc.wantName)
			}
		})
	}

	list, err := env.subSvc.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.TotalCount != 3 {
		t.Errorf("total = %d, want 3", list.TotalCount)
	}
}

func TestCreateSubscriptionRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.subSvc.CreateSubscription(ctx, contracts.SubscriptionRequest{URL: "https://x.com/a", Kind: "feed"})
	if !apperrors.IsCode(err, apperrors.ErrorCodeInvalidRequest) {
		t.Errorf("bad kind: err = %v, want INVALID_REQUEST", err)
	}
	_, err = env.subSvc.CreateSubscription(ctx, contracts.SubscriptionRequest{URL: "not-a-url"})
	if !apperrors.IsCode(err, apperrors.ErrorCodeInvalidRequest) {
		t.Errorf("bad url: err = %v, want INVALID_REQUEST", err)
	}
}

func TestCreateSubscriptionDuplicateURL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := contracts.SubscriptionRequest{URL: "https://youtube.com/@dup"}

	if _, err := env.subSvc.CreateSubscription(ctx, req); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := env.subSvc.CreateSubscription(ctx, req)
	if !apperrors.IsCode(err, apperrors.ErrorCodeConflict) {
		t.Errorf("err = %v, want CONFLICT", err)
	}
}

func TestDeleteSubscriptionCancelsItsTasks(t *testing.T) {
	env := newTestEnv(t)
	env.fetcher.entries = flatEntries(1)
	env.downloader.blockURL(testVideoURL(0))
	started := env.downloader.startedCh(testVideoURL(0))
	ctx := context.Background()

	url := "https://youtube.com/@doomed"
	resp, err := env.taskSvc.CreateTask(ctx, contracts.CreateTaskRequest{URL: url})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	awaitClosed(t, started, "download to start")

	// 同订阅下早已结束的任务不受删除影响
	finished := createTask(t, env, &entities.Task{
		SubscriptionID: resp.SubscriptionID,
		SourceURL:      url,
		Status:         entities.TaskStatusCompleted,
	})

	if err := env.subSvc.DeleteSubscription(ctx, *resp.SubscriptionID); err != nil {
		t.Fatalf("delete subscription: %v", err)
	}

	got := mustGetTask(t, env, resp.ID)
	if got.Status != entities.TaskStatusCancelled {
		t.Errorf("running task status = %s, want cancelled", got.Status)
	}
	untouched := mustGetTask(t, env, finished.ID)
	if untouched.Status != entities.TaskStatusCompleted {
		t.Errorf("finished task status = %s, want completed", untouched.Status)
	}

	list, err := env.subSvc.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if list.TotalCount != 0 {
		t.Errorf("subscriptions remaining = %d, want 0", list.TotalCount)
	}
	waitFor(t, 3*time.Second, "in-flight download cleanup", func() bool {
		rows, err := env.downloadRepo.GetAll()
		return err == nil && len(rows) == 0
	})
}

func TestDeleteSubscriptionNotFound(t *testing.T) {
	env := newTestEnv(t)
	err := env.subSvc.DeleteSubscription(context.Background(), "missing")
	if !apperrors.IsCode(err, apperrors.ErrorCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}
