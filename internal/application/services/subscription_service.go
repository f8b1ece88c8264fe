package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franklioxygen/MyTube-sub001/internal/application/contracts"
	"github.com/franklioxygen/MyTube-sub001/internal/domain/entities"
	"github.com/franklioxygen/MyTube-sub001/internal/domain/valueobjects"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/repository"
	apperrors "github.com/franklioxygen/MyTube-sub001/internal/shared/errors"
	"github.com/franklioxygen/MyTube-sub001/pkg/logger"
)

// AppSubscriptionService 订阅源管理服务
type AppSubscriptionService struct {
	subscriptionRepo *repository.SubscriptionRepository
	taskRepo         *repository.TaskRepository
	taskSvc          contracts.TaskService
}

// NewAppSubscriptionService 创建订阅服务
func NewAppSubscriptionService(
	subscriptionRepo *repository.SubscriptionRepository,
	taskRepo *repository.TaskRepository,
	taskSvc contracts.TaskService,
) *AppSubscriptionService {
	return &AppSubscriptionService{
		subscriptionRepo: subscriptionRepo,
		taskRepo:         taskRepo,
		taskSvc:          taskSvc,
	}
}

// CreateSubscription 注册订阅源
// Kind留空时按URL形态推断,同一URL重复注册返回冲突
func (s *AppSubscriptionService) CreateSubscription(ctx context.Context, req contracts.SubscriptionRequest) (*contracts.SubscriptionResponse, error) {
	rawURL := strings.TrimSpace(req.URL)
	if err := validateSourceURL(rawURL); err != nil {
		return nil, err
	}

	kind := entities.SubscriptionKind(req.Kind)
	switch kind {
	case entities.SubscriptionKindChannel, entities.SubscriptionKindPlaylist:
	case "":
		kind = DetectSubscriptionKind(rawURL)
	default:
		return nil, apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "kind must be channel or playlist")
	}

	sub := &entities.Subscription{
		Name:     strings.TrimSpace(req.Name),
		URL:      rawURL,
		Platform: valueobjects.DetectPlatform(rawURL).String(),
		Kind:     kind,
	}
	if sub.Name == "" {
		sub.Name = rawURL
	}
	if err := s.subscriptionRepo.Create(sub); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewServiceError(apperrors.ErrorCodeConflict, "subscription already exists for this url")
		}
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to create subscription", err)
	}

	logger.Info("subscription created", "subscription_id", sub.ID, "kind", string(kind), "url", rawURL)
	resp := subscriptionToResponse(sub)
	return &resp, nil
}

// ListSubscriptions 列出全部订阅
func (s *AppSubscriptionService) ListSubscriptions(ctx context.Context) (*contracts.SubscriptionListResponse, error) {
	subs, err := s.subscriptionRepo.GetAll()
	if err != nil {
		return nil, apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to list subscriptions", err)
	}
	resp := &contracts.SubscriptionListResponse{
		Subscriptions: make([]contracts.SubscriptionResponse, 0, len(subs)),
		TotalCount:    len(subs),
	}
	for _, sub := range subs {
		resp.Subscriptions = append(resp.Subscriptions, subscriptionToResponse(sub))
	}
	return resp, nil
}

// DeleteSubscription 删除订阅
// 先取消名下所有未结束任务,任一取消失败则中止删除保持一致
func (s *AppSubscriptionService) DeleteSubscription(ctx context.Context, id string) error {
	if _, err := s.subscriptionRepo.GetByID(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewServiceError(apperrors.ErrorCodeNotFound, "subscription not found")
		}
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to load subscription", err)
	}

	tasks, err := s.taskRepo.GetAll()
	if err != nil {
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to list tasks", err)
	}
	for _, t := range tasks {
		if t.SubscriptionID == nil || *t.SubscriptionID != id {
			continue
		}
		if t.Status.IsTerminal() {
			continue
		}
		if err := s.taskSvc.CancelTask(ctx, t.ID); err != nil {
			return err
		}
	}

	if err := s.subscriptionRepo.Delete(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewServiceError(apperrors.ErrorCodeNotFound, "subscription not found")
		}
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to delete subscription", err)
	}
	logger.Info("subscription deleted", "subscription_id", id)
	return nil
}

func subscriptionToResponse(s *entities.Subscription) contracts.SubscriptionResponse {
	return contracts.SubscriptionResponse{
		ID:            s.ID,
		Name:          s.Name,
		URL:           s.URL,
		Platform:      s.Platform,
		Kind:          s.Kind,
		CreatedAt:     s.CreatedAt,
		LastCheckedAt: s.LastCheckedAt,
	}
}
