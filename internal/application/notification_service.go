package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/internal/domain/repository"
	"github.com/citygate/csrms/pkg/apperr"
)

type NotificationService struct {
	Notifications repository.NotificationRepository
	Logger        *logrus.Logger
}

type NotificationPage struct {
	Items       []entity.Notification
	Total       int
	UnreadCount int
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) (*NotificationPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, total, err := s.Notifications.ListByRecipient(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperr.NewDependency("list notifications", err)
	}
	unread, err := s.Notifications.UnreadCount(ctx, userID)
	if err != nil {
		return nil, apperr.NewDependency("count notifications", err)
	}
	return &NotificationPage{Items: items, Total: total, UnreadCount: unread}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, code, userID string) (*entity.Notification, error) {
	n, err := s.Notifications.MarkRead(ctx, code, userID)
	if err != nil {
		return nil, apperr.NewDependency("mark notification read", err)
	}
	if n == nil {
		return nil, apperr.NewNotFound("notification")
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.Notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperr.NewDependency("mark notifications read", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, code, userID string) error {
	n, err := s.Notifications.Delete(ctx, code, userID)
	if err != nil {
		return apperr.NewDependency("delete notification", err)
	}
	if n == nil {
		return apperr.NewNotFound("notification")
	}
	return nil
}
