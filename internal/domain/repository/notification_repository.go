package repository

import (
	"context"

	"github.com/citygate/csrms/internal/domain/entity"
)

// NotificationRepository stores in-app notifications. Ownership is enforced
// at the query level: mutations take the recipient's user id and affect
// nothing when it does not match.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	// ListByRecipient returns one page plus the total row count for the
	// same filter.
	ListByRecipient(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]entity.Notification, int, error)
	MarkRead(ctx context.Context, code, userID string) (*entity.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, code, userID string) (*entity.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}
