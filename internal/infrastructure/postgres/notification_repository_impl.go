package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/internal/domain/repository"
)

const notificationColumns = `id, notification_id, recipient_id, title, message, is_read, sent_date, read_date`

type NotificationRepository struct {
	db DB
}

func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	row := resolve(ctx, r.db).QueryRow(ctx, `
		INSERT INTO notifications (notification_id, recipient_id, title, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, sent_date
	`, n.NotificationCode, n.RecipientID, n.Title, n.Message)
	return row.Scan(&n.ID, &n.SentDate)
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]entity.Notification, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	where := "WHERE recipient_id = $1"
	args := []any{userID}
	if unreadOnly {
		where += " AND is_read = FALSE"
	}

	q := resolve(ctx, r.db)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := q.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications `+where+`
		ORDER BY sent_date DESC
		LIMIT $2 OFFSET $3
	`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []entity.Notification{}
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.NotificationCode, &n.RecipientID, &n.Title,
			&n.Message, &n.IsRead, &n.SentDate, &n.ReadDate); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, code, userID string) (*entity.Notification, error) {
	return r.returningOne(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_date = NOW()
		WHERE notification_id = $1 AND recipient_id = $2
		RETURNING `+notificationColumns, code, userID)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := resolve(ctx, r.db).Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_date = NOW()
		WHERE recipient_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *NotificationRepository) Delete(ctx context.Context, code, userID string) (*entity.Notification, error) {
	return r.returningOne(ctx, `
		DELETE FROM notifications
		WHERE notification_id = $1 AND recipient_id = $2
		RETURNING `+notificationColumns, code, userID)
}

func (r *NotificationRepository) returningOne(ctx context.Context, query string, args ...any) (*entity.Notification, error) {
	n := &entity.Notification{}
	row := resolve(ctx, r.db).QueryRow(ctx, query, args...)
	if err := row.Scan(&n.ID, &n.NotificationCode, &n.RecipientID, &n.Title,
		&n.Message, &n.IsRead, &n.SentDate, &n.ReadDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := resolve(ctx, r.db).QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1 AND is_read = FALSE
	`, userID).Scan(&count)
	return count, err
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)
