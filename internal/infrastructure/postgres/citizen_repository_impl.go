package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/internal/domain/repository"
)

type CitizenRepository struct {
	db DB
}

func NewCitizenRepository(db DB) *CitizenRepository {
	return &CitizenRepository{db: db}
}

func (r *CitizenRepository) Create(ctx context.Context, c *entity.Citizen) error {
	row := resolve(ctx, r.db).QueryRow(ctx, `
		INSERT INTO citizens (citizen_id, user_id, notification_preference)
		VALUES ($1, $2, $3)
		RETURNING id
	`, c.CitizenCode, c.UserID, c.NotificationPreference)
	return row.Scan(&c.ID)
}

func (r *CitizenRepository) GetByUserID(ctx context.Context, userID string) (*entity.Citizen, error) {
	c := &entity.Citizen{}
	row := resolve(ctx, r.db).QueryRow(ctx, `
		SELECT id, citizen_id, user_id, notification_preference,
			total_requests_submitted, total_requests_resolved
		FROM citizens
		WHERE user_id = $1
	`, userID)
	if err := row.Scan(&c.ID, &c.CitizenCode, &c.UserID, &c.NotificationPreference,
		&c.TotalRequestsSubmitted, &c.TotalRequestsResolved); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// Counters are bumped in the database so a concurrent transaction holding
// the same row serializes on the lock instead of losing an update.
func (r *CitizenRepository) IncrementSubmitted(ctx context.Context, citizenID string) error {
	_, err := resolve(ctx, r.db).Exec(ctx, `
		UPDATE citizens
		SET total_requests_submitted = total_requests_submitted + 1
		WHERE id = $1
	`, citizenID)
	return err
}

func (r *CitizenRepository) IncrementResolved(ctx context.Context, citizenID string) error {
	_, err := resolve(ctx, r.db).Exec(ctx, `
		UPDATE citizens
		SET total_requests_resolved = total_requests_resolved + 1
		WHERE id = $1
	`, citizenID)
	return err
}

func (r *CitizenRepository) UpdateNotificationPreference(ctx context.Context, userID string, pref entity.NotificationPreference) error {
	_, err := resolve(ctx, r.db).Exec(ctx, `
		UPDATE citizens SET notification_preference = $1 WHERE user_id = $2
	`, pref, userID)
	return err
}

var _ repository.CitizenRepository = (*CitizenRepository)(nil)
