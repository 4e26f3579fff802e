package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/internal/domain/repository"
)

const requestOwnerColumns = `sr.id, sr.request_id, sr.citizen_id, sr.title, sr.description,
		sr.category, sr.status, sr.priority, sr.location, sr.image_path,
		sr.submission_date, sr.resolution_date,
		u.id, u.email, c.notification_preference`

type RequestRepository struct {
	db DB
}

func NewRequestRepository(db DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, req *entity.ServiceRequest) error {
	row := resolve(ctx, r.db).QueryRow(ctx, `
		INSERT INTO service_requests (request_id, citizen_id, title, description, category, status, priority, location, image_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, submission_date
	`, req.RequestCode, req.CitizenID, req.Title, req.Description, req.Category,
		req.Status, req.Priority, req.Location, req.ImagePath)
	return row.Scan(&req.ID, &req.SubmissionDate)
}

func (r *RequestRepository) GetByCode(ctx context.Context, code string) (*repository.RequestWithOwner, error) {
	return r.getOwned(ctx, `
		SELECT `+requestOwnerColumns+`
		FROM service_requests sr
		JOIN citizens c ON c.id = sr.citizen_id
		JOIN users u ON u.id = c.user_id
		WHERE sr.request_id = $1
	`, code)
}

func (r *RequestRepository) GetByCodeForUpdate(ctx context.Context, code string) (*repository.RequestWithOwner, error) {
	// Lock only the request row; the joined rows are read-only here.
	return r.getOwned(ctx, `
		SELECT `+requestOwnerColumns+`
		FROM service_requests sr
		JOIN citizens c ON c.id = sr.citizen_id
		JOIN users u ON u.id = c.user_id
		WHERE sr.request_id = $1
		FOR UPDATE OF sr
	`, code)
}

func (r *RequestRepository) getOwned(ctx context.Context, query string, args ...any) (*repository.RequestWithOwner, error) {
	out := &repository.RequestWithOwner{}
	row := resolve(ctx, r.db).QueryRow(ctx, query, args...)
	if err := row.Scan(&out.ID, &out.RequestCode, &out.CitizenID, &out.Title, &out.Description,
		&out.Category, &out.Status, &out.Priority, &out.Location, &out.ImagePath,
		&out.SubmissionDate, &out.ResolutionDate,
		&out.OwnerUserID, &out.OwnerEmail, &out.OwnerPref); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, status entity.RequestStatus, resolvedAt *time.Time) error {
	_, err := resolve(ctx, r.db).Exec(ctx, `
		UPDATE service_requests
		SET status = $1, resolution_date = COALESCE(resolution_date, $2)
		WHERE id = $3
	`, status, resolvedAt, id)
	return err
}

func (r *RequestRepository) CloseEligible(ctx context.Context, code string, closedAt time.Time) (*repository.RequestWithOwner, error) {
	out := &repository.RequestWithOwner{}
	row := resolve(ctx, r.db).QueryRow(ctx, `
		UPDATE service_requests sr
		SET status = 'Closed', resolution_date = COALESCE(sr.resolution_date, $2)
		FROM citizens c, users u
		WHERE sr.request_id = $1
		  AND sr.status IN ('Resolved', 'In Progress', 'Pending')
		  AND c.id = sr.citizen_id
		  AND u.id = c.user_id
		RETURNING `+requestOwnerColumns, code, closedAt)
	if err := row.Scan(&out.ID, &out.RequestCode, &out.CitizenID, &out.Title, &out.Description,
		&out.Category, &out.Status, &out.Priority, &out.Location, &out.ImagePath,
		&out.SubmissionDate, &out.ResolutionDate,
		&out.OwnerUserID, &out.OwnerEmail, &out.OwnerPref); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (r *RequestRepository) SetImagePath(ctx context.Context, id, imageURL string) error {
	_, err := resolve(ctx, r.db).Exec(ctx, `
		UPDATE service_requests SET image_path = $1 WHERE id = $2
	`, imageURL, id)
	return err
}

var allowedSortColumns = map[string]bool{
	"submission_date": true,
	"priority":        true,
	"status":          true,
}

func (r *RequestRepository) List(ctx context.Context, f repository.RequestFilter) ([]entity.ServiceRequest, error) {
	where := "WHERE 1=1"
	args := []any{}

	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND sr.status = $%d", len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where += fmt.Sprintf(" AND sr.category = $%d", len(args))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		where += fmt.Sprintf(" AND sr.priority = $%d", len(args))
	}
	if f.OwnerUserID != "" {
		args = append(args, f.OwnerUserID)
		where += fmt.Sprintf(" AND sr.citizen_id IN (SELECT c.id FROM citizens c WHERE c.user_id = $%d)", len(args))
	}

	sortCol := "submission_date"
	if allowedSortColumns[f.SortBy] {
		sortCol = f.SortBy
	}
	order := "ASC"
	if f.Descending {
		order = "DESC"
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT sr.id, sr.request_id, sr.citizen_id, sr.title, sr.description,
			sr.category, sr.status, sr.priority, sr.location, sr.image_path,
			sr.submission_date, sr.resolution_date
		FROM service_requests sr
		%s
		ORDER BY sr.%s %s
		LIMIT %d`, where, sortCol, order, limit)

	rows, err := resolve(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *RequestRepository) ListByOwner(ctx context.Context, userID string, limit int) ([]entity.ServiceRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := resolve(ctx, r.db).Query(ctx, fmt.Sprintf(`
		SELECT sr.id, sr.request_id, sr.citizen_id, sr.title, sr.description,
			sr.category, sr.status, sr.priority, sr.location, sr.image_path,
			sr.submission_date, sr.resolution_date
		FROM service_requests sr
		JOIN citizens c ON c.id = sr.citizen_id
		WHERE c.user_id = $1
		ORDER BY sr.submission_date DESC
		LIMIT %d`, limit), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func scanRequests(rows pgx.Rows) ([]entity.ServiceRequest, error) {
	out := []entity.ServiceRequest{}
	for rows.Next() {
		var req entity.ServiceRequest
		if err := rows.Scan(&req.ID, &req.RequestCode, &req.CitizenID, &req.Title, &req.Description,
			&req.Category, &req.Status, &req.Priority, &req.Location, &req.ImagePath,
			&req.SubmissionDate, &req.ResolutionDate); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *RequestRepository) StatusCounts(ctx context.Context, userID string) (*repository.StatusCounts, error) {
	sc := &repository.StatusCounts{}
	row := resolve(ctx, r.db).QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE sr.status = 'Pending'),
			COUNT(*) FILTER (WHERE sr.status = 'In Progress'),
			COUNT(*) FILTER (WHERE sr.status IN ('Resolved', 'Closed')),
			COUNT(*) FILTER (WHERE sr.status = 'Rejected')
		FROM service_requests sr
		JOIN citizens c ON c.id = sr.citizen_id
		WHERE c.user_id = $1
	`, userID)
	if err := row.Scan(&sc.Total, &sc.Pending, &sc.InProgress, &sc.Resolved, &sc.Rejected); err != nil {
		return nil, err
	}
	return sc, nil
}

var _ repository.RequestRepository = (*RequestRepository)(nil)
