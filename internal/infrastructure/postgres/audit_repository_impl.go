package postgres

import (
	"context"

	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/internal/domain/repository"
)

type AuditRepository struct {
	db DB
}

func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends one entry. The insert runs on the ambient transaction when
// one is open, so a failure here fails the whole unit of work.
func (r *AuditRepository) Record(ctx context.Context, e *entity.AuditEntry) error {
	row := resolve(ctx, r.db).QueryRow(ctx, `
		INSERT INTO audit_logs (log_id, user_id, action, details, ip_address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, e.LogCode, e.UserID, e.Action, e.Details, e.IPAddress)
	return row.Scan(&e.ID, &e.CreatedAt)
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
