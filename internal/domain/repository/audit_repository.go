package repository

import (
	"context"

	"github.com/citygate/csrms/internal/domain/entity"
)

// AuditRepository is the append-only sink for audit entries. Record must
// surface insert failures so the enclosing transaction fails with them: an
// unaudited state change is treated the same as an unrecorded one.
type AuditRepository interface {
	Record(ctx context.Context, e *entity.AuditEntry) error
}
