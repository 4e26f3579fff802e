package application

import (
	"context"

	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/pkg/helpers"
)

// Actor identifies who performed an operation, carried from the HTTP layer
// into audit records and notification routing.
type Actor struct {
	UserID string
	Email  string
	Role   entity.Role
	IP     string
}

// EmailQueue is the producer side of the mail pipeline. Satisfied by
// *helpers.RabbitPublisher in production and by in-memory fakes in tests.
type EmailQueue interface {
	PublishJSON(ctx context.Context, body any) error
}

func auditEntry(userID, action, details, ip string) *entity.AuditEntry {
	e := &entity.AuditEntry{
		LogCode: helpers.NewCode("LOG"),
		Action:  action,
		Details: details,
	}
	if userID != "" {
		e.UserID = &userID
	}
	if ip != "" {
		e.IPAddress = &ip
	}
	return e
}
