package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citygate/csrms/internal/domain/entity"
)

func now(t *testing.T) time.Time {
	t.Helper()
	return time.Now()
}

func testEntry() *entity.AuditEntry {
	uid := "user-1"
	ip := "10.0.0.1"
	return &entity.AuditEntry{
		LogCode:   "LOG-aaaa1111",
		UserID:    &uid,
		Action:    entity.ActionRequestStatus,
		Details:   "REQ-aaaa1111: Pending -> In Progress",
		IPAddress: &ip,
	}
}

func TestAuditRepositoryRecord(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAuditRepository(mock)
	created := now(t)

	e := testEntry()
	mock.ExpectQuery("INSERT INTO audit_logs").
		WithArgs(e.LogCode, e.UserID, e.Action, e.Details, e.IPAddress).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("id-1", created))

	require.NoError(t, repo.Record(context.Background(), e))
	assert.Equal(t, "id-1", e.ID)
	assert.Equal(t, created, e.CreatedAt)
}

func TestAuditRepositoryRecordAnonymous(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAuditRepository(mock)

	e := &entity.AuditEntry{LogCode: "LOG-bbbb2222", Action: entity.ActionRegister, Details: "Registered USR-cccc3333"}
	mock.ExpectQuery("INSERT INTO audit_logs").
		WithArgs(e.LogCode, (*string)(nil), e.Action, e.Details, (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("id-2", now(t)))

	require.NoError(t, repo.Record(context.Background(), e))
}
