package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citygate/csrms/internal/domain/entity"
)

var requestOwnerRows = []string{"id", "request_id", "citizen_id", "title", "description",
	"category", "status", "priority", "location", "image_path",
	"submission_date", "resolution_date",
	"owner_user_id", "owner_email", "notification_preference"}

func TestRequestRepositoryGetByCode(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRequestRepository(mock)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM service_requests sr").
		WithArgs("REQ-aaaa1111").
		WillReturnRows(pgxmock.NewRows(requestOwnerRows).
			AddRow("id-1", "REQ-aaaa1111", "cit-1", "Streetlight out", "Dark for a week",
				"Street Lighting", "Pending", "Medium", "Main St", nil,
				now, nil,
				"user-1", "owner@example.com", "Email"))

	rw, err := repo.GetByCode(context.Background(), "REQ-aaaa1111")
	require.NoError(t, err)
	require.NotNil(t, rw)
	assert.Equal(t, entity.StatusPending, rw.Status)
	assert.Equal(t, "user-1", rw.OwnerUserID)
	assert.Equal(t, entity.PreferEmail, rw.OwnerPref)
	assert.Nil(t, rw.ResolutionDate)
}

func TestRequestRepositoryGetByCodeMissing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRequestRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM service_requests sr").
		WithArgs("REQ-missing0").
		WillReturnError(pgx.ErrNoRows)

	rw, err := repo.GetByCode(context.Background(), "REQ-missing0")
	require.NoError(t, err)
	assert.Nil(t, rw)
}

func TestRequestRepositoryUpdateStatus(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRequestRepository(mock)
	resolvedAt := time.Now()

	mock.ExpectExec("UPDATE service_requests").
		WithArgs(entity.StatusResolved, &resolvedAt, "id-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), "id-1", entity.StatusResolved, &resolvedAt))

	// non-resolving transition carries a nil timestamp so COALESCE keeps
	// the recorded resolution date
	mock.ExpectExec("UPDATE service_requests").
		WithArgs(entity.StatusInProgress, (*time.Time)(nil), "id-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), "id-1", entity.StatusInProgress, nil))
}

func TestRequestRepositoryCloseEligible(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRequestRepository(mock)
	now := time.Now()

	mock.ExpectQuery("UPDATE service_requests sr").
		WithArgs("REQ-aaaa1111", now).
		WillReturnRows(pgxmock.NewRows(requestOwnerRows).
			AddRow("id-1", "REQ-aaaa1111", "cit-1", "Streetlight out", "Dark for a week",
				"Street Lighting", "Closed", "Medium", "Main St", nil,
				now.Add(-48*time.Hour), &now,
				"user-1", "owner@example.com", "Email"))

	rw, err := repo.CloseEligible(context.Background(), "REQ-aaaa1111", now)
	require.NoError(t, err)
	require.NotNil(t, rw)
	assert.Equal(t, entity.StatusClosed, rw.Status)
}

func TestRequestRepositoryCloseEligibleAlreadyClosed(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRequestRepository(mock)
	now := time.Now()

	// the guarded UPDATE matches no row, which the caller reads as
	// "missing or not eligible"
	mock.ExpectQuery("UPDATE service_requests sr").
		WithArgs("REQ-aaaa1111", now).
		WillReturnError(pgx.ErrNoRows)

	rw, err := repo.CloseEligible(context.Background(), "REQ-aaaa1111", now)
	require.NoError(t, err)
	assert.Nil(t, rw)
}

func TestRequestRepositoryStatusCounts(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRequestRepository(mock)

	mock.ExpectQuery("SELECT").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"total", "pending", "in_progress", "resolved", "rejected"}).
			AddRow(5, 1, 1, 2, 1))

	sc, err := repo.StatusCounts(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, sc.Total)
	assert.Equal(t, 2, sc.Resolved)
}
