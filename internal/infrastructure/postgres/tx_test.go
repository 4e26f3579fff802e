package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	mock := newMockPool(t)
	mgr := NewTxManager(mock)
	audit := NewAuditRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO audit_logs").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("id-1", now(t)))
	mock.ExpectCommit()

	err := mgr.WithinTx(context.Background(), func(ctx context.Context) error {
		return audit.Record(ctx, testEntry())
	})
	require.NoError(t, err)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	mock := newMockPool(t)
	mgr := NewTxManager(mock)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := mgr.WithinTx(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestWithinTxNestedJoinsOuter(t *testing.T) {
	mock := newMockPool(t)
	mgr := NewTxManager(mock)

	// one Begin/Commit pair even with a nested unit of work
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := mgr.WithinTx(context.Background(), func(ctx context.Context) error {
		return mgr.WithinTx(ctx, func(ctx context.Context) error {
			return nil
		})
	})
	require.NoError(t, err)
}

func TestWithinTxNestedErrorRollsBackOuter(t *testing.T) {
	mock := newMockPool(t)
	mgr := NewTxManager(mock)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := mgr.WithinTx(context.Background(), func(ctx context.Context) error {
		return mgr.WithinTx(ctx, func(ctx context.Context) error {
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)
}
