package postgres

import (
	"context"
	"fmt"

	"github.com/citygate/csrms/internal/domain/repository"
)

// TxManager runs a function inside one database transaction. The open
// transaction travels in the context, so every repository call made inside
// fn joins it; an error from fn rolls back everything written so far and
// the caller receives that single error.
type TxManager struct {
	db DB
}

func NewTxManager(db DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested units of work join the outer transaction.
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(withTx(ctx, tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

var _ repository.TxManager = (*TxManager)(nil)
