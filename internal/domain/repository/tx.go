package repository

import "context"

// TxManager wraps a unit of work in a single database transaction. Every
// repository call made with the context passed to fn joins that
// transaction; any error returned from fn rolls the whole unit back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
