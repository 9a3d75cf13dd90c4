package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Repositories accept NoTX (nil) for the
// non-transactional path; the postgres implementation passes a pgx.Tx.
type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside a database transaction. Row locks taken
// by repository *ForUpdate methods live until fn returns.
//
//	tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
//		a, err := activities.FindByIDForUpdate(ctx, tx, id)
//		...
//	})
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
