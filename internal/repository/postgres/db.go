package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx
// Repos work the same over a pool or inside a transaction
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}
