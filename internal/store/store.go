package store

import (
	"context"

	"firerisk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the part of *pgxpool.Pool the repositories need. It also satisfies
// pgxscan.Querier.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// live reports types.ErrDatabaseUnavailable for a missing connection instead of
// letting reads come back empty.
func live(db DBTX) error {
	if db == nil {
		return types.ErrDatabaseUnavailable
	}
	if pool, ok := db.(*pgxpool.Pool); ok && pool == nil {
		return types.ErrDatabaseUnavailable
	}
	return nil
}
