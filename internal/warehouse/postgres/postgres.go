// Package postgres implements the warehouse on PostgreSQL using pgx.
//
// Append loads a batch with the COPY protocol in a single statement, so a
// failed load leaves the table untouched. Replace runs TRUNCATE and COPY in
// one transaction.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walis/inventory-uploader/internal/warehouse"
)

// DBTX is the subset of pgx used by the store.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is a Postgres-backed warehouse.
type Store struct {
	db DBTX
}

var _ warehouse.Warehouse = (*Store)(nil)

// New wraps a pool (or transaction) as a warehouse.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// NewPool connects a pool from a connection URL and pool settings.
func NewPool(ctx context.Context, url string, configure func(*pgxpool.Config)) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse warehouse URL: %w", err)
	}
	if configure != nil {
		configure(poolConfig)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect warehouse: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates any missing warehouse tables. Existing tables are
// left as they are.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, l := range warehouse.Layouts() {
		if _, err := s.db.Exec(ctx, CreateTableSQL(l)); err != nil {
			return fmt.Errorf("create table %s: %w", l.Table, err)
		}
	}
	return nil
}

// Append implements warehouse.Sink.
func (s *Store) Append(ctx context.Context, batch *warehouse.Batch) error {
	if err := warehouse.Validate(batch); err != nil {
		return err
	}
	return copyRows(ctx, s.db, batch)
}

// Replace implements warehouse.Sink.
func (s *Store) Replace(ctx context.Context, batch *warehouse.Batch) error {
	if err := warehouse.Validate(batch); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+pgx.Identifier{batch.Table}.Sanitize()); err != nil {
		return fmt.Errorf("truncate %s: %w", batch.Table, err)
	}
	if err := copyRows(ctx, tx, batch); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Scan implements warehouse.Source.
func (s *Store) Scan(ctx context.Context, table string, columns []string) (*warehouse.Batch, error) {
	rows, err := s.db.Query(ctx, SelectSQL(table, columns))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	out := &warehouse.Batch{Table: table, Columns: append([]string(nil), columns...)}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read %s row: %w", table, err)
		}
		out.Rows = append(out.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return out, nil
}

type copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

func copyRows(ctx context.Context, db copier, batch *warehouse.Batch) error {
	if len(batch.Rows) == 0 {
		return nil
	}
	n, err := db.CopyFrom(ctx, pgx.Identifier{batch.Table}, batch.Columns, pgx.CopyFromRows(batch.Rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", batch.Table, err)
	}
	if n != int64(len(batch.Rows)) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", batch.Table, n, len(batch.Rows))
	}
	return nil
}

// CreateTableSQL renders the DDL for a layout.
func CreateTableSQL(l warehouse.Layout) string {
	defs := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		defs[i] = pgx.Identifier{c.Name}.Sanitize() + " " + columnType(c.Type) + " NOT NULL"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{l.Table}.Sanitize(), strings.Join(defs, ", "))
}

// SelectSQL renders a full-table projection.
func SelectSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), pgx.Identifier{table}.Sanitize())
}

func columnType(t warehouse.ColumnType) string {
	switch t {
	case warehouse.ColumnFloat:
		return "DOUBLE PRECISION"
	case warehouse.ColumnBool:
		return "BOOLEAN"
	case warehouse.ColumnTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}
