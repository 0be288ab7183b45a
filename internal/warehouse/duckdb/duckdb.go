// Package duckdb implements the warehouse on an embedded DuckDB database,
// for single-node deployments and local development without a Postgres server.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/walis/inventory-uploader/internal/warehouse"
)

// Store is a DuckDB-backed warehouse.
type Store struct {
	db *sql.DB
}

var _ warehouse.Warehouse = (*Store)(nil)

// Open opens (or creates) the database at path. An empty path opens an
// in-process database that lives as long as the Store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates any missing warehouse tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, l := range warehouse.Layouts() {
		if _, err := s.db.ExecContext(ctx, CreateTableSQL(l)); err != nil {
			return fmt.Errorf("create table %s: %w", l.Table, err)
		}
	}
	return nil
}

// Append implements warehouse.Sink. All rows are inserted in one transaction.
func (s *Store) Append(ctx context.Context, batch *warehouse.Batch) error {
	return s.load(ctx, batch, false)
}

// Replace implements warehouse.Sink.
func (s *Store) Replace(ctx context.Context, batch *warehouse.Batch) error {
	return s.load(ctx, batch, true)
}

func (s *Store) load(ctx context.Context, batch *warehouse.Batch, truncate bool) error {
	if err := warehouse.Validate(batch); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if truncate {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+quote(batch.Table)); err != nil {
			return fmt.Errorf("truncate %s: %w", batch.Table, err)
		}
	}

	if len(batch.Rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, InsertSQL(batch.Table, batch.Columns))
		if err != nil {
			return fmt.Errorf("prepare insert into %s: %w", batch.Table, err)
		}
		defer stmt.Close()

		args := make([]any, len(batch.Columns))
		for r, row := range batch.Rows {
			for i, v := range row {
				if ts, ok := v.(time.Time); ok {
					v = ts.UTC()
				}
				args[i] = v
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("insert into %s row %d: %w", batch.Table, r, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Scan implements warehouse.Source.
func (s *Store) Scan(ctx context.Context, table string, columns []string) (*warehouse.Batch, error) {
	rows, err := s.db.QueryContext(ctx, SelectSQL(table, columns))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	out := &warehouse.Batch{Table: table, Columns: append([]string(nil), columns...)}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("read %s row: %w", table, err)
		}
		out.Rows = append(out.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return out, nil
}

// CreateTableSQL renders the DDL for a layout.
func CreateTableSQL(l warehouse.Layout) string {
	defs := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		defs[i] = quote(c.Name) + " " + columnType(c.Type) + " NOT NULL"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(l.Table), strings.Join(defs, ", "))
}

// InsertSQL renders a positional INSERT for the given columns.
func InsertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quote(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

// SelectSQL renders a full-table projection.
func SelectSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quote(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), quote(table))
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func columnType(t warehouse.ColumnType) string {
	switch t {
	case warehouse.ColumnFloat:
		return "DOUBLE"
	case warehouse.ColumnBool:
		return "BOOLEAN"
	case warehouse.ColumnTimestamp:
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}
