package warehouse

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Warehouse. It backs tests and the "memory" driver.
// Every table in Layouts exists from construction and starts empty.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]*memTable
}

type memTable struct {
	layout Layout
	rows   [][]any // stored in layout column order
}

// NewMemory creates an empty in-memory warehouse.
func NewMemory() *Memory {
	m := &Memory{tables: make(map[string]*memTable)}
	for _, l := range Layouts() {
		m.tables[l.Table] = &memTable{layout: l}
	}
	return m
}

// Append implements Sink.
func (m *Memory) Append(ctx context.Context, batch *Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, err := m.toLayout(batch)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tables[batch.Table]
	t.rows = append(t.rows, rows...)
	return nil
}

// Replace implements Sink.
func (m *Memory) Replace(ctx context.Context, batch *Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, err := m.toLayout(batch)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[batch.Table].rows = rows
	return nil
}

// Scan implements Source.
func (m *Memory) Scan(ctx context.Context, table string, columns []string) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("table %q not found", table)
	}

	pos := make([]int, len(columns))
	layoutIdx := make(map[string]int, len(t.layout.Columns))
	for i, c := range t.layout.Columns {
		layoutIdx[c.Name] = i
	}
	for i, name := range columns {
		p, ok := layoutIdx[name]
		if !ok {
			return nil, fmt.Errorf("table %s: column %q not found", table, name)
		}
		pos[i] = p
	}

	out := &Batch{
		Table:   table,
		Columns: append([]string(nil), columns...),
		Rows:    make([][]any, len(t.rows)),
	}
	for r, row := range t.rows {
		projected := make([]any, len(pos))
		for i, p := range pos {
			projected[i] = row[p]
		}
		out.Rows[r] = projected
	}
	return out, nil
}

// toLayout validates the batch and reorders its rows into layout column
// order, copying so later mutation by the caller cannot alter stored data.
func (m *Memory) toLayout(batch *Batch) ([][]any, error) {
	if err := Validate(batch); err != nil {
		return nil, err
	}
	layout, _ := LayoutFor(batch.Table)
	if len(batch.Columns) != len(layout.Columns) {
		return nil, fmt.Errorf("table %s: batch has %d columns, want %d", batch.Table, len(batch.Columns), len(layout.Columns))
	}

	idx := batch.Index()
	rows := make([][]any, len(batch.Rows))
	for r, row := range batch.Rows {
		ordered := make([]any, len(layout.Columns))
		for i, c := range layout.Columns {
			ordered[i] = row[idx[c.Name]]
		}
		rows[r] = ordered
	}
	return rows, nil
}
