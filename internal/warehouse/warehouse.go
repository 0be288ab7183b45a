// Package warehouse defines the table store that ingested datasets are loaded
// into and the stockout report is read from.
//
// The store is a black box to the rest of the application: it accepts whole
// batches under one of two load dispositions (append, or truncate-and-replace)
// and returns whole tables on scan. Concurrency semantics between callers
// (append ordering, racing replaces) belong to the implementation.
package warehouse

import (
	"context"
	"fmt"
	"time"
)

// Table names.
const (
	TableInventory = "inventory"
	TableOrders    = "orders"
	TableStockouts = "current_stockouts"
)

// ColumnType is the storage type of a warehouse column.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnFloat
	ColumnBool
	ColumnTimestamp
)

// String returns the lowercase type name.
func (t ColumnType) String() string {
	switch t {
	case ColumnText:
		return "text"
	case ColumnFloat:
		return "float"
	case ColumnBool:
		return "bool"
	case ColumnTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// Column describes one column of a table layout.
type Column struct {
	Name string
	Type ColumnType
}

// Layout is the fixed column set of a warehouse table.
type Layout struct {
	Table   string
	Columns []Column
}

// ColumnNames returns the layout's column names in order.
func (l Layout) ColumnNames() []string {
	names := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (l Layout) Column(name string) (Column, bool) {
	for _, c := range l.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Layouts of the three tables the application owns.
var (
	InventoryLayout = Layout{
		Table: TableInventory,
		Columns: []Column{
			{Name: "sku_id", Type: ColumnText},
			{Name: "name", Type: ColumnText},
			{Name: "stock", Type: ColumnFloat},
			{Name: "last_updated", Type: ColumnTimestamp},
		},
	}

	OrdersLayout = Layout{
		Table: TableOrders,
		Columns: []Column{
			{Name: "order_id", Type: ColumnText},
			{Name: "sku_id", Type: ColumnText},
			{Name: "quantity", Type: ColumnFloat},
			{Name: "order_date", Type: ColumnTimestamp},
			{Name: "customer_id", Type: ColumnText},
		},
	}

	StockoutsLayout = Layout{
		Table: TableStockouts,
		Columns: []Column{
			{Name: "sku_id", Type: ColumnText},
			{Name: "name", Type: ColumnText},
			{Name: "quantity_on_hand", Type: ColumnFloat},
			{Name: "total_ordered_quantity", Type: ColumnFloat},
			{Name: "remaining_quantity", Type: ColumnFloat},
			{Name: "is_stockout", Type: ColumnBool},
			{Name: "last_updated", Type: ColumnTimestamp},
			{Name: "calculation_timestamp", Type: ColumnTimestamp},
		},
	}
)

// Layouts returns every table layout, in creation order.
func Layouts() []Layout {
	return []Layout{InventoryLayout, OrdersLayout, StockoutsLayout}
}

// LayoutFor returns the layout of the named table.
func LayoutFor(table string) (Layout, bool) {
	for _, l := range Layouts() {
		if l.Table == table {
			return l, true
		}
	}
	return Layout{}, false
}

// Batch is a rectangular set of typed rows bound for, or read from, one table.
// Values are string, float64, bool or time.Time, matching the column types.
type Batch struct {
	Table   string
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

// Index returns the position of each column name.
func (b *Batch) Index() map[string]int {
	idx := make(map[string]int, len(b.Columns))
	for i, c := range b.Columns {
		idx[c] = i
	}
	return idx
}

// Sink loads batches into tables.
type Sink interface {
	// Append adds the batch's rows to the table under append disposition.
	Append(ctx context.Context, batch *Batch) error
	// Replace truncates the table and loads the batch as its full contents.
	Replace(ctx context.Context, batch *Batch) error
}

// Source reads tables.
type Source interface {
	// Scan returns every row of the table projected onto columns.
	Scan(ctx context.Context, table string, columns []string) (*Batch, error)
}

// Warehouse is both a Sink and a Source.
type Warehouse interface {
	Sink
	Source
}

// Validate checks that a batch matches its table layout: known table, known
// columns, and values of the column's type.
func Validate(b *Batch) error {
	layout, ok := LayoutFor(b.Table)
	if !ok {
		return fmt.Errorf("unknown table %q", b.Table)
	}

	cols := make([]Column, len(b.Columns))
	seen := make(map[string]bool, len(b.Columns))
	for i, name := range b.Columns {
		c, ok := layout.Column(name)
		if !ok {
			return fmt.Errorf("table %s: unknown column %q", b.Table, name)
		}
		if seen[name] {
			return fmt.Errorf("table %s: duplicate column %q", b.Table, name)
		}
		seen[name] = true
		cols[i] = c
	}

	for r, row := range b.Rows {
		if len(row) != len(cols) {
			return fmt.Errorf("table %s: row %d has %d values, want %d", b.Table, r, len(row), len(cols))
		}
		for i, v := range row {
			if !matchesType(v, cols[i].Type) {
				return fmt.Errorf("table %s: row %d column %s: %T is not %s", b.Table, r, cols[i].Name, v, cols[i].Type)
			}
		}
	}

	return nil
}

func matchesType(v any, t ColumnType) bool {
	switch t {
	case ColumnText:
		_, ok := v.(string)
		return ok
	case ColumnFloat:
		_, ok := v.(float64)
		return ok
	case ColumnBool:
		_, ok := v.(bool)
		return ok
	case ColumnTimestamp:
		_, ok := v.(time.Time)
		return ok
	}
	return false
}
