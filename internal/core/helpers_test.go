package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/walis/inventory-uploader/internal/warehouse"
)

var testNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func inventoryDef() TableDefinition {
	return TableDefinition{
		Info:   TableInfo{Key: KeyInventory, Label: "Inventory", Table: warehouse.TableInventory},
		Detect: DetectFirstMatch,
		FieldSpecs: []FieldSpec{
			{Name: "sku_id", Type: FieldText, Synonyms: []string{"sku_id", "sku", "product_id", "id", "item_id", "product_code"}},
			{Name: "name", Type: FieldText, Synonyms: []string{"name", "product_name", "item_name", "description", "title"}},
			{Name: "stock", Type: FieldNumeric, Synonyms: []string{"stock", "quantity", "quantity_on_hand", "inventory", "available"}},
			{Name: "last_updated", Type: FieldTimestamp, Synonyms: []string{"last_updated", "updated_at", "modified", "timestamp", "date"}},
		},
	}
}

func ordersDef() TableDefinition {
	return TableDefinition{
		Info:   TableInfo{Key: KeyOrders, Label: "Orders", Table: warehouse.TableOrders},
		Detect: DetectLastMatch,
		FieldSpecs: []FieldSpec{
			{Name: "order_id", Type: FieldText, Synonyms: []string{"order_id", "id", "order", "order_number"}},
			{Name: "sku_id", Type: FieldText, Synonyms: []string{"sku_id", "sku", "product_id", "item_id"}},
			{Name: "quantity", Type: FieldNumeric, Synonyms: []string{"quantity", "qty", "amount", "count"}},
			{Name: "order_date", Type: FieldTimestamp, Synonyms: []string{"order_date", "date", "created_at", "timestamp"}},
			{Name: "customer_id", Type: FieldText, Synonyms: []string{"customer_id", "customer", "buyer_id", "client_id"}},
		},
	}
}

// registerTestTables replaces the registry contents with the two dataset
// kinds for the duration of the test.
func registerTestTables(t *testing.T) {
	t.Helper()
	Clear()
	Register(inventoryDef())
	Register(ordersDef())
	t.Cleanup(Clear)
}

// recordingWarehouse wraps the in-memory warehouse, counting calls and
// optionally failing them.
type recordingWarehouse struct {
	*warehouse.Memory

	appends  []*warehouse.Batch
	replaces []*warehouse.Batch
	scans    []string

	appendErr  error
	replaceErr error
	scanErr    map[string]error
}

func newRecordingWarehouse() *recordingWarehouse {
	return &recordingWarehouse{Memory: warehouse.NewMemory(), scanErr: map[string]error{}}
}

func (w *recordingWarehouse) Append(ctx context.Context, b *warehouse.Batch) error {
	w.appends = append(w.appends, b)
	if w.appendErr != nil {
		return w.appendErr
	}
	return w.Memory.Append(ctx, b)
}

func (w *recordingWarehouse) Replace(ctx context.Context, b *warehouse.Batch) error {
	w.replaces = append(w.replaces, b)
	if w.replaceErr != nil {
		return w.replaceErr
	}
	return w.Memory.Replace(ctx, b)
}

func (w *recordingWarehouse) Scan(ctx context.Context, table string, columns []string) (*warehouse.Batch, error) {
	w.scans = append(w.scans, table)
	if err := w.scanErr[table]; err != nil {
		return nil, err
	}
	return w.Memory.Scan(ctx, table, columns)
}

func (w *recordingWarehouse) writes() int {
	return len(w.appends) + len(w.replaces)
}

func newTestService(t *testing.T) (*Service, *recordingWarehouse) {
	t.Helper()
	registerTestTables(t)
	wh := newRecordingWarehouse()
	return NewService(wh, Options{Clock: fixedClock}), wh
}

var errBackend = errors.New("backend unavailable")
