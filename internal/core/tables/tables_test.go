package tables_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/walis/inventory-uploader/internal/core"
	_ "github.com/walis/inventory-uploader/internal/core/tables"
	"github.com/walis/inventory-uploader/internal/warehouse"
)

func TestDefinitionsRegistered(t *testing.T) {
	tests := []struct {
		key      string
		table    string
		detect   core.DetectStrategy
		required []string
	}{
		{core.KeyInventory, warehouse.TableInventory, core.DetectFirstMatch, []string{"sku_id", "name", "stock", "last_updated"}},
		{core.KeyOrders, warehouse.TableOrders, core.DetectLastMatch, []string{"order_id", "sku_id", "quantity", "order_date", "customer_id"}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			def, ok := core.Get(tt.key)
			if !ok {
				t.Fatalf("%s not registered", tt.key)
			}
			if def.Info.Table != tt.table {
				t.Errorf("Table = %q, want %q", def.Info.Table, tt.table)
			}
			if def.Detect != tt.detect {
				t.Errorf("Detect = %v, want %v", def.Detect, tt.detect)
			}
			if got := def.Required(); !reflect.DeepEqual(got, tt.required) {
				t.Errorf("Required() = %v, want %v", got, tt.required)
			}
		})
	}
}

// Each definition must line up with its warehouse layout, column for column.
func TestDefinitionsMatchLayouts(t *testing.T) {
	for _, def := range core.All() {
		layout, ok := warehouse.LayoutFor(def.Info.Table)
		if !ok {
			t.Errorf("%s: no layout for table %q", def.Info.Key, def.Info.Table)
			continue
		}
		if !reflect.DeepEqual(layout.ColumnNames(), def.Required()) {
			t.Errorf("%s: layout columns %v, fields %v", def.Info.Key, layout.ColumnNames(), def.Required())
		}
	}
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := core.NewService(warehouse.NewMemory(), core.Options{Clock: func() time.Time { return now }})

	inventory := "Product_Code,Title,Available,Modified\n" +
		"A1,Widget,10,2024-05-01\n" +
		"A2,Gadget,3,2024-05-01\n" +
		"A3,Gizmo,0,2024-05-01\n"
	if _, err := svc.IngestInventory(ctx, []byte(inventory), "inventory.csv", ""); err != nil {
		t.Fatalf("IngestInventory: %v", err)
	}

	orders := "Order_Number,SKU,Qty,Created_At,Client_ID\n" +
		"O1,A1,10,2024-05-02,C1\n" +
		"O2,A2,2,2024-05-02,C2\n" +
		"O3,A2,2,2024-05-03,C3\n" +
		"O4,A3,5,2024-05-03,C1\n"
	if _, err := svc.IngestOrders(ctx, []byte(orders), "orders.csv", ""); err != nil {
		t.Fatalf("IngestOrders: %v", err)
	}

	res, err := svc.CalculateStockouts(ctx)
	if err != nil {
		t.Fatalf("CalculateStockouts: %v", err)
	}

	// A1 is exactly covered; A2 is one short; A3 is five short.
	if res.StockoutCount != 2 {
		t.Fatalf("StockoutCount = %d, want 2", res.StockoutCount)
	}
	if res.Stockouts[0].SKUID != "A3" || res.Stockouts[0].RemainingQuantity != -5 {
		t.Errorf("first = %+v, want A3 at -5", res.Stockouts[0])
	}
	if res.Stockouts[1].SKUID != "A2" || res.Stockouts[1].RemainingQuantity != -1 {
		t.Errorf("second = %+v, want A2 at -1", res.Stockouts[1])
	}

	snap, err := svc.GetStockouts(ctx)
	if err != nil {
		t.Fatalf("GetStockouts: %v", err)
	}
	if !reflect.DeepEqual(snap.Stockouts, res.Stockouts) {
		t.Errorf("snapshot = %+v, want %+v", snap.Stockouts, res.Stockouts)
	}
}
