package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/walis/inventory-uploader/internal/warehouse"
)

var stockedAt = time.Date(2024, 5, 30, 8, 0, 0, 0, time.UTC)

func seedInventory(t *testing.T, wh *recordingWarehouse, rows ...[]any) {
	t.Helper()
	err := wh.Memory.Append(context.Background(), &warehouse.Batch{
		Table:   warehouse.TableInventory,
		Columns: warehouse.InventoryLayout.ColumnNames(),
		Rows:    rows,
	})
	if err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
}

func seedOrders(t *testing.T, wh *recordingWarehouse, rows ...[]any) {
	t.Helper()
	err := wh.Memory.Append(context.Background(), &warehouse.Batch{
		Table:   warehouse.TableOrders,
		Columns: warehouse.OrdersLayout.ColumnNames(),
		Rows:    rows,
	})
	if err != nil {
		t.Fatalf("seed orders: %v", err)
	}
}

func inv(sku string, stock float64) []any {
	return []any{sku, "item " + sku, stock, stockedAt}
}

func order(id, sku string, qty float64) []any {
	return []any{id, sku, qty, stockedAt, "C1"}
}

func skus(records []StockoutRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.SKUID
	}
	return out
}

func TestCalculateStockouts_Threshold(t *testing.T) {
	tests := []struct {
		name      string
		stock     float64
		orders    []float64
		wantCount int
		wantRem   float64
	}{
		{"equal demand is not a stockout", 10, []float64{10}, 0, 0},
		{"one over is a stockout", 10, []float64{11}, 1, -1},
		{"demand summed across orders", 10, []float64{4, 4, 4}, 1, -2},
		{"no orders", 0, nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, wh := newTestService(t)
			seedInventory(t, wh, inv("A1", tt.stock))
			for i, q := range tt.orders {
				seedOrders(t, wh, order(string(rune('a'+i)), "A1", q))
			}

			res, err := svc.CalculateStockouts(context.Background())
			if err != nil {
				t.Fatalf("CalculateStockouts() error = %v", err)
			}
			if res.StockoutCount != tt.wantCount || len(res.Stockouts) != tt.wantCount {
				t.Fatalf("stockouts = %d (%d records), want %d", res.StockoutCount, len(res.Stockouts), tt.wantCount)
			}
			if tt.wantCount > 0 && res.Stockouts[0].RemainingQuantity != tt.wantRem {
				t.Errorf("remaining = %v, want %v", res.Stockouts[0].RemainingQuantity, tt.wantRem)
			}
		})
	}
}

func TestCalculateStockouts_Result(t *testing.T) {
	svc, wh := newTestService(t)
	seedInventory(t, wh, inv("A1", 5), inv("A2", 1), inv("A3", 3), inv("A4", 100))
	seedOrders(t, wh,
		order("o1", "A1", 6),  // -1
		order("o2", "A2", 6),  // -5
		order("o3", "A3", 5),  // -2
		order("o4", "A4", 1),  // fine
		order("o5", "ZZ", 50), // no inventory row
	)

	res, err := svc.CalculateStockouts(context.Background())
	if err != nil {
		t.Fatalf("CalculateStockouts() error = %v", err)
	}

	if got := skus(res.Stockouts); !reflect.DeepEqual(got, []string{"A2", "A3", "A1"}) {
		t.Errorf("order = %v, want [A2 A3 A1]", got)
	}
	if res.Message != "Stockout calculation completed successfully. 3 items found to be out of stock." {
		t.Errorf("Message = %q", res.Message)
	}
	if res.TableUpdated != warehouse.TableStockouts {
		t.Errorf("TableUpdated = %q, want %q", res.TableUpdated, warehouse.TableStockouts)
	}

	first := res.Stockouts[0]
	want := StockoutRecord{
		SKUID:                "A2",
		Name:                 "item A2",
		QuantityOnHand:       1,
		TotalOrderedQuantity: 6,
		RemainingQuantity:    -5,
		IsStockout:           true,
		LastUpdated:          stockedAt,
		CalculationTimestamp: testNow,
	}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("record = %+v, want %+v", first, want)
	}
	for _, r := range res.Stockouts {
		if !r.CalculationTimestamp.Equal(testNow) {
			t.Errorf("%s calculation timestamp = %v, want %v", r.SKUID, r.CalculationTimestamp, testNow)
		}
	}

	if len(wh.replaces) != 1 {
		t.Fatalf("Replace calls = %d, want 1", len(wh.replaces))
	}
	if got := wh.replaces[0].Len(); got != 3 {
		t.Errorf("replaced rows = %d, want 3", got)
	}
	if !reflect.DeepEqual(wh.scans, []string{warehouse.TableInventory, warehouse.TableOrders}) {
		t.Errorf("scans = %v, want inventory then orders", wh.scans)
	}
}

func TestCalculateStockouts_StableOrder(t *testing.T) {
	svc, wh := newTestService(t)
	seedInventory(t, wh, inv("B", 0), inv("A", 0), inv("C", 0))
	seedOrders(t, wh, order("1", "A", 2), order("2", "B", 2), order("3", "C", 2))

	res, err := svc.CalculateStockouts(context.Background())
	if err != nil {
		t.Fatalf("CalculateStockouts() error = %v", err)
	}
	if got := skus(res.Stockouts); !reflect.DeepEqual(got, []string{"B", "A", "C"}) {
		t.Errorf("order = %v, want inventory order [B A C] for ties", got)
	}
}

func TestCalculateStockouts_DuplicateInventoryRows(t *testing.T) {
	svc, wh := newTestService(t)
	seedInventory(t, wh, inv("A1", 1), inv("A1", 2))
	seedOrders(t, wh, order("o1", "A1", 5))

	res, err := svc.CalculateStockouts(context.Background())
	if err != nil {
		t.Fatalf("CalculateStockouts() error = %v", err)
	}
	if res.StockoutCount != 2 {
		t.Errorf("stockouts = %d, want one per inventory row", res.StockoutCount)
	}
}

func TestCalculateStockouts_NoneKeepsPreviousSnapshot(t *testing.T) {
	svc, wh := newTestService(t)
	ctx := context.Background()
	seedInventory(t, wh, inv("A1", 1))
	seedOrders(t, wh, order("o1", "A1", 5))

	if _, err := svc.CalculateStockouts(ctx); err != nil {
		t.Fatalf("first CalculateStockouts() error = %v", err)
	}

	// Restock so nothing is short any more.
	if err := wh.Memory.Replace(ctx, &warehouse.Batch{
		Table:   warehouse.TableInventory,
		Columns: warehouse.InventoryLayout.ColumnNames(),
		Rows:    [][]any{inv("A1", 1000)},
	}); err != nil {
		t.Fatalf("restock: %v", err)
	}

	res, err := svc.CalculateStockouts(ctx)
	if err != nil {
		t.Fatalf("second CalculateStockouts() error = %v", err)
	}
	if res.Message != "No stockouts found. All inventory levels are sufficient for current orders." {
		t.Errorf("Message = %q", res.Message)
	}
	if res.StockoutCount != 0 || res.Stockouts == nil || len(res.Stockouts) != 0 {
		t.Errorf("result = %+v, want zero stockouts with an empty list", res)
	}
	if res.TableUpdated != "" {
		t.Errorf("TableUpdated = %q, want empty", res.TableUpdated)
	}
	if len(wh.replaces) != 1 {
		t.Errorf("Replace calls = %d, want only the first run's", len(wh.replaces))
	}

	got, err := svc.GetStockouts(ctx)
	if err != nil {
		t.Fatalf("GetStockouts() error = %v", err)
	}
	if got.StockoutCount != 1 || got.Stockouts[0].SKUID != "A1" {
		t.Errorf("snapshot = %+v, want the first run's A1 record", got)
	}
}

func TestGetStockouts(t *testing.T) {
	svc, wh := newTestService(t)
	ctx := context.Background()
	seedInventory(t, wh, inv("A1", 5), inv("A2", 1), inv("A3", 3))
	seedOrders(t, wh, order("o1", "A1", 6), order("o2", "A2", 6), order("o3", "A3", 5))

	if _, err := svc.CalculateStockouts(ctx); err != nil {
		t.Fatalf("CalculateStockouts() error = %v", err)
	}

	// New orders after the calculation must not show up until recomputed.
	seedOrders(t, wh, order("o4", "A1", 100))
	replaces := len(wh.replaces)

	res, err := svc.GetStockouts(ctx)
	if err != nil {
		t.Fatalf("GetStockouts() error = %v", err)
	}
	if got := skus(res.Stockouts); !reflect.DeepEqual(got, []string{"A2", "A3", "A1"}) {
		t.Errorf("order = %v, want [A2 A3 A1]", got)
	}
	if res.Stockouts[2].RemainingQuantity != -1 {
		t.Errorf("A1 remaining = %v, want -1 from the stored snapshot", res.Stockouts[2].RemainingQuantity)
	}
	if res.Message != "" || res.TableUpdated != "" {
		t.Errorf("GetStockouts should not set message or table: %+v", res)
	}
	if len(wh.replaces) != replaces {
		t.Error("GetStockouts must not write")
	}
}

func TestGetStockouts_Empty(t *testing.T) {
	svc, _ := newTestService(t)
	res, err := svc.GetStockouts(context.Background())
	if err != nil {
		t.Fatalf("GetStockouts() error = %v", err)
	}
	if res.StockoutCount != 0 || res.Stockouts == nil {
		t.Errorf("result = %+v, want zero with an empty list", res)
	}
}

func TestCalculateStockouts_Failures(t *testing.T) {
	t.Run("inventory scan", func(t *testing.T) {
		svc, wh := newTestService(t)
		wh.scanErr[warehouse.TableInventory] = errBackend
		_, err := svc.CalculateStockouts(context.Background())
		if !errors.Is(err, ErrSourceFailure) || !errors.Is(err, errBackend) {
			t.Errorf("error = %v, want SourceFailure wrapping the cause", err)
		}
		if wh.writes() != 0 {
			t.Errorf("writes = %d, want 0", wh.writes())
		}
	})

	t.Run("orders scan", func(t *testing.T) {
		svc, wh := newTestService(t)
		wh.scanErr[warehouse.TableOrders] = errBackend
		_, err := svc.CalculateStockouts(context.Background())
		if !errors.Is(err, ErrSourceFailure) {
			t.Errorf("error = %v, want SourceFailure", err)
		}
		if wh.writes() != 0 {
			t.Errorf("writes = %d, want 0", wh.writes())
		}
	})

	t.Run("replace", func(t *testing.T) {
		svc, wh := newTestService(t)
		seedInventory(t, wh, inv("A1", 0))
		seedOrders(t, wh, order("o1", "A1", 1))
		wh.replaceErr = errBackend
		_, err := svc.CalculateStockouts(context.Background())
		if !errors.Is(err, ErrSinkFailure) || !errors.Is(err, errBackend) {
			t.Errorf("error = %v, want SinkFailure wrapping the cause", err)
		}
	})

	t.Run("get", func(t *testing.T) {
		svc, wh := newTestService(t)
		wh.scanErr[warehouse.TableStockouts] = errBackend
		_, err := svc.GetStockouts(context.Background())
		if !errors.Is(err, ErrSourceFailure) {
			t.Errorf("error = %v, want SourceFailure", err)
		}
	})
}
