package core

// stockout.go derives the stockout report from committed inventory and orders.
//
// For every inventory row (left join, so SKUs without orders count zero
// demand), total ordered quantity is summed per sku_id across all orders.
// A row is a stockout when on-hand is strictly less than ordered demand.
// Inventory is append-only, so a SKU uploaded twice contributes two rows.

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/walis/inventory-uploader/internal/logging"
	"github.com/walis/inventory-uploader/internal/warehouse"
)

const noStockoutsMessage = "No stockouts found. All inventory levels are sufficient for current orders."

var (
	inventoryScanColumns = []string{"sku_id", "name", "stock", "last_updated"}
	ordersScanColumns    = []string{"sku_id", "quantity"}
)

// CalculateStockouts recomputes the stockout report. When at least one
// stockout exists the current_stockouts table is replaced with exactly the
// new records; when none exist the table is left untouched.
func (s *Service) CalculateStockouts(ctx context.Context) (*StockoutResult, error) {
	runID := uuid.New().String()
	logger := logging.WithFields(ctx, "run_id", runID)

	inventory, err := s.wh.Scan(ctx, warehouse.TableInventory, inventoryScanColumns)
	if err != nil {
		logger.Error("inventory scan failed", "error", err)
		return nil, sourceFailure(warehouse.TableInventory, err)
	}
	orders, err := s.wh.Scan(ctx, warehouse.TableOrders, ordersScanColumns)
	if err != nil {
		logger.Error("orders scan failed", "error", err)
		return nil, sourceFailure(warehouse.TableOrders, err)
	}

	records := computeStockouts(inventory, orders, s.now())

	if len(records) == 0 {
		logger.Info("stockout calculation complete", "inventory_rows", inventory.Len(), "stockouts", 0)
		return &StockoutResult{
			Message:       noStockoutsMessage,
			StockoutCount: 0,
			Stockouts:     []StockoutRecord{},
		}, nil
	}

	if err := s.wh.Replace(ctx, stockoutBatch(records)); err != nil {
		logger.Error("stockout replace failed", "error", err)
		return nil, sinkFailure(warehouse.TableStockouts, err)
	}

	logger.Info("stockout calculation complete",
		"inventory_rows", inventory.Len(),
		"order_rows", orders.Len(),
		"stockouts", len(records),
	)

	return &StockoutResult{
		Message:       fmt.Sprintf("Stockout calculation completed successfully. %d items found to be out of stock.", len(records)),
		StockoutCount: len(records),
		Stockouts:     records,
		TableUpdated:  warehouse.TableStockouts,
	}, nil
}

// GetStockouts returns the stored stockout snapshot ordered by remaining
// quantity. It never recomputes.
func (s *Service) GetStockouts(ctx context.Context) (*StockoutResult, error) {
	batch, err := s.wh.Scan(ctx, warehouse.TableStockouts, warehouse.StockoutsLayout.ColumnNames())
	if err != nil {
		logging.FromContext(ctx).Error("stockout scan failed", "error", err)
		return nil, sourceFailure(warehouse.TableStockouts, err)
	}

	records := make([]StockoutRecord, 0, batch.Len())
	for _, row := range batch.Rows {
		records = append(records, StockoutRecord{
			SKUID:                asString(row[0]),
			Name:                 asString(row[1]),
			QuantityOnHand:       asFloat(row[2]),
			TotalOrderedQuantity: asFloat(row[3]),
			RemainingQuantity:    asFloat(row[4]),
			IsStockout:           asBool(row[5]),
			LastUpdated:          asTime(row[6]),
			CalculationTimestamp: asTime(row[7]),
		})
	}
	sortByRemaining(records)

	return &StockoutResult{
		StockoutCount: len(records),
		Stockouts:     records,
	}, nil
}

// computeStockouts joins inventory rows (sku_id, name, stock, last_updated)
// against order rows (sku_id, quantity). All records share calculatedAt.
func computeStockouts(inventory, orders *warehouse.Batch, calculatedAt time.Time) []StockoutRecord {
	demand := make(map[string]float64)
	for _, row := range orders.Rows {
		demand[asString(row[0])] += asFloat(row[1])
	}

	var records []StockoutRecord
	for _, row := range inventory.Rows {
		sku := asString(row[0])
		onHand := asFloat(row[2])
		ordered := demand[sku]
		if !(onHand < ordered) {
			continue
		}
		records = append(records, StockoutRecord{
			SKUID:                sku,
			Name:                 asString(row[1]),
			QuantityOnHand:       onHand,
			TotalOrderedQuantity: ordered,
			RemainingQuantity:    onHand - ordered,
			IsStockout:           true,
			LastUpdated:          asTime(row[3]),
			CalculationTimestamp: calculatedAt,
		})
	}

	sortByRemaining(records)
	return records
}

func sortByRemaining(records []StockoutRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RemainingQuantity < records[j].RemainingQuantity
	})
}

func stockoutBatch(records []StockoutRecord) *warehouse.Batch {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{
			r.SKUID,
			r.Name,
			r.QuantityOnHand,
			r.TotalOrderedQuantity,
			r.RemainingQuantity,
			r.IsStockout,
			r.LastUpdated,
			r.CalculationTimestamp,
		}
	}
	return &warehouse.Batch{
		Table:   warehouse.TableStockouts,
		Columns: warehouse.StockoutsLayout.ColumnNames(),
		Rows:    rows,
	}
}

// Warehouse drivers return native column types; these helpers normalize the
// few shapes they produce.

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func asFloat(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case int:
		f = float64(x)
	case string:
		f, _ = strconv.ParseFloat(x, 64)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asTime(v any) time.Time {
	t, _ := v.(time.Time)
	return t
}
