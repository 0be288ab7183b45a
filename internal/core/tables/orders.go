package tables

import (
	"github.com/walis/inventory-uploader/internal/core"
	"github.com/walis/inventory-uploader/internal/warehouse"
)

func init() {
	registerOrders()
}

// Orders auto-detection is a single pass over the columns; a later column
// matching a field replaces the earlier one.
func registerOrders() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   core.KeyOrders,
			Label: "Orders",
			Table: warehouse.TableOrders,
		},
		Detect: core.DetectLastMatch,
		FieldSpecs: []core.FieldSpec{
			{Name: "order_id", Type: core.FieldText, Synonyms: []string{"order_id", "id", "order", "order_number"}},
			{Name: "sku_id", Type: core.FieldText, Synonyms: []string{"sku_id", "sku", "product_id", "item_id"}},
			{Name: "quantity", Type: core.FieldNumeric, Synonyms: []string{"quantity", "qty", "amount", "count"}},
			{Name: "order_date", Type: core.FieldTimestamp, Synonyms: []string{"order_date", "date", "created_at", "timestamp"}},
			{Name: "customer_id", Type: core.FieldText, Synonyms: []string{"customer_id", "customer", "buyer_id", "client_id"}},
		},
	})
}
