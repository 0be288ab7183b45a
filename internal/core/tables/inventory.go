package tables

import (
	"github.com/walis/inventory-uploader/internal/core"
	"github.com/walis/inventory-uploader/internal/warehouse"
)

func init() {
	registerInventory()
}

// Inventory auto-detection is first-match per field, fields taken in this order.
func registerInventory() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   core.KeyInventory,
			Label: "Inventory",
			Table: warehouse.TableInventory,
		},
		Detect: core.DetectFirstMatch,
		FieldSpecs: []core.FieldSpec{
			{
				Name:     "sku_id",
				Type:     core.FieldText,
				Synonyms: []string{"sku_id", "sku", "product_id", "id", "item_id", "product_code"},
			},
			{
				Name:     "name",
				Type:     core.FieldText,
				Synonyms: []string{"name", "product_name", "item_name", "description", "title"},
			},
			{
				Name:     "stock",
				Type:     core.FieldNumeric,
				Synonyms: []string{"stock", "quantity", "quantity_on_hand", "inventory", "available"},
			},
			{
				Name:     "last_updated",
				Type:     core.FieldTimestamp,
				Synonyms: []string{"last_updated", "updated_at", "modified", "timestamp", "date"},
			},
		},
	})
}
