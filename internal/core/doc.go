// Package core provides the business logic for inventory and orders ingestion
// and the stockout report.
//
// This package contains all domain logic independent of any transport layer.
// It is used by the HTTP server, the stockctl CLI, and tests without
// modification. Storage is reached only through [warehouse.Warehouse].
//
// # Table Registry
//
// Dataset kinds are registered at init time using [Register]. Each
// [TableDefinition] lists its canonical fields in schema order, their types,
// the accepted source header synonyms, and the auto-detection strategy:
//
//	core.Register(core.TableDefinition{
//	    Info:   core.TableInfo{Key: "inventory", Label: "Inventory", Table: "inventory"},
//	    Detect: core.DetectFirstMatch,
//	    FieldSpecs: []core.FieldSpec{
//	        {Name: "sku_id", Type: core.FieldText, Synonyms: []string{"sku_id", "sku"}},
//	        {Name: "stock", Type: core.FieldNumeric, Synonyms: []string{"stock", "quantity"}},
//	    },
//	})
//
// # Ingestion
//
// [Service.Ingest] runs one upload through a fixed pipeline:
//
//  1. [CheckExtension] rejects anything that is not a .csv file
//  2. [ParseCSV] decodes the bytes into a [RawDataset]
//  3. [AutoDetect] or [ValidateMapping] resolves source columns to fields
//  4. [Coerce] converts text to warehouse values
//  5. A single warehouse Append commits the rows
//
// Any failure before step 5 leaves the warehouse untouched. An unresolved
// auto-detection returns a [MappingRequired] diagnostic instead of an error.
//
// # Stockouts
//
// [Service.CalculateStockouts] joins inventory against summed order demand
// and replaces the current_stockouts table. [Service.GetStockouts] reads the
// stored snapshot back.
//
// # Error Handling
//
// Failures are classified by [Kind] and matched with errors.Is against the
// Err* sentinels. [MapError] turns any error into a coded [UserMessage].
package core
