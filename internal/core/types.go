package core

import "time"

// FieldType represents the canonical type of a field, which selects its
// coercion rule.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
	FieldTimestamp
)

// FieldSpec defines one canonical field of a table.
type FieldSpec struct {
	Name     string    // Canonical field name, also the warehouse column
	Type     FieldType // Selects the coercion rule
	Synonyms []string  // Accepted source headers, compared case-insensitively
}

// DetectStrategy selects how auto-detection resolves several columns
// matching the same canonical field.
type DetectStrategy int

const (
	// DetectFirstMatch scans the columns once per field, in field order, and
	// keeps the first matching column.
	DetectFirstMatch DetectStrategy = iota

	// DetectLastMatch makes a single left-to-right pass over the columns,
	// testing each against every field; a later match overwrites an earlier one.
	DetectLastMatch
)

// TableInfo contains identifying information about a table.
type TableInfo struct {
	Key   string // Dataset kind: "inventory", "orders"
	Label string // Display name: "Inventory"
	Table string // Warehouse table receiving appends
}

// TableDefinition is the canonical schema of one dataset kind.
type TableDefinition struct {
	Info       TableInfo
	FieldSpecs []FieldSpec
	Detect     DetectStrategy
}

// Required returns the canonical field names in schema order.
func (d TableDefinition) Required() []string {
	names := make([]string, len(d.FieldSpecs))
	for i, f := range d.FieldSpecs {
		names[i] = f.Name
	}
	return names
}

// Field returns the named canonical field.
func (d TableDefinition) Field(name string) (FieldSpec, bool) {
	for _, f := range d.FieldSpecs {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// RawDataset is a parsed upload: header names exactly as discovered and one
// map per data row from header name to literal cell text.
type RawDataset struct {
	Columns []string
	Rows    []map[string]string
}

// HasColumn reports whether name is one of the discovered columns.
func (d *RawDataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ColumnMapping maps source column name to canonical field name.
type ColumnMapping map[string]string

// Assignment maps canonical field name to the source column feeding it.
type Assignment map[string]string

// Mapping inverts the assignment into source-to-canonical form.
func (a Assignment) Mapping() ColumnMapping {
	m := make(ColumnMapping, len(a))
	for field, col := range a {
		m[col] = field
	}
	return m
}

// IngestResult is the summary of a successful ingest.
type IngestResult struct {
	Message           string        `json:"message"`
	RowsProcessed     int           `json:"rows_processed"`
	ColumnMappingUsed ColumnMapping `json:"column_mapping_used"`
	FinalColumns      []string      `json:"final_columns"`
}

// MappingRequired is returned instead of ingesting when auto-detection could
// not place every canonical field. The caller resubmits with an explicit mapping.
type MappingRequired struct {
	Message             string        `json:"message"`
	AvailableColumns    []string      `json:"available_columns"`
	RequiredColumns     []string      `json:"required_columns"`
	AutoDetectedMapping ColumnMapping `json:"auto_detected_mapping"`
	MissingColumns      []string      `json:"missing_columns"`
}

// IngestOutcome holds exactly one of Result or MappingRequired.
type IngestOutcome struct {
	Result          *IngestResult
	MappingRequired *MappingRequired
}

// NeedsMapping reports whether the ingest stopped for an explicit mapping.
func (o *IngestOutcome) NeedsMapping() bool {
	return o.MappingRequired != nil
}

// Body returns the response document for the outcome.
func (o *IngestOutcome) Body() any {
	if o.MappingRequired != nil {
		return o.MappingRequired
	}
	return o.Result
}

// StockoutRecord is one row of the stockout report.
type StockoutRecord struct {
	SKUID                string    `json:"sku_id"`
	Name                 string    `json:"name"`
	QuantityOnHand       float64   `json:"quantity_on_hand"`
	TotalOrderedQuantity float64   `json:"total_ordered_quantity"`
	RemainingQuantity    float64   `json:"remaining_quantity"`
	IsStockout           bool      `json:"is_stockout"`
	LastUpdated          time.Time `json:"last_updated"`
	CalculationTimestamp time.Time `json:"calculation_timestamp"`
}

// StockoutResult is the response of both stockout operations. Message and
// TableUpdated are only set by a calculation.
type StockoutResult struct {
	Message       string           `json:"message,omitempty"`
	StockoutCount int              `json:"stockout_count"`
	Stockouts     []StockoutRecord `json:"stockouts"`
	TableUpdated  string           `json:"table_updated,omitempty"`
}
