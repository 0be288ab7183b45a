package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/walis/inventory-uploader/internal/logging"
	"github.com/walis/inventory-uploader/internal/warehouse"
)

// Registered dataset kinds.
const (
	KeyInventory = "inventory"
	KeyOrders    = "orders"
)

const mappingRequiredMessage = "Column mapping required"

// IngestInventory ingests an inventory CSV. See Ingest.
func (s *Service) IngestInventory(ctx context.Context, data []byte, filename, mapping string) (*IngestOutcome, error) {
	return s.Ingest(ctx, KeyInventory, data, filename, mapping)
}

// IngestOrders ingests an orders CSV. See Ingest.
func (s *Service) IngestOrders(ctx context.Context, data []byte, filename, mapping string) (*IngestOutcome, error) {
	return s.Ingest(ctx, KeyOrders, data, filename, mapping)
}

// Ingest validates, reconciles and coerces one uploaded file and appends it
// to the kind's warehouse table with a single Append call.
//
// An empty mapping selects auto-detection. When auto-detection cannot place
// every canonical field the outcome carries a MappingRequired diagnostic and
// nothing is written. A non-empty mapping must be a JSON object of source
// column to canonical field.
//
// Rows are appended as-is: re-uploading a file duplicates its rows.
func (s *Service) Ingest(ctx context.Context, kind string, data []byte, filename, mapping string) (*IngestOutcome, error) {
	def, ok := Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, kind)
	}

	ingestID := uuid.New().String()
	logger := logging.WithFields(ctx, "ingest_id", ingestID, "kind", kind, "file", filename)

	if err := CheckExtension(filename); err != nil {
		logger.Warn("ingest rejected", "error", err)
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("ingest slot unavailable", "error", err)
		return nil, err
	}
	defer s.limiter.Release()

	ds, err := ParseCSV(data)
	if err != nil {
		logger.Warn("ingest rejected", "error", err)
		return nil, err
	}

	var (
		assigned Assignment
		used     ColumnMapping
	)
	if mapping == "" {
		assigned = AutoDetect(def, ds.Columns)
		if missing := Missing(def, assigned); len(missing) > 0 {
			logger.Info("column mapping required", "missing", missing, "columns", ds.Columns)
			return &IngestOutcome{MappingRequired: &MappingRequired{
				Message:             mappingRequiredMessage,
				AvailableColumns:    ds.Columns,
				RequiredColumns:     def.Required(),
				AutoDetectedMapping: assigned.Mapping(),
				MissingColumns:      missing,
			}}, nil
		}
		used = assigned.Mapping()
	} else {
		explicit, err := ParseMapping(mapping)
		if err != nil {
			logger.Warn("ingest rejected", "error", err)
			return nil, err
		}
		assigned, err = ValidateMapping(def, ds, explicit)
		if err != nil {
			logger.Warn("ingest rejected", "error", err)
			return nil, err
		}
		used = explicit
	}

	now := s.now()
	batch := &warehouse.Batch{
		Table:   def.Info.Table,
		Columns: def.Required(),
		Rows:    Coerce(def, project(def, ds, assigned), now),
	}

	if err := s.wh.Append(ctx, batch); err != nil {
		logger.Error("warehouse append failed", "table", batch.Table, "error", err)
		return nil, sinkFailure(batch.Table, err)
	}

	logger.Info("ingest complete", "table", batch.Table, "rows", batch.Len())

	return &IngestOutcome{Result: &IngestResult{
		Message:           fmt.Sprintf("File '%s' uploaded and data ingested successfully.", filename),
		RowsProcessed:     batch.Len(),
		ColumnMappingUsed: used,
		FinalColumns:      def.Required(),
	}}, nil
}
