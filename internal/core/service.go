package core

import (
	"time"

	"github.com/walis/inventory-uploader/internal/warehouse"
)

// Service provides the ingestion and stockout operations over a warehouse.
// It is safe for concurrent use; no dataset state is held between calls.
type Service struct {
	wh      warehouse.Warehouse
	limiter *IngestLimiter
	now     func() time.Time
}

// Options configures a Service. Zero values select the defaults.
type Options struct {
	MaxConcurrentIngests int
	MaxWait              time.Duration
	Clock                func() time.Time // defaults to time.Now
}

// NewService creates a new Service instance.
func NewService(wh warehouse.Warehouse, opts Options) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		wh:      wh,
		limiter: NewIngestLimiter(opts.MaxConcurrentIngests, opts.MaxWait),
		now:     clock,
	}
}

// ListTables returns information about all registered tables.
func (s *Service) ListTables() []TableInfo {
	defs := All()
	infos := make([]TableInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// Limiter exposes the ingest limiter, mainly for draining on shutdown.
func (s *Service) Limiter() *IngestLimiter {
	return s.limiter
}
