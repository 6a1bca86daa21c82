package memory

import (
	"context"
	"sync"

	"github.com/jmanzanog/instrument-catalog/internal/domain"
)

// CatalogStore keeps the catalog document in process memory. Records are
// copied on the way in and out so callers never share the backing slice.
type CatalogStore struct {
	mu      sync.RWMutex
	records []domain.Instrument
}

func NewCatalogStore(initial ...domain.Instrument) *CatalogStore {
	return &CatalogStore{
		records: clone(initial),
	}
}

func (s *CatalogStore) ReadAll(ctx context.Context) ([]domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return clone(s.records), nil
}

func (s *CatalogStore) WriteAll(ctx context.Context, records []domain.Instrument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = clone(records)
	return nil
}

func clone(records []domain.Instrument) []domain.Instrument {
	out := make([]domain.Instrument, len(records))
	copy(out, records)
	return out
}
