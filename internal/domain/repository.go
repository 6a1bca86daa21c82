package domain

import "context"

// CatalogStore persists the whole catalog as a single document.
// There is no partial write: every mutation is read-all, modify, write-all.
// All methods accept context.Context so database-backed stores can honor
// cancellation and timeouts.
type CatalogStore interface {
	// ReadAll returns the records in insertion order. A missing or
	// unparseable document reads as an empty catalog, not an error.
	ReadAll(ctx context.Context) ([]Instrument, error)
	// WriteAll replaces the stored catalog with records.
	WriteAll(ctx context.Context, records []Instrument) error
}
