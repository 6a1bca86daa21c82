package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmanzanog/instrument-catalog/internal/domain"
)

const (
	msgDuplicate        = "Instrument with this code and type already exists"
	msgDuplicateOnOther = "Another instrument with this code and type already exists"
	msgNotFound         = "Instrument not found"
)

type Option func(*CatalogService)

// WithStrictCodeFormat makes create and update reject codes whose shape does
// not match their type (ISIN, CUSIP or ticker).
func WithStrictCodeFormat() Option {
	return func(s *CatalogService) {
		s.strictCodes = true
	}
}

// CatalogService is the only writer of the catalog. Each operation is a full
// read-modify-write cycle against the store, serialized by mu so that two
// requests in this process never overwrite each other's changes.
type CatalogService struct {
	store       domain.CatalogStore
	strictCodes bool
	mu          sync.Mutex
}

func NewCatalogService(store domain.CatalogStore, opts ...Option) *CatalogService {
	s := &CatalogService{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Instrument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readAll(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Instrument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(records, id)
	if idx < 0 {
		return nil, domain.NewError(domain.ErrNotFound, msgNotFound)
	}
	return &records[idx], nil
}

func (s *CatalogService) Create(ctx context.Context, form domain.InstrumentForm) (*domain.Instrument, error) {
	form = form.Normalize()
	if err := s.validate(form); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	if conflictIndex(records, form, -1) >= 0 {
		return nil, domain.NewError(domain.ErrConflict, msgDuplicate)
	}

	instrument := domain.NewInstrument(form)
	records = append(records, instrument)

	if err := s.writeAll(ctx, records); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Instrument created", "id", instrument.ID, "type", instrument.Type, "code", instrument.Code)
	return &instrument, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, form domain.InstrumentForm) (*domain.Instrument, error) {
	form = form.Normalize()
	if err := s.validate(form); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(records, id)
	if idx < 0 {
		return nil, domain.NewError(domain.ErrNotFound, msgNotFound)
	}

	if conflictIndex(records, form, idx) >= 0 {
		return nil, domain.NewError(domain.ErrConflict, msgDuplicateOnOther)
	}

	updated := records[idx].Apply(form)
	records[idx] = updated

	if err := s.writeAll(ctx, records); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Instrument updated", "id", updated.ID, "type", updated.Type, "code", updated.Code)
	return &updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) (*domain.Instrument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(records, id)
	if idx < 0 {
		return nil, domain.NewError(domain.ErrNotFound, msgNotFound)
	}

	removed := records[idx]
	records = append(records[:idx], records[idx+1:]...)

	if err := s.writeAll(ctx, records); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Instrument deleted", "id", removed.ID, "type", removed.Type, "code", removed.Code)
	return &removed, nil
}

// ReplaceAll overwrites the whole catalog. Records are trusted as given: no
// per-record validation or normalization is applied.
func (s *CatalogService) ReplaceAll(ctx context.Context, records []domain.Instrument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if records == nil {
		records = []domain.Instrument{}
	}
	if err := s.writeAll(ctx, records); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Catalog replaced", "count", len(records))
	return nil
}

func (s *CatalogService) validate(form domain.InstrumentForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	if s.strictCodes {
		return domain.ValidateCodeFormat(form.Type, form.Code)
	}
	return nil
}

func (s *CatalogService) readAll(ctx context.Context) ([]domain.Instrument, error) {
	records, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read catalog: %w", domain.ErrStore, err)
	}
	return records, nil
}

func (s *CatalogService) writeAll(ctx context.Context, records []domain.Instrument) error {
	if err := s.store.WriteAll(ctx, records); err != nil {
		return fmt.Errorf("%w: failed to write catalog: %w", domain.ErrStore, err)
	}
	return nil
}

func indexOf(records []domain.Instrument, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

// conflictIndex returns the index of a record other than skip that already
// holds the form's (type, code) pair, or -1.
func conflictIndex(records []domain.Instrument, form domain.InstrumentForm, skip int) int {
	for i := range records {
		if i != skip && records[i].SameIdentity(form.Type, form.Code) {
			return i
		}
	}
	return -1
}
