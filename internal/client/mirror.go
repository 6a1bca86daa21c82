package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jmanzanog/instrument-catalog/internal/domain"
)

// CatalogAPI is the part of the catalog service the mirror depends on.
// *Client implements it.
type CatalogAPI interface {
	List(ctx context.Context) ([]domain.Instrument, error)
	Get(ctx context.Context, id string) (*domain.Instrument, error)
	Create(ctx context.Context, form domain.InstrumentForm) (*domain.Instrument, error)
	Update(ctx context.Context, id string, form domain.InstrumentForm) (*domain.Instrument, error)
	Delete(ctx context.Context, id string) (*domain.Instrument, error)
	ReplaceAll(ctx context.Context, records []domain.Instrument) error
}

const (
	msgFetchFailed  = "Failed to fetch instruments"
	msgGetFailed    = "Failed to fetch instrument"
	msgAddFailed    = "Failed to add instrument"
	msgUpdateFailed = "Failed to update instrument"
	msgDeleteFailed = "Failed to delete instrument"
	msgSeedFailed   = "Failed to load sample data"
	msgClearFailed  = "Failed to clear instruments"
)

// Mirror is a local cache of the remote catalog. Local state changes only
// after the service confirmed a mutation. One error is kept at a time: every
// operation clears it on entry and sets it again if it fails.
type Mirror struct {
	api CatalogAPI

	mu          sync.RWMutex
	instruments []domain.Instrument
	loading     bool
	err         error
}

func NewMirror(api CatalogAPI) *Mirror {
	return &Mirror{
		api:         api,
		instruments: []domain.Instrument{},
	}
}

// Activate performs the initial fetch.
func (m *Mirror) Activate(ctx context.Context) error {
	return m.Refresh(ctx)
}

// Refresh replaces the mirror with the service's list. On failure the
// mirror is left empty.
func (m *Mirror) Refresh(ctx context.Context) error {
	m.mu.Lock()
	m.loading = true
	m.err = nil
	m.mu.Unlock()

	records, err := m.api.List(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.instruments = []domain.Instrument{}
		return m.fail(ctx, err, msgFetchFailed)
	}
	m.instruments = records
	return nil
}

// FetchInstrument reads one record straight from the service. The mirrored
// list is left as it is.
func (m *Mirror) FetchInstrument(ctx context.Context, id string) (*domain.Instrument, error) {
	m.clearErr()

	inst, err := m.api.Get(ctx, id)
	if err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		return nil, m.fail(ctx, err, msgGetFailed)
	}
	return inst, nil
}

func (m *Mirror) AddInstrument(ctx context.Context, form domain.InstrumentForm) (*domain.Instrument, error) {
	m.clearErr()

	created, err := m.api.Create(ctx, form)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return nil, m.fail(ctx, err, msgAddFailed)
	}
	m.instruments = append(m.instruments, *created)
	return created, nil
}

func (m *Mirror) UpdateInstrument(ctx context.Context, id string, form domain.InstrumentForm) (*domain.Instrument, error) {
	m.clearErr()

	updated, err := m.api.Update(ctx, id, form)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return nil, m.fail(ctx, err, msgUpdateFailed)
	}
	for i := range m.instruments {
		if m.instruments[i].ID == id {
			m.instruments[i] = *updated
		}
	}
	return updated, nil
}

func (m *Mirror) DeleteInstrument(ctx context.Context, id string) error {
	m.clearErr()

	_, err := m.api.Delete(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return m.fail(ctx, err, msgDeleteFailed)
	}
	kept := m.instruments[:0:0]
	for _, inst := range m.instruments {
		if inst.ID != id {
			kept = append(kept, inst)
		}
	}
	m.instruments = kept
	return nil
}

// LoadSampleData bulk-replaces the remote catalog and then re-fetches it;
// the bulk response is not taken as the new state.
func (m *Mirror) LoadSampleData(ctx context.Context, records []domain.Instrument) error {
	m.clearErr()

	if err := m.api.ReplaceAll(ctx, records); err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.fail(ctx, err, msgSeedFailed)
	}
	return m.Refresh(ctx)
}

func (m *Mirror) ClearAllInstruments(ctx context.Context) error {
	m.clearErr()

	err := m.api.ReplaceAll(ctx, []domain.Instrument{})

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return m.fail(ctx, err, msgClearFailed)
	}
	m.instruments = []domain.Instrument{}
	return nil
}

// InstrumentsByType filters the local mirror without contacting the service.
func (m *Mirror) InstrumentsByType(t domain.InstrumentType) []domain.Instrument {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.FilterByType(m.instruments, t)
}

func (m *Mirror) Instruments() []domain.Instrument {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Instrument, len(m.instruments))
	copy(out, m.instruments)
	return out
}

func (m *Mirror) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Err returns the error of the last failed operation, or nil.
func (m *Mirror) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

func (m *Mirror) clearErr() {
	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()
}

// fail records a readable error built from cause. Callers hold mu.
func (m *Mirror) fail(ctx context.Context, cause error, fallback string) error {
	msg := fallback
	var apiErr *APIError
	if errors.As(cause, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}
	slog.DebugContext(ctx, "Catalog request failed", "message", msg, "error", cause)

	m.err = &OperationError{Message: msg, Cause: cause}
	return m.err
}

// OperationError is what the mirror surfaces for a failed operation. Its
// text is safe to show to a user; Cause keeps the underlying failure.
type OperationError struct {
	Message string
	Cause   error
}

func (e *OperationError) Error() string { return e.Message }

func (e *OperationError) Unwrap() error { return e.Cause }
