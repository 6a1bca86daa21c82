package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmanzanog/instrument-catalog/internal/application"
	"github.com/jmanzanog/instrument-catalog/internal/domain"
	"github.com/jmanzanog/instrument-catalog/internal/infrastructure/persistence/memory"
	catalogHTTP "github.com/jmanzanog/instrument-catalog/internal/interfaces/http"
)

// --- Mock API ---

type mockCatalogAPI struct {
	listFunc       func(ctx context.Context) ([]domain.Instrument, error)
	getFunc        func(ctx context.Context, id string) (*domain.Instrument, error)
	createFunc     func(ctx context.Context, form domain.InstrumentForm) (*domain.Instrument, error)
	updateFunc     func(ctx context.Context, id string, form domain.InstrumentForm) (*domain.Instrument, error)
	deleteFunc     func(ctx context.Context, id string) (*domain.Instrument, error)
	replaceAllFunc func(ctx context.Context, records []domain.Instrument) error
	listCalls      int
}

func (m *mockCatalogAPI) List(ctx context.Context) ([]domain.Instrument, error) {
	m.listCalls++
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []domain.Instrument{}, nil
}

func (m *mockCatalogAPI) Get(ctx context.Context, id string) (*domain.Instrument, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockCatalogAPI) Create(ctx context.Context, form domain.InstrumentForm) (*domain.Instrument, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, form)
	}
	return nil, errors.New("not implemented")
}

func (m *mockCatalogAPI) Update(ctx context.Context, id string, form domain.InstrumentForm) (*domain.Instrument, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, form)
	}
	return nil, errors.New("not implemented")
}

func (m *mockCatalogAPI) Delete(ctx context.Context, id string) (*domain.Instrument, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockCatalogAPI) ReplaceAll(ctx context.Context, records []domain.Instrument) error {
	if m.replaceAllFunc != nil {
		return m.replaceAllFunc(ctx, records)
	}
	return errors.New("not implemented")
}

func activeMirror(t *testing.T, api *mockCatalogAPI, initial []domain.Instrument) *Mirror {
	t.Helper()
	api.listFunc = func(ctx context.Context) ([]domain.Instrument, error) {
		out := make([]domain.Instrument, len(initial))
		copy(out, initial)
		return out, nil
	}
	m := NewMirror(api)
	require.NoError(t, m.Activate(context.Background()))
	api.listFunc = nil
	return m
}

// --- Refresh ---

func TestMirror_Activate_LoadsList(t *testing.T) {
	api := &mockCatalogAPI{}
	m := activeMirror(t, api, domain.SampleInstruments())

	assert.Len(t, m.Instruments(), 6)
	assert.False(t, m.Loading())
	assert.NoError(t, m.Err())
}

func TestMirror_Refresh_LoadingWhilePending(t *testing.T) {
	var m *Mirror
	api := &mockCatalogAPI{
		listFunc: func(ctx context.Context) ([]domain.Instrument, error) {
			assert.True(t, m.Loading())
			return []domain.Instrument{}, nil
		},
	}
	m = NewMirror(api)

	require.NoError(t, m.Refresh(context.Background()))
	assert.False(t, m.Loading())
}

func TestMirror_Refresh_FailureEmptiesMirror(t *testing.T) {
	api := &mockCatalogAPI{}
	m := activeMirror(t, api, domain.SampleInstruments())

	api.listFunc = func(ctx context.Context) ([]domain.Instrument, error) {
		return nil, &APIError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch instruments"}
	}
	err := m.Refresh(context.Background())

	require.Error(t, err)
	assert.Equal(t, "Failed to fetch instruments", m.Err().Error())
	assert.Empty(t, m.Instruments())
	assert.False(t, m.Loading())
}

// --- Add ---

func TestMirror_AddInstrument_AppendsServerRecord(t *testing.T) {
	api := &mockCatalogAPI{
		createFunc: func(ctx context.Context, form domain.InstrumentForm) (*domain.Instrument, error) {
			inst := domain.NewInstrument(form)
			inst.ID = "server-id"
			return &inst, nil
		},
	}
	m := activeMirror(t, api, domain.SampleInstruments()[:1])

	created, err := m.AddInstrument(context.Background(), domain.InstrumentForm{Type: domain.InstrumentTypeTicker, Code: "nvda", Name: "Nvidia"})

	require.NoError(t, err)
	assert.Equal(t, "server-id", created.ID)
	records := m.Instruments()
	require.Len(t, records, 2)
	assert.Equal(t, "server-id", records[1].ID)
	assert.Equal(t, "NVDA", records[1].Code)
}

func TestMirror_AddInstrument_FailureLeavesStateUnchanged(t *testing.T) {
	api := &mockCatalogAPI{
		createFunc: func(ctx context.Context, form domain.InstrumentForm) (*domain.Instrument, error) {
			return nil, &APIError{StatusCode: http.StatusConflict, Message: "Instrument with this code and type already exists"}
		},
	}
	m := activeMirror(t, api, domain.SampleInstruments())

	_, err := m.AddInstrument(context.Background(), domain.InstrumentForm{Type: domain.InstrumentTypeTicker, Code: "AAPL", Name: "Apple"})

	require.Error(t, err)
	assert.Equal(t, "Instrument with this code and type already exists", err.Error())
	assert.Equal(t, err, m.Err())
	assert.Equal(t, domain.SampleInstruments(), m.Instruments())

	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestMirror_FallbackMessages(t *testing.T) {
	transportErr := errors.New("dial tcp: connection refused")
	api := &mockCatalogAPI{
		createFunc: func(ctx context.Context, form domain.InstrumentForm) (*domain.Instrument, error) {
			return nil, transportErr
		},
		updateFunc: func(ctx context.Context, id string, form domain.InstrumentForm) (*domain.Instrument, error) {
			return nil, transportErr
		},
		deleteFunc: func(ctx context.Context, id string) (*domain.Instrument, error) {
			return nil, transportErr
		},
		replaceAllFunc: func(ctx context.Context, records []domain.Instrument) error {
			return &APIError{StatusCode: http.StatusBadGateway}
		},
	}
	m := activeMirror(t, api, nil)
	ctx := context.Background()

	_, err := m.AddInstrument(ctx, domain.InstrumentForm{})
	assert.EqualError(t, err, "Failed to add instrument")
	assert.ErrorIs(t, err, transportErr)

	_, err = m.UpdateInstrument(ctx, "1", domain.InstrumentForm{})
	assert.EqualError(t, err, "Failed to update instrument")

	err = m.DeleteInstrument(ctx, "1")
	assert.EqualError(t, err, "Failed to delete instrument")

	err = m.LoadSampleData(ctx, domain.SampleInstruments())
	assert.EqualError(t, err, "Failed to load sample data")

	err = m.ClearAllInstruments(ctx)
	assert.EqualError(t, err, "Failed to clear instruments")
	assert.EqualError(t, m.Err(), "Failed to clear instruments")
}

// --- FetchInstrument ---

func TestMirror_FetchInstrument(t *testing.T) {
	samples := domain.SampleInstruments()
	api := &mockCatalogAPI{
		getFunc: func(ctx context.Context, id string) (*domain.Instrument, error) {
			if id == "5" {
				inst := samples[4]
				return &inst, nil
			}
			return nil, &APIError{StatusCode: http.StatusNotFound, Message: "Instrument not found"}
		},
	}
	m := activeMirror(t, api, samples[:2])
	ctx := context.Background()

	inst, err := m.FetchInstrument(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, "037833100", inst.Code)
	assert.Len(t, m.Instruments(), 2, "fetching one record must not touch the mirrored list")

	_, err = m.FetchInstrument(ctx, "missing")
	assert.EqualError(t, err, "Instrument not found")
	assert.EqualError(t, m.Err(), "Instrument not found")

	api.getFunc = func(ctx context.Context, id string) (*domain.Instrument, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	_, err = m.FetchInstrument(ctx, "5")
	assert.EqualError(t, err, "Failed to fetch instrument")
}

// --- Update / Delete ---

func TestMirror_UpdateInstrument_ReplacesMatchingRecord(t *testing.T) {
	api := &mockCatalogAPI{
		updateFunc: func(ctx context.Context, id string, form domain.InstrumentForm) (*domain.Instrument, error) {
			updated := domain.SampleInstruments()[2].Apply(form)
			return &updated, nil
		},
	}
	m := activeMirror(t, api, domain.SampleInstruments())

	_, err := m.UpdateInstrument(context.Background(), "3", domain.InstrumentForm{Type: domain.InstrumentTypeTicker, Code: "MSFT", Name: "Microsoft Corp."})

	require.NoError(t, err)
	records := m.Instruments()
	assert.Equal(t, "Microsoft Corp.", records[2].Name)
	assert.Equal(t, "3", records[2].ID)
	assert.Len(t, records, 6)
}

func TestMirror_DeleteInstrument(t *testing.T) {
	api := &mockCatalogAPI{
		deleteFunc: func(ctx context.Context, id string) (*domain.Instrument, error) {
			if id != "6" {
				return nil, &APIError{StatusCode: http.StatusNotFound, Message: "Instrument not found"}
			}
			removed := domain.SampleInstruments()[5]
			return &removed, nil
		},
	}
	m := activeMirror(t, api, domain.SampleInstruments())
	ctx := context.Background()

	err := m.DeleteInstrument(ctx, "missing")
	assert.EqualError(t, err, "Instrument not found")
	assert.Len(t, m.Instruments(), 6)

	require.NoError(t, m.DeleteInstrument(ctx, "6"))
	assert.NoError(t, m.Err())
	assert.Len(t, m.Instruments(), 5)
	for _, r := range m.Instruments() {
		assert.NotEqual(t, "6", r.ID)
	}
}

// --- Bulk ---

func TestMirror_LoadSampleData_RefetchesAfterReplace(t *testing.T) {
	var stored []domain.Instrument
	api := &mockCatalogAPI{
		replaceAllFunc: func(ctx context.Context, records []domain.Instrument) error {
			stored = records
			return nil
		},
	}
	m := activeMirror(t, api, nil)
	api.listFunc = func(ctx context.Context) ([]domain.Instrument, error) {
		return stored, nil
	}
	callsBefore := api.listCalls

	require.NoError(t, m.LoadSampleData(context.Background(), domain.SampleInstruments()))

	assert.Equal(t, callsBefore+1, api.listCalls)
	assert.Equal(t, domain.SampleInstruments(), m.Instruments())
}

func TestMirror_ClearAllInstruments_EmptiesLocally(t *testing.T) {
	api := &mockCatalogAPI{
		replaceAllFunc: func(ctx context.Context, records []domain.Instrument) error {
			assert.NotNil(t, records)
			assert.Empty(t, records)
			return nil
		},
	}
	m := activeMirror(t, api, domain.SampleInstruments())
	callsBefore := api.listCalls

	require.NoError(t, m.ClearAllInstruments(context.Background()))

	assert.Empty(t, m.Instruments())
	assert.Equal(t, callsBefore, api.listCalls)
}

func TestMirror_ErrorClearedOnNextAttempt(t *testing.T) {
	fail := true
	api := &mockCatalogAPI{
		createFunc: func(ctx context.Context, form domain.InstrumentForm) (*domain.Instrument, error) {
			if fail {
				return nil, &APIError{StatusCode: http.StatusBadRequest, Message: "Missing required fields: type, code, name"}
			}
			inst := domain.NewInstrument(form)
			return &inst, nil
		},
	}
	m := activeMirror(t, api, nil)
	form := domain.InstrumentForm{Type: domain.InstrumentTypeTicker, Code: "AMZN", Name: "Amazon"}

	_, err := m.AddInstrument(context.Background(), form)
	require.Error(t, err)
	require.Error(t, m.Err())

	fail = false
	_, err = m.AddInstrument(context.Background(), form)
	require.NoError(t, err)
	assert.NoError(t, m.Err())
}

func TestMirror_InstrumentsByType(t *testing.T) {
	m := activeMirror(t, &mockCatalogAPI{}, domain.SampleInstruments())

	assert.Len(t, m.InstrumentsByType(domain.InstrumentTypeTicker), 4)
	assert.Len(t, m.InstrumentsByType(domain.InstrumentTypeISIN), 1)
	assert.Len(t, m.InstrumentsByType(domain.InstrumentTypeCUSIP), 1)
}

func TestMirror_InstrumentsReturnsCopy(t *testing.T) {
	m := activeMirror(t, &mockCatalogAPI{}, domain.SampleInstruments())

	records := m.Instruments()
	records[0].Name = "mutated"

	assert.Equal(t, "Apple Inc.", m.Instruments()[0].Name)
}

// --- Against the real HTTP surface ---

func newCatalogServer(t *testing.T, middleware ...gin.HandlerFunc) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	service := application.NewCatalogService(memory.NewCatalogStore())
	catalogHTTP.SetupRoutes(router, catalogHTTP.NewHandler(service), middleware...)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestMirror_EndToEnd(t *testing.T) {
	server := newCatalogServer(t)
	m := NewMirror(NewClient(server.URL))
	ctx := context.Background()

	require.NoError(t, m.Activate(ctx))
	assert.Empty(t, m.Instruments())

	require.NoError(t, m.LoadSampleData(ctx, domain.SampleInstruments()))
	records := m.Instruments()
	require.Len(t, records, 6)
	for i, sample := range domain.SampleInstruments() {
		assert.Equal(t, sample.ID, records[i].ID)
	}

	_, err := m.AddInstrument(ctx, domain.InstrumentForm{Type: domain.InstrumentTypeTicker, Code: "aapl", Name: "dup"})
	assert.EqualError(t, err, "Instrument with this code and type already exists")
	assert.Len(t, m.Instruments(), 6)

	_, err = m.AddInstrument(ctx, domain.InstrumentForm{Type: domain.InstrumentTypeTicker, Code: "", Name: "X"})
	assert.EqualError(t, err, "Missing required fields: type, code, name")

	require.NoError(t, m.DeleteInstrument(ctx, "6"))
	assert.Len(t, m.Instruments(), 5)

	require.NoError(t, m.Refresh(ctx))
	assert.Len(t, m.Instruments(), 5)

	require.NoError(t, m.ClearAllInstruments(ctx))
	require.NoError(t, m.Refresh(ctx))
	assert.Empty(t, m.Instruments())
}

func TestMirror_EndToEnd_GuardedWithoutSession(t *testing.T) {
	server := newCatalogServer(t, catalogHTTP.SessionGuard(""))
	m := NewMirror(NewClient(server.URL))

	err := m.Activate(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, "Authentication required", m.Err().Error())
}

func TestMirror_EndToEnd_GuardedWithSession(t *testing.T) {
	server := newCatalogServer(t, catalogHTTP.SessionGuard(""))
	c := NewClient(server.URL)
	c.SetSession("", "token")
	m := NewMirror(c)

	assert.NoError(t, m.Activate(context.Background()))
}
