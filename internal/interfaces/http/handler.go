package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmanzanog/instrument-catalog/internal/domain"
)

// CatalogService defines the interface for catalog operations
type CatalogService interface {
	List(ctx context.Context) ([]domain.Instrument, error)
	Get(ctx context.Context, id string) (*domain.Instrument, error)
	Create(ctx context.Context, form domain.InstrumentForm) (*domain.Instrument, error)
	Update(ctx context.Context, id string, form domain.InstrumentForm) (*domain.Instrument, error)
	Delete(ctx context.Context, id string) (*domain.Instrument, error)
	ReplaceAll(ctx context.Context, records []domain.Instrument) error
}

type Handler struct {
	catalogService CatalogService
}

func NewHandler(catalogService CatalogService) *Handler {
	return &Handler{
		catalogService: catalogService,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type BulkReplaceResponse struct {
	Success bool `json:"success"`
}

const (
	msgInvalidBody   = "Invalid request body"
	msgExpectedArray = "Expected array of instruments"
)

func (h *Handler) ListInstruments(c *gin.Context) {
	instruments, err := h.catalogService.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to fetch instruments")
		return
	}

	c.JSON(http.StatusOK, instruments)
}

func (h *Handler) GetInstrument(c *gin.Context) {
	id := c.Param("id")

	instrument, err := h.catalogService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to fetch instrument", "instrument_id", id)
		return
	}

	c.JSON(http.StatusOK, instrument)
}

func (h *Handler) CreateInstrument(c *gin.Context) {
	var form domain.InstrumentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
		return
	}

	instrument, err := h.catalogService.Create(c.Request.Context(), form)
	if err != nil {
		h.respondError(c, err, "Failed to create instrument", "type", form.Type, "code", form.Code)
		return
	}

	c.JSON(http.StatusCreated, instrument)
}

func (h *Handler) UpdateInstrument(c *gin.Context) {
	id := c.Param("id")

	var form domain.InstrumentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "instrument_id", id, "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
		return
	}

	instrument, err := h.catalogService.Update(c.Request.Context(), id, form)
	if err != nil {
		h.respondError(c, err, "Failed to update instrument", "instrument_id", id)
		return
	}

	c.JSON(http.StatusOK, instrument)
}

func (h *Handler) DeleteInstrument(c *gin.Context) {
	id := c.Param("id")

	removed, err := h.catalogService.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to delete instrument", "instrument_id", id)
		return
	}

	c.JSON(http.StatusOK, removed)
}

// ReplaceInstruments overwrites the catalog with the posted array. Elements
// are stored as sent; only the top-level shape is checked.
func (h *Handler) ReplaceInstruments(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to read request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
		return
	}

	if !isJSONArray(body) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgExpectedArray})
		return
	}

	var records []domain.Instrument
	if err := json.Unmarshal(body, &records); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid instrument array", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
		return
	}

	if err := h.catalogService.ReplaceAll(c.Request.Context(), records); err != nil {
		h.respondError(c, err, "Failed to update instruments", "count", len(records))
		return
	}

	c.JSON(http.StatusOK, BulkReplaceResponse{Success: true})
}

func isJSONArray(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '[' && json.Valid(trimmed)
}

// respondError maps domain errors to their status code and user-facing
// message. Anything else is logged and answered with a generic 500.
func (h *Handler) respondError(c *gin.Context, err error, fallback string, attrs ...any) {
	ctx := c.Request.Context()
	args := append(attrs, "error", err)

	switch {
	case errors.Is(err, domain.ErrValidation):
		slog.InfoContext(ctx, "Rejected invalid instrument", args...)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		slog.InfoContext(ctx, "Rejected duplicate instrument", args...)
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(ctx, fallback, args...)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}
