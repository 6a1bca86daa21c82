package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmanzanog/instrument-catalog/internal/domain"
)

const DefaultDocumentName = "instruments"

// CatalogStore keeps the catalog as a single JSON document in the
// catalog_documents table, one row per document name.
type CatalogStore struct {
	db   *DB
	name string
}

func NewCatalogStore(db *DB, name string) *CatalogStore {
	if name == "" {
		name = DefaultDocumentName
	}
	return &CatalogStore{db: db, name: name}
}

func (s *CatalogStore) ReadAll(ctx context.Context) ([]domain.Instrument, error) {
	query := s.rebind(`SELECT body FROM catalog_documents WHERE name = $1`)

	var body string
	err := s.db.QueryRowContext(ctx, query, s.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		slog.DebugContext(ctx, "Catalog document not found, initializing", "document", s.name)
		if err := s.WriteAll(ctx, nil); err != nil {
			slog.WarnContext(ctx, "Failed to initialize catalog document", "document", s.name, "error", err)
		}
		return []domain.Instrument{}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read catalog document", "document", s.name, "error", err)
		return nil, fmt.Errorf("querying catalog document: %w", err)
	}

	records := []domain.Instrument{}
	if strings.TrimSpace(body) == "" {
		return records, nil
	}
	if err := json.Unmarshal([]byte(body), &records); err != nil {
		slog.WarnContext(ctx, "Malformed catalog document, using empty catalog", "document", s.name, "error", err)
		return []domain.Instrument{}, nil
	}
	if records == nil {
		records = []domain.Instrument{}
	}
	return records, nil
}

func (s *CatalogStore) WriteAll(ctx context.Context, records []domain.Instrument) error {
	if records == nil {
		records = []domain.Instrument{}
	}

	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.db.Dialect.UpsertDocument(ctx, tx, s.name, string(body), time.Now().UTC()); err != nil {
			slog.ErrorContext(ctx, "Failed to save catalog document", "document", s.name, "error", err)
			return fmt.Errorf("upsert catalog document: %w", err)
		}
		return nil
	})
}

func (s *CatalogStore) rebind(query string) string {
	if s.db.Dialect.Name() == "oracle" {
		for i := 1; i <= 10; i++ {
			query = strings.ReplaceAll(query, fmt.Sprintf("$%d", i), fmt.Sprintf(":%d", i))
		}
	}
	return query
}
