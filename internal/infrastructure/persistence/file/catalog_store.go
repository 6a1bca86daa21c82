package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmanzanog/instrument-catalog/internal/domain"
)

const DefaultPath = "data/instruments.json"

// CatalogStore persists the catalog as one indented JSON array on disk.
// Writes go through a temp file in the same directory and are renamed into
// place, so readers never see a truncated document.
type CatalogStore struct {
	path string
}

func NewCatalogStore(path string) *CatalogStore {
	if path == "" {
		path = DefaultPath
	}
	return &CatalogStore{path: path}
}

func (s *CatalogStore) Path() string { return s.path }

// ReadAll never fails on document problems: a missing file is created as an
// empty array and an unreadable or malformed one reads as an empty catalog.
func (s *CatalogStore) ReadAll(ctx context.Context) ([]domain.Instrument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.ensureDocument(ctx)

	data, err := os.ReadFile(s.path)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read catalog file, using empty catalog", "path", s.path, "error", err)
		return []domain.Instrument{}, nil
	}

	records := []domain.Instrument{}
	if len(bytes.TrimSpace(data)) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		slog.WarnContext(ctx, "Malformed catalog file, using empty catalog", "path", s.path, "error", err)
		return []domain.Instrument{}, nil
	}
	if records == nil {
		records = []domain.Instrument{}
	}
	return records, nil
}

func (s *CatalogStore) WriteAll(ctx context.Context, records []domain.Instrument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []domain.Instrument{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}

	if err := s.writeFile(data); err != nil {
		slog.ErrorContext(ctx, "Failed to write catalog file", "path", s.path, "error", err)
		return fmt.Errorf("writing catalog file %s: %w", s.path, err)
	}
	return nil
}

// ensureDocument creates the containing directory and an empty array
// document when the file does not exist yet. Failures are only logged; the
// following read reports an empty catalog.
func (s *CatalogStore) ensureDocument(ctx context.Context) {
	if _, err := os.Stat(s.path); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err := s.writeFile([]byte("[]")); err != nil {
		slog.WarnContext(ctx, "Failed to initialize catalog file", "path", s.path, "error", err)
	}
}

func (s *CatalogStore) writeFile(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".instruments-*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
