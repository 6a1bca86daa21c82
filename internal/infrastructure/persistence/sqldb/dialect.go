package sqldb

import (
	"context"
	"database/sql"
	"time"
)

// Dialect isolates the vendor-specific SQL of the document store.
type Dialect interface {
	Name() string
	Migrate(ctx context.Context, db *sql.DB) error
	UpsertDocument(ctx context.Context, tx *sql.Tx, name, body string, updatedAt time.Time) error
}
