package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmanzanog/instrument-catalog/internal/infrastructure/persistence/sqldb/migrations"
	"github.com/pressly/goose/v3"
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.PostgresFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "postgres"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

func (d *PostgresDialect) UpsertDocument(ctx context.Context, tx *sql.Tx, name, body string, updatedAt time.Time) error {
	query := `
		INSERT INTO catalog_documents (name, body, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at
	`
	_, err := tx.ExecContext(ctx, query, name, body, updatedAt)
	return err
}
