package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmanzanog/instrument-catalog/internal/infrastructure/persistence/sqldb/migrations"
)

type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) Migrate(ctx context.Context, db *sql.DB) error {
	// goose has no go-ora dialect, so the init script is applied statement by statement.
	content, err := migrations.OracleFS.ReadFile(migrations.OracleInitScript)
	if err != nil {
		return fmt.Errorf("reading migration file: %w", err)
	}

	for _, stmt := range strings.Split(string(content), "/") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			// ORA-00955: name is already used by an existing object
			if !strings.Contains(err.Error(), "ORA-00955") {
				return fmt.Errorf("migrating: %s: %w", stmt, err)
			}
		}
	}
	return nil
}

func (d *OracleDialect) UpsertDocument(ctx context.Context, tx *sql.Tx, name, body string, updatedAt time.Time) error {
	query := `MERGE INTO catalog_documents d
             USING (SELECT :1 as name_val FROM dual) s
             ON (d.name = s.name_val)
             WHEN MATCHED THEN
               UPDATE SET body = :2, updated_at = :3
             WHEN NOT MATCHED THEN
               INSERT (name, body, updated_at)
               VALUES (:4, :5, :6)`

	_, err := tx.ExecContext(ctx, query,
		name,      // 1
		body,      // 2 (UPDATE)
		updatedAt, // 3
		name,      // 4 (INSERT)
		body,      // 5
		updatedAt, // 6
	)
	return err
}
