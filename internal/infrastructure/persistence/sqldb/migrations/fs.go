package migrations

import "embed"

//go:embed postgres/*.sql
var PostgresFS embed.FS

//go:embed oracle/*.sql
var OracleFS embed.FS

// OracleInitScript is the single script applied by the oracle dialect.
const OracleInitScript = "oracle/00001_create_catalog_documents.sql"
