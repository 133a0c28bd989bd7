// Package database handles database connections and schema inspection.
//
// It wraps GORM and selects the dialector from the configured driver:
// MySQL (the default), PostgreSQL, or SQLite. SQLite is mostly used with the
// ":memory:" name in tests, in which case the pool is pinned to a single
// connection.
//
// # Schema Inspection
//
// GetTableColumns reads the live column list of a table using the dialect's
// native facility (SHOW COLUMNS, information_schema, PRAGMA table_info).
// MissingColumns compares it with an expected set and is used by the
// "migrate --check" command.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "orders", []string{"id", "tenant_id"})
package database
