package storage

import "database/sql"

// migrateV001 creates the initial schema: the incident table with one
// nullable column per export column, import history, saved filters and the
// audit log. Every statement uses IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS imports (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			source      TEXT NOT NULL DEFAULT '',
			row_count   INTEGER NOT NULL DEFAULT 0,
			columns     TEXT NOT NULL DEFAULT '',
			imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS incidents (
			id                              INTEGER PRIMARY KEY AUTOINCREMENT,
			import_id                       INTEGER NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
			"Year"                          TEXT,
			"Month"                         TEXT,
			"Day"                           TEXT,
			"Hour"                          TEXT,
			"ConYear"                       TEXT,
			"ConMonth"                      TEXT,
			manufacturer                    TEXT,
			model                           TEXT,
			vehicle_colour                  TEXT,
			vehicle_year                    TEXT,
			product_package                 TEXT,
			primary_hardware_type           TEXT,
			incident_type                   TEXT,
			user_type                       TEXT,
			terminal_event_type_description TEXT,
			tag_or_asset_track              TEXT,
			warranty_base                   TEXT,
			device_exclusion                TEXT,
			bike_exclusion                  TEXT,
			fraud                           TEXT,
			"Exclude"                       TEXT,
			business_source_username        TEXT,
			client_name                     TEXT,
			user_name                       TEXT,
			primary_registration            TEXT,
			recovered                       TEXT,
			recovered_flag                  INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS saved_filters (
			name       TEXT PRIMARY KEY,
			body       TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS audit_log (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			ts     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_incidents_import       ON incidents(import_id)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_period       ON incidents("Year", "Month")`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_manufacturer ON incidents(manufacturer)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_log_ts           ON audit_log(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_log_action       ON audit_log(action)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
