package storage

import "database/sql"

// migrateV002 indexes the outcome flag and incident type, which the status
// counts and the most common filters scan.
func migrateV002(tx *sql.Tx) error {
	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_incidents_recovered ON incidents(recovered_flag)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_type      ON incidents(incident_type)`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
