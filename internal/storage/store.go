package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/filter"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/incident"
)

// Store defines the interface for dashboard data operations.
type Store interface {
	ReplaceIncidents(ctx context.Context, source string, ds *incident.Dataset) (*Import, error)
	LoadDataset(ctx context.Context) (*incident.Dataset, error)
	LastImport(ctx context.Context) (*Import, error)
	SaveFilter(ctx context.Context, name string, sel filter.Selections) error
	GetFilter(ctx context.Context, name string) (*SavedFilter, error)
	ListFilters(ctx context.Context) ([]SavedFilter, error)
	DeleteFilter(ctx context.Context, name string) error
	RecordQuery(ctx context.Context, action, detail string) error
	RecentQueries(ctx context.Context, limit int) ([]AuditEntry, error)
	GetStats(ctx context.Context) (*Stats, error)
	PurgeAll(ctx context.Context) error
	Close() error
}

// incidentColumns are the stored export columns, in table order. The
// derived flag lives in recovered_flag.
var incidentColumns = func() []string {
	var cols []string
	for _, c := range incident.KnownColumns {
		if c != incident.ColRecovered01 {
			cols = append(cols, c)
		}
	}
	return cols
}()

var storedColumn = func() map[string]bool {
	m := make(map[string]bool, len(incidentColumns))
	for _, c := range incidentColumns {
		m[c] = true
	}
	return m
}()

func quotedColumns() string {
	quoted := make([]string, len(incidentColumns))
	for i, c := range incidentColumns {
		quoted[i] = `"` + c + `"`
	}
	return strings.Join(quoted, ", ")
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	insertAudit  *sql.Stmt
	upsertFilter *sql.Stmt
	getFilter    *sql.Stmt
	deleteFilter *sql.Stmt
	lastImport   *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertAudit, err = s.db.Prepare(`
		INSERT INTO audit_log (action, detail, ts) VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.upsertFilter, err = s.db.Prepare(`
		INSERT INTO saved_filters (name, body, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}

	s.getFilter, err = s.db.Prepare(`
		SELECT name, body, created_at, updated_at FROM saved_filters WHERE name = ?
	`)
	if err != nil {
		return err
	}

	s.deleteFilter, err = s.db.Prepare(`DELETE FROM saved_filters WHERE name = ?`)
	if err != nil {
		return err
	}

	s.lastImport, err = s.db.Prepare(`
		SELECT id, source, row_count, columns, imported_at
		FROM imports ORDER BY id DESC LIMIT 1
	`)
	if err != nil {
		return err
	}

	return nil
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05.999999999-07:00",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

func nowFormatted() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ReplaceIncidents swaps the stored dataset for ds in a single transaction.
// Columns the dashboard does not read are not stored.
func (s *SQLiteStore) ReplaceIncidents(ctx context.Context, source string, ds *incident.Dataset) (*Import, error) {
	if err := ds.EnsureRecovered01(); err != nil {
		return nil, err
	}

	var columns []string
	for _, c := range ds.Columns() {
		if storedColumn[c] {
			columns = append(columns, c)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM incidents"); err != nil {
		return nil, fmt.Errorf("clear incidents: %w", err)
	}

	imp := &Import{
		Source:     source,
		RowCount:   int64(ds.Len()),
		Columns:    columns,
		ImportedAt: time.Now().UTC().Truncate(time.Second),
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO imports (source, row_count, columns, imported_at) VALUES (?, ?, ?, ?)",
		imp.Source, imp.RowCount, strings.Join(columns, ","), imp.ImportedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert import: %w", err)
	}
	if imp.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("import id: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(incidentColumns)+2), ", ")
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO incidents (import_id, "+quotedColumns()+", recovered_flag) VALUES ("+placeholders+")",
	)
	if err != nil {
		return nil, fmt.Errorf("prepare incident insert: %w", err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(incidentColumns)+2)
	for i := 0; i < ds.Len(); i++ {
		args[0] = imp.ID
		for j, c := range incidentColumns {
			if v, ok := ds.Value(i, c); ok {
				args[j+1] = v
			} else {
				args[j+1] = nil
			}
		}
		args[len(args)-1] = ds.Recovered(i)

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return nil, fmt.Errorf("insert incident %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	return imp, nil
}

// LastImport returns the most recent import, or ErrNotFound.
func (s *SQLiteStore) LastImport(ctx context.Context) (*Import, error) {
	var imp Import
	var columns, tsStr string
	err := s.lastImport.QueryRowContext(ctx).Scan(&imp.ID, &imp.Source, &imp.RowCount, &columns, &tsStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no dataset imported: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("get last import: %w", err)
	}
	if columns != "" {
		imp.Columns = strings.Split(columns, ",")
	}
	imp.ImportedAt, _ = parseTimestamp(tsStr)
	return &imp, nil
}

// LoadDataset rebuilds the imported dataset. Nulls stay null and the stored
// Recovered01 flags are reused as-is.
func (s *SQLiteStore) LoadDataset(ctx context.Context) (*incident.Dataset, error) {
	imp, err := s.LastImport(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+quotedColumns()+", recovered_flag FROM incidents WHERE import_id = ? ORDER BY id",
		imp.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool, len(imp.Columns))
	for _, c := range imp.Columns {
		present[c] = true
	}

	values := make([]sql.NullString, len(incidentColumns))
	dest := make([]interface{}, len(incidentColumns)+1)
	for i := range values {
		dest[i] = &values[i]
	}
	var flag int
	dest[len(dest)-1] = &flag

	var records []incident.Record
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		fields := make(map[string]string, len(incidentColumns)+1)
		for i, c := range incidentColumns {
			if present[c] && values[i].Valid {
				fields[c] = values[i].String
			}
		}
		fields[incident.ColRecovered01] = strconv.Itoa(flag)
		records = append(records, incident.NewRecord(fields))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ds := incident.NewDataset(append(imp.Columns, incident.ColRecovered01), records)
	if err := ds.EnsureRecovered01(); err != nil {
		return nil, err
	}
	return ds, nil
}

// SaveFilter stores sel under name, replacing any previous version.
func (s *SQLiteStore) SaveFilter(ctx context.Context, name string, sel filter.Selections) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("filter name is required")
	}
	if err := sel.Validate(); err != nil {
		return err
	}

	body, err := yaml.Marshal(sel)
	if err != nil {
		return fmt.Errorf("encode filter: %w", err)
	}

	ts := nowFormatted()
	if _, err := s.upsertFilter.ExecContext(ctx, name, string(body), ts, ts); err != nil {
		return fmt.Errorf("save filter: %w", err)
	}
	return nil
}

// GetFilter retrieves a saved filter by name.
func (s *SQLiteStore) GetFilter(ctx context.Context, name string) (*SavedFilter, error) {
	var body, created, updated string
	var f SavedFilter
	err := s.getFilter.QueryRowContext(ctx, name).Scan(&f.Name, &body, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("filter %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("get filter: %w", err)
	}
	if err := decodeFilter(&f, body, created, updated); err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFilters returns every saved filter ordered by name.
func (s *SQLiteStore) ListFilters(ctx context.Context) ([]SavedFilter, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, body, created_at, updated_at FROM saved_filters ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	defer rows.Close()

	filters := []SavedFilter{}
	for rows.Next() {
		var body, created, updated string
		var f SavedFilter
		if err := rows.Scan(&f.Name, &body, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan filter: %w", err)
		}
		if err := decodeFilter(&f, body, created, updated); err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

func decodeFilter(f *SavedFilter, body, created, updated string) error {
	if err := yaml.Unmarshal([]byte(body), &f.Selections); err != nil {
		return fmt.Errorf("decode filter %q: %w", f.Name, err)
	}
	f.CreatedAt, _ = parseTimestamp(created)
	f.UpdatedAt, _ = parseTimestamp(updated)
	return nil
}

// DeleteFilter removes a saved filter by name.
func (s *SQLiteStore) DeleteFilter(ctx context.Context, name string) error {
	res, err := s.deleteFilter.ExecContext(ctx, name)
	if err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("filter %q: %w", name, ErrNotFound)
	}
	return nil
}

// RecordQuery appends an entry to the audit log.
func (s *SQLiteStore) RecordQuery(ctx context.Context, action, detail string) error {
	if _, err := s.insertAudit.ExecContext(ctx, action, detail, nowFormatted()); err != nil {
		return fmt.Errorf("record %s: %w", action, err)
	}
	return nil
}

// RecentQueries returns the newest audit entries first.
func (s *SQLiteStore) RecentQueries(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, action, detail, ts FROM audit_log ORDER BY id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		var tsStr string
		if err := rows.Scan(&e.ID, &e.Action, &e.Detail, &tsStr); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Timestamp, _ = parseTimestamp(tsStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PurgeAll deletes every import, incident, saved filter and audit entry.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	stmts := []string{
		"DELETE FROM incidents",
		"DELETE FROM imports",
		"DELETE FROM saved_filters",
		"DELETE FROM audit_log",
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("purge (%s): %w", stmt, err)
		}
	}
	return nil
}

// GetStats returns aggregate statistics about the stored dataset.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(recovered_flag), 0) FROM incidents",
	).Scan(&stats.TotalIncidents, &stats.RecoveredCount)
	if err != nil {
		return nil, fmt.Errorf("count incidents: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM saved_filters").Scan(&stats.SavedFilters)
	if err != nil {
		return nil, fmt.Errorf("count saved filters: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log").Scan(&stats.Queries)
	if err != nil {
		return nil, fmt.Errorf("count queries: %w", err)
	}

	imp, err := s.LastImport(ctx)
	switch {
	case err == nil:
		stats.LastImport = imp
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	// Top manufacturers
	rows, err := s.db.QueryContext(ctx, `
		SELECT manufacturer, COUNT(*) AS cnt FROM incidents
		WHERE manufacturer IS NOT NULL
		GROUP BY manufacturer ORDER BY cnt DESC, manufacturer LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("top manufacturers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var vc ValueCount
		if err := rows.Scan(&vc.Value, &vc.Count); err != nil {
			return nil, err
		}
		stats.TopManufacturers = append(stats.TopManufacturers, vc)
	}

	return stats, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{
		s.insertAudit, s.upsertFilter, s.getFilter,
		s.deleteFilter, s.lastImport,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
