package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/aggregate"
)

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	return withSession(c.globals, c.sess, c.executeWithSession)
}

// executeWithSession runs the import against a provided session (used by tests).
func (c *ImportCommand) executeWithSession(ctx context.Context, s *session) error {
	path := c.File
	if path == "" {
		path = s.cfg.Data.File
	}
	if path == "" {
		return fmt.Errorf("--file is required (or set data.file in the config)")
	}

	start := time.Now()
	ds, err := readFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	imp, err := s.store.ReplaceIncidents(ctx, path, ds)
	if err != nil {
		return fmt.Errorf("storing incidents: %w", err)
	}
	if err := s.store.RecordQuery(ctx, "import", path); err != nil {
		s.logger.Warn("failed to record import", "error", err)
	}

	totals := aggregate.Aggregate(ds)
	s.logger.Info("imported incidents", "path", path, "rows", imp.RowCount,
		"duration", time.Since(start).Round(time.Millisecond))

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]interface{}{
			"import_id":   imp.ID,
			"source":      imp.Source,
			"rows":        imp.RowCount,
			"recovered":   totals.Recovered,
			"columns":     imp.Columns,
			"imported_at": imp.ImportedAt.Format(time.RFC3339),
		})
	}

	fmt.Printf("Imported %s incidents from %s\n", formatNumber(imp.RowCount), path)
	fmt.Printf("  Recovered: %s (%.1f%%)\n", formatNumber(int64(totals.Recovered)), totals.Rate*100)
	fmt.Printf("  Columns:   %d\n", len(imp.Columns))
	return nil
}
