package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string           `json:"version"`
	DatabasePath      string           `json:"database_path"`
	DatabaseSizeBytes int64            `json:"database_size_bytes"`
	TotalIncidents    int64            `json:"total_incidents"`
	RecoveredCount    int64            `json:"recovered"`
	RecoveryRate      float64          `json:"recovery_rate"`
	Source            string           `json:"source,omitempty"`
	ImportedAt        string           `json:"imported_at,omitempty"`
	SavedFilters      int64            `json:"saved_filters"`
	Queries           int64            `json:"queries"`
	TopManufacturers  []valueCountJSON `json:"top_manufacturers"`
	PasswordProtected bool             `json:"password_protected"`
	Report            reportStatusJSON `json:"report"`
}

type valueCountJSON struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

type reportStatusJSON struct {
	SlackConfigured bool   `json:"slack_configured"`
	Schedule        string `json:"schedule,omitempty"`
	Timezone        string `json:"timezone,omitempty"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	return withSession(c.globals, c.sess, c.executeWithSession)
}

// executeWithSession runs status against a provided session (used by tests).
func (c *StatusCommand) executeWithSession(ctx context.Context, s *session) error {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	stats.DatabaseSizeBytes = getDatabaseSize(s.db, s.dbPath)

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(s, stats)
	}
	return c.printStatusHuman(s, stats)
}

func recoveryRate(stats *storage.Stats) float64 {
	if stats.TotalIncidents == 0 {
		return 0
	}
	return float64(stats.RecoveredCount) / float64(stats.TotalIncidents)
}

func (c *StatusCommand) printStatusHuman(s *session, stats *storage.Stats) error {
	fmt.Println("Recovery Dashboard Status")
	fmt.Println("=========================")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", s.dbPath, formatBytes(stats.DatabaseSizeBytes))

	if stats.LastImport != nil {
		fmt.Printf("Dataset:       %s\n", stats.LastImport.Source)
		fmt.Printf("Imported:      %s\n", stats.LastImport.ImportedAt.Local().Format("2006-01-02 15:04"))
	} else {
		fmt.Println("Dataset:       none imported")
	}
	fmt.Printf("Incidents:     %s\n", formatNumber(stats.TotalIncidents))
	if stats.TotalIncidents > 0 {
		fmt.Printf("Recovered:     %s (%.1f%%)\n", formatNumber(stats.RecoveredCount), recoveryRate(stats)*100)
	}
	fmt.Printf("Saved filters: %s\n", formatNumber(stats.SavedFilters))
	fmt.Printf("Queries:       %s\n", formatNumber(stats.Queries))

	if len(stats.TopManufacturers) > 0 {
		fmt.Println()
		fmt.Println("Top Manufacturers:")
		for _, m := range stats.TopManufacturers {
			fmt.Printf("  %-20s %s\n", m.Value, formatNumber(m.Count))
		}
	}

	fmt.Println()
	if s.cfg.Access.Password != "" {
		fmt.Println("Access:        password protected")
	} else {
		fmt.Println("Access:        open")
	}
	if s.cfg.Report.SlackWebhookURL != "" {
		fmt.Printf("Slack report:  %s (%s)\n", s.cfg.Report.Schedule, s.cfg.Report.Timezone)
	} else {
		fmt.Println("Slack report:  not configured")
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(s *session, stats *storage.Stats) error {
	out := statusJSON{
		Version:           c.version,
		DatabasePath:      s.dbPath,
		DatabaseSizeBytes: stats.DatabaseSizeBytes,
		TotalIncidents:    stats.TotalIncidents,
		RecoveredCount:    stats.RecoveredCount,
		RecoveryRate:      recoveryRate(stats),
		SavedFilters:      stats.SavedFilters,
		Queries:           stats.Queries,
		TopManufacturers:  make([]valueCountJSON, len(stats.TopManufacturers)),
		PasswordProtected: s.cfg.Access.Password != "",
		Report: reportStatusJSON{
			SlackConfigured: s.cfg.Report.SlackWebhookURL != "",
			Schedule:        s.cfg.Report.Schedule,
			Timezone:        s.cfg.Report.Timezone,
		},
	}

	if stats.LastImport != nil {
		out.Source = stats.LastImport.Source
		out.ImportedAt = stats.LastImport.ImportedAt.UTC().Format(time.RFC3339)
	}

	for i, m := range stats.TopManufacturers {
		out.TopManufacturers[i] = valueCountJSON{Value: m.Value, Count: m.Count}
	}

	return writeJSON(out)
}

// getDatabaseSize returns the database file size in bytes.
// For on-disk databases, it uses os.Stat. For in-memory databases,
// it queries page_count * page_size.
func getDatabaseSize(db *sql.DB, dbPath string) int64 {
	// Try file stat first
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}

	// Fallback: query SQLite for in-memory or unavailable file
	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}
