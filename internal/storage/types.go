package storage

import (
	"errors"
	"time"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/filter"
)

// ErrNotFound is returned when a named row does not exist.
var ErrNotFound = errors.New("not found")

// Import describes one dataset load.
type Import struct {
	ID         int64
	Source     string
	RowCount   int64
	Columns    []string
	ImportedAt time.Time
}

// SavedFilter is a named set of filter selections.
type SavedFilter struct {
	Name       string
	Selections filter.Selections
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AuditEntry is one recorded dashboard action.
type AuditEntry struct {
	ID        int64
	Action    string
	Detail    string
	Timestamp time.Time
}

// Stats holds aggregate statistics about the stored dataset.
type Stats struct {
	TotalIncidents    int64
	RecoveredCount    int64
	SavedFilters      int64
	Queries           int64
	LastImport        *Import
	DatabaseSizeBytes int64
	TopManufacturers  []ValueCount
}

// ValueCount pairs a dimension value with its incident count.
type ValueCount struct {
	Value string
	Count int64
}
