// Package dashboard answers recovery-rate queries over one loaded dataset.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/access"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/aggregate"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/filter"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/incident"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/logging"
)

// Recorder receives one entry per answered query.
type Recorder interface {
	RecordQuery(ctx context.Context, action, detail string) error
}

// Report is the answer to one Calculate call.
type Report struct {
	Standard aggregate.Result  `json:"standard"`
	Focus    *aggregate.Focus  `json:"focus,omitempty"`
	Active   []string          `json:"active"`
	Filters  filter.Selections `json:"filters"`
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithRecorder records every calculation, e.g. into the audit log.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// Service holds the dataset for a session. The dataset is never mutated
// after New.
type Service struct {
	data     *incident.Dataset
	logger   *slog.Logger
	recorder Recorder
}

// New prepares ds for querying, deriving Recovered01 if needed.
func New(ds *incident.Dataset, opts ...Option) (*Service, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is required")
	}
	if err := ds.EnsureRecovered01(); err != nil {
		return nil, err
	}

	s := &Service{data: ds, logger: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Len returns the number of loaded incidents.
func (s *Service) Len() int { return s.data.Len() }

// Calculate filters the dataset by sel and aggregates the result. When a
// manufacturer, model or package is selected or searched, the report also
// carries the focus comparison against the period baseline.
func (s *Service) Calculate(ctx context.Context, grant access.Grant, sel filter.Selections) (*Report, error) {
	if err := access.Check(grant); err != nil {
		return nil, err
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	subset, err := filter.Apply(s.data, sel)
	if err != nil {
		return nil, fmt.Errorf("apply filters: %w", err)
	}

	report := &Report{
		Standard: aggregate.Aggregate(subset),
		Active:   sel.Active(),
		Filters:  sel,
	}

	if sel.FocusEngaged() {
		baseline, err := filter.Apply(s.data, sel.Period())
		if err != nil {
			return nil, fmt.Errorf("apply period filters: %w", err)
		}
		focus := aggregate.FocusAggregate(subset, baseline)
		focus.Label = aggregate.FocusLabel(sel)
		report.Focus = &focus
	}

	s.logger.Debug("calculated recovery rate",
		"filters", sel.String(),
		"total", report.Standard.Total,
		"recovered", report.Standard.Recovered,
		"focus", report.Focus != nil,
	)

	if s.recorder != nil {
		if err := s.recorder.RecordQuery(ctx, "calc", sel.String()); err != nil {
			s.logger.Warn("failed to record query", "error", err)
		}
	}

	return report, nil
}

// Options lists the selectable values of a dimension, narrowed by search.
func (s *Service) Options(ctx context.Context, grant access.Grant, dimension, search string) ([]string, error) {
	if err := access.Check(grant); err != nil {
		return nil, err
	}

	d, ok := filter.Lookup(dimension)
	if !ok {
		return nil, fmt.Errorf("%w: %q", filter.ErrUnknownDimension, dimension)
	}

	values, err := filter.Eligible(s.data, d, search)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "listed options", "dimension", d.Name, "search", search, "count", len(values))
	return values, nil
}
