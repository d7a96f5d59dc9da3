package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Job produces and delivers one report.
type Job func(ctx context.Context) error

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule parses a standard 5-field cron expression
// (minute hour day-of-month month day-of-week), e.g. "0 8 * * 1".
func ParseSchedule(expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("schedule is empty")
	}
	sched, err := scheduleParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return sched, nil
}

// Scheduler runs a Job on a cron schedule.
type Scheduler struct {
	expr     string
	schedule cron.Schedule
	loc      *time.Location
	job      Job
	logger   *slog.Logger
}

// NewScheduler validates expr. A nil loc means the local timezone.
func NewScheduler(expr string, loc *time.Location, job Job, logger *slog.Logger) (*Scheduler, error) {
	sched, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		expr:     strings.TrimSpace(expr),
		schedule: sched,
		loc:      loc,
		job:      job,
		logger:   logger,
	}, nil
}

// Next returns the first run after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.loc))
}

// Run blocks until ctx is cancelled, running the job on schedule. A job
// still in flight is waited for before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithLocation(s.loc), cron.WithParser(scheduleParser))
	if _, err := c.AddFunc(s.expr, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule report: %w", err)
	}

	s.logger.Info("report scheduled", "schedule", s.expr, "timezone", s.loc.String(),
		"next", s.Next(time.Now()).Format(time.RFC3339))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled report failed", "error", err)
		return
	}
	s.logger.Info("scheduled report sent", "duration", time.Since(start).Round(time.Millisecond),
		"next", s.Next(time.Now()).Format(time.RFC3339))
}
