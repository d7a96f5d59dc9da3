package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/access"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/dashboard"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/report"
)

// Execute implements the go-flags Commander interface for ReportCommand.
func (c *ReportCommand) Execute(args []string) error {
	return withSession(c.globals, c.sess, c.executeWithSession)
}

// executeWithSession sends or schedules the report from a provided session (used by tests).
func (c *ReportCommand) executeWithSession(ctx context.Context, s *session) error {
	grant, err := s.authenticate(c.Access)
	if err != nil {
		return err
	}

	var notifier *report.SlackNotifier
	if !c.DryRun {
		notifier, err = report.NewSlackNotifier(s.cfg.Report.SlackWebhookURL, s.cfg.Report.Channel)
		if err != nil {
			return fmt.Errorf("%w (set report.slack_webhook_url or use --dry-run)", err)
		}
	}

	job := func(ctx context.Context) error {
		g, err := c.renew(s, grant)
		if err != nil {
			return err
		}
		return c.send(ctx, s, g, notifier)
	}

	if !c.Schedule {
		return job(ctx)
	}

	loc, err := s.cfg.Report.Location()
	if err != nil {
		return err
	}
	sched, err := report.NewScheduler(s.cfg.Report.Schedule, loc, job, s.logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Printf("Posting reports on %q (%s). Press Ctrl+C to stop.\n", s.cfg.Report.Schedule, loc)
	return sched.Run(ctx)
}

// renew returns grant while it holds, else authenticates again. A password
// yields a fresh grant; a lapsed token fails the run.
func (c *ReportCommand) renew(s *session, grant access.Grant) (access.Grant, error) {
	if !grant.Expired() {
		return grant, nil
	}
	s.logger.Info("access grant expired, authenticating again")
	return s.authenticate(c.Access)
}

// send computes one report from a freshly loaded dataset and delivers it.
func (c *ReportCommand) send(ctx context.Context, s *session, grant access.Grant, notifier *report.SlackNotifier) error {
	flags := c.Filters
	if flags.IsEmpty() && s.cfg.Report.SavedFilter != "" {
		flags.Saved = s.cfg.Report.SavedFilter
	}
	sel, err := flags.Selections(ctx, s.store)
	if err != nil {
		return err
	}

	ds, err := s.dataset(ctx, "")
	if err != nil {
		return err
	}
	svc, err := dashboard.New(ds, dashboard.WithLogger(s.logger), dashboard.WithRecorder(s.store))
	if err != nil {
		return err
	}
	rep, err := svc.Calculate(ctx, grant, sel)
	if err != nil {
		return err
	}

	if notifier == nil {
		if c.globals != nil && c.globals.JSON {
			return writeJSON(rep)
		}
		fmt.Print(report.Format(rep))
		return nil
	}

	if err := notifier.Notify(ctx, rep); err != nil {
		return err
	}
	if err := s.store.RecordQuery(ctx, "report", sel.String()); err != nil {
		s.logger.Warn("failed to record report", "error", err)
	}
	fmt.Println("Report posted to Slack.")
	return nil
}
