package cli

import (
	"context"
	"fmt"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/dashboard"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/report"
)

// Execute implements the go-flags Commander interface for CalcCommand.
func (c *CalcCommand) Execute(args []string) error {
	return withSession(c.globals, c.sess, c.executeWithSession)
}

// executeWithSession runs the calculation against a provided session (used by tests).
func (c *CalcCommand) executeWithSession(ctx context.Context, s *session) error {
	grant, err := s.authenticate(c.Access)
	if err != nil {
		return err
	}

	sel, err := c.Filters.Selections(ctx, s.store)
	if err != nil {
		return err
	}

	ds, err := s.dataset(ctx, c.File)
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

	if c.globals != nil && c.globals.JSON {
		return writeJSON(rep)
	}

	fmt.Print(report.Format(rep))
	if rep.Standard.Total == 0 {
		fmt.Println("\nNo incidents match these filters.")
	}
	return nil
}
