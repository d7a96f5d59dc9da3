package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/dashboard"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/filter"
)

type dimensionJSON struct {
	Name     string `json:"name"`
	Column   string `json:"column"`
	Label    string `json:"label"`
	Section  string `json:"section"`
	Kind     string `json:"kind"`
	Temporal bool   `json:"temporal,omitempty"`
	Group    bool   `json:"group,omitempty"`
}

// Execute implements the go-flags Commander interface for ValuesCommand.
func (c *ValuesCommand) Execute(args []string) error {
	if c.Dimension == "" {
		return c.printDimensions()
	}
	return withSession(c.globals, c.sess, c.executeWithSession)
}

// executeWithSession lists the options of one dimension (used by tests).
func (c *ValuesCommand) executeWithSession(ctx context.Context, s *session) error {
	if c.Dimension == "" {
		return c.printDimensions()
	}

	grant, err := s.authenticate(c.Access)
	if err != nil {
		return err
	}

	ds, err := s.dataset(ctx, c.File)
	if err != nil {
		return err
	}
	svc, err := dashboard.New(ds, dashboard.WithLogger(s.logger))
	if err != nil {
		return err
	}

	values, err := svc.Options(ctx, grant, c.Dimension, c.Search)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]interface{}{
			"dimension": c.Dimension,
			"search":    c.Search,
			"values":    values,
		})
	}

	if len(values) == 0 {
		fmt.Println("No values.")
		return nil
	}
	for _, v := range values {
		fmt.Println(v)
	}
	return nil
}

func (c *ValuesCommand) printDimensions() error {
	dims := filter.Dimensions()

	if c.globals != nil && c.globals.JSON {
		out := make([]dimensionJSON, len(dims))
		for i, d := range dims {
			out[i] = dimensionJSON{
				Name: d.Name, Column: d.Column, Label: d.Label, Section: d.Section,
				Kind: d.Kind.String(), Temporal: d.Temporal, Group: d.Group,
			}
		}
		return writeJSON(out)
	}

	section := ""
	for _, d := range dims {
		if d.Section != section {
			if section != "" {
				fmt.Println()
			}
			section = d.Section
			fmt.Printf("%s\n", section)
		}
		var notes []string
		if d.Kind == filter.Text {
			notes = append(notes, "text contains")
		}
		if d.Group {
			notes = append(notes, "searchable")
		}
		if d.Temporal {
			notes = append(notes, "period")
		}
		line := fmt.Sprintf("  %-18s %s", d.Name, d.Label)
		if len(notes) > 0 {
			line += " (" + strings.Join(notes, ", ") + ")"
		}
		fmt.Println(line)
	}
	return nil
}
