package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/filter"
)

type savedFilterJSON struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Selections  filter.Selections `json:"selections"`
	UpdatedAt   string            `json:"updated_at"`
}

// Execute implements the go-flags Commander interface for SaveFilterCommand.
func (c *SaveFilterCommand) Execute(args []string) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("--name is required for save-filter command")
	}
	return withSession(c.globals, c.sess, c.executeWithSession)
}

// executeWithSession saves the filter against a provided session (used by tests).
func (c *SaveFilterCommand) executeWithSession(ctx context.Context, s *session) error {
	sel, err := c.Filters.Selections(ctx, s.store)
	if err != nil {
		return err
	}
	if sel.IsEmpty() {
		return fmt.Errorf("no filters given: nothing to save")
	}

	if err := s.store.SaveFilter(ctx, c.Name, sel); err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(savedFilterJSON{Name: c.Name, Description: sel.String(), Selections: sel})
	}
	fmt.Printf("Saved filter %q: %s\n", c.Name, sel.String())
	return nil
}

// Execute implements the go-flags Commander interface for FiltersCommand.
func (c *FiltersCommand) Execute(args []string) error {
	return withSession(c.globals, c.sess, c.executeWithSession)
}

// executeWithSession lists saved filters from a provided session (used by tests).
func (c *FiltersCommand) executeWithSession(ctx context.Context, s *session) error {
	filters, err := s.store.ListFilters(ctx)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		out := make([]savedFilterJSON, len(filters))
		for i, f := range filters {
			out[i] = savedFilterJSON{
				Name:        f.Name,
				Description: f.Selections.String(),
				Selections:  f.Selections,
				UpdatedAt:   f.UpdatedAt.UTC().Format(time.RFC3339),
			}
		}
		return writeJSON(out)
	}

	if len(filters) == 0 {
		fmt.Println("No saved filters.")
		return nil
	}
	for _, f := range filters {
		fmt.Printf("%-20s %s  %s\n", f.Name, f.UpdatedAt.Local().Format("2006-01-02"), f.Selections.String())
	}
	return nil
}

// Execute implements the go-flags Commander interface for DeleteFilterCommand.
func (c *DeleteFilterCommand) Execute(args []string) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("--name is required for delete-filter command")
	}
	return withSession(c.globals, c.sess, c.executeWithSession)
}

// executeWithSession deletes the filter from a provided session (used by tests).
func (c *DeleteFilterCommand) executeWithSession(ctx context.Context, s *session) error {
	if err := s.store.DeleteFilter(ctx, c.Name); err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]interface{}{"deleted": c.Name})
	}
	fmt.Printf("Deleted filter %q\n", c.Name)
	return nil
}
