package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	// Confirmation prompt unless --force
	if !c.Force {
		if err := confirmPurge(os.Stdin); err != nil {
			return err
		}
	}

	return withSession(c.globals, c.sess, c.executeWithSession)
}

func confirmPurge(in io.Reader) error {
	fmt.Println("⚠ WARNING: This will permanently delete ALL stored data.")
	fmt.Println("  - The imported incident dataset")
	fmt.Println("  - All saved filters")
	fmt.Println("  - The query audit log")
	fmt.Println()
	fmt.Println("This action cannot be undone.")
	fmt.Println()
	fmt.Print(`Type "PURGE" to confirm: `)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return fmt.Errorf("aborted: no input received")
	}
	if strings.TrimSpace(scanner.Text()) != "PURGE" {
		return fmt.Errorf("aborted: confirmation text did not match")
	}
	return nil
}

// executeWithSession purges the store of a provided session (used by tests).
func (c *PurgeCommand) executeWithSession(ctx context.Context, s *session) error {
	if err := s.store.PurgeAll(ctx); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	s.logger.Info("purged all data", "path", s.dbPath)

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]interface{}{
			"purged":  true,
			"message": "all data deleted",
		})
	}

	fmt.Println("Purged all data. The store is empty.")
	return nil
}
