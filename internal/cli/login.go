package cli

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Execute implements the go-flags Commander interface for LoginCommand.
func (c *LoginCommand) Execute(args []string) error {
	if c.Password == "" {
		return fmt.Errorf("--password is required for login command")
	}
	return withSession(c.globals, c.sess, c.executeWithSession)
}

// executeWithSession issues a token against a provided session (used by tests).
func (c *LoginCommand) executeWithSession(ctx context.Context, s *session) error {
	iss, err := s.issuer()
	if err != nil {
		return err
	}
	if !iss.Protected() {
		return fmt.Errorf("no password is configured: the dashboard is open")
	}

	token, err := iss.Login(c.Password)
	if err != nil {
		s.logger.Warn("login failed", "error", err)
		return err
	}
	grant, err := iss.Verify(token)
	if err != nil {
		return err
	}
	if err := s.store.RecordQuery(ctx, "login", grant.Subject()); err != nil {
		s.logger.Warn("failed to record login", "error", err)
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]interface{}{
			"token":      token,
			"expires_at": grant.ExpiresAt().UTC().Format(time.RFC3339),
		})
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "Token valid until %s. Pass it with --token or RECOVERY_TOKEN.\n",
		grant.ExpiresAt().Local().Format("2006-01-02 15:04"))
	return nil
}
