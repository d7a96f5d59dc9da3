package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	goflags "github.com/jessevdk/go-flags"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/config"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/logging"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/storage"
)

const fleetCSV = `Year,Month,manufacturer,model,product_package,client_name,recovered
2023,1,Toyota,Hilux,Basic,ACME Corp,Yes
2023,2,Toyota,Corolla,Premium,Beta Ltd,No
2023,3,Nissan,Navara,Basic,acme logistics,Yes
2023,4,Toyota Trucks,Dyna,Premium,,Yes
2024,1,Toyota,Hilux,Basic,Gamma,No
2024,2,Ford,Ranger,,,Yes
`

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// newTestSession returns a session over a migrated in-memory store and
// default config.
func newTestSession(t *testing.T) *session {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db).Run(context.Background()))

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &session{
		cfg:    config.DefaultConfig(),
		store:  store,
		db:     db,
		dbPath: ":memory:",
		logger: logging.Discard(),
	}
}

// writeFile writes content into a temp file and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// importFleet loads fleetCSV into the session's store.
func importFleet(t *testing.T, s *session) {
	t.Helper()
	ds, err := readFile(writeFile(t, "fleet.csv", fleetCSV))
	require.NoError(t, err)
	_, err = s.store.ReplaceIncidents(context.Background(), "fleet.csv", ds)
	require.NoError(t, err)
}

// parseOnly parses args without executing the selected command.
func parseOnly(t *testing.T, args ...string) (*GlobalFlags, *commands, error) {
	t.Helper()
	p, globals, cmds := buildParser("test")
	p.Options &^= goflags.PrintErrors
	p.CommandHandler = func(goflags.Commander, []string) error { return nil }
	_, err := p.ParseArgs(args)
	return globals, cmds, err
}
