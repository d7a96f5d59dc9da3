package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/access"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/config"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/incident"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/loader"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/logging"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/storage"
)

var printer = message.NewPrinter(language.English)

// session bundles what a command needs: config, logger and the open store.
type session struct {
	cfg    *config.Config
	store  *storage.SQLiteStore
	db     *sql.DB
	dbPath string
	logger *slog.Logger
}

// openSession loads the config, installs the logger and opens the store.
func openSession(globals *GlobalFlags) (*session, error) {
	var (
		cfg *config.Config
		err error
	)
	if globals != nil && globals.Config != "" {
		cfg, err = config.Load(globals.Config)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if globals != nil && globals.Verbose {
		level = slog.LevelDebug
	}
	logger := logging.Init(cfg.Logging.Format, level)

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	store, db, err := openStore(dbPath, cfg.Storage.JournalMode)
	if err != nil {
		return nil, err
	}

	logger.Debug("opened store", "path", dbPath)
	return &session{cfg: cfg, store: store, db: db, dbPath: dbPath, logger: logger}, nil
}

// openStore opens the SQLite database at dbPath, runs migrations, and
// returns a ready-to-use store and the underlying *sql.DB.
func openStore(dbPath, journalMode string) (*storage.SQLiteStore, *sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	runner := storage.NewMigrationRunner(db).WithJournalMode(journalMode)
	if err := runner.Run(context.Background()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create store: %w", err)
	}

	return store, db, nil
}

func (s *session) Close() {
	s.store.Close()
	s.db.Close()
}

// withSession runs fn against the injected session, or one opened from
// the config and closed afterwards.
func withSession(globals *GlobalFlags, injected *session, fn func(ctx context.Context, s *session) error) error {
	s := injected
	if s == nil {
		var err error
		s, err = openSession(globals)
		if err != nil {
			return err
		}
		defer s.Close()
	}
	return fn(context.Background(), s)
}

// issuer builds the access issuer from config.
func (s *session) issuer() (*access.Issuer, error) {
	return access.NewIssuer(access.Config{
		Password: s.cfg.Access.Password,
		Secret:   s.cfg.Access.TokenSecret,
		Issuer:   s.cfg.Access.Issuer,
		TTL:      s.cfg.Access.TokenTTL(),
	})
}

// authenticate resolves the command's credentials into a grant.
func (s *session) authenticate(creds AccessFlags) (access.Grant, error) {
	iss, err := s.issuer()
	if err != nil {
		return access.Grant{}, err
	}
	g, err := iss.Authenticate(creds.Token, creds.Password)
	if errors.Is(err, access.ErrNoGrant) {
		return access.Grant{}, fmt.Errorf("%w: the dashboard is password protected, pass --token or --password", err)
	}
	return g, err
}

// dataset loads incidents from file when given, else from the store, else
// from the configured data file.
func (s *session) dataset(ctx context.Context, file string) (*incident.Dataset, error) {
	if file != "" {
		return readFile(file)
	}

	ds, err := s.store.LoadDataset(ctx)
	if err == nil {
		return ds, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if s.cfg.Data.File != "" {
		s.logger.Debug("no imported dataset, reading data.file", "path", s.cfg.Data.File)
		return readFile(s.cfg.Data.File)
	}
	return nil, fmt.Errorf("no dataset available: run the import command or pass --file")
}

func readFile(path string) (*incident.Dataset, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return loader.ParseFile(expanded)
}

// writeJSON prints v as indented JSON on stdout.
func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats n with thousands separators.
func formatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}
