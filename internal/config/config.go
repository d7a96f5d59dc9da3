package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/logging"
)

// Default config file path.
const DefaultConfigPath = "~/.config/recovery/config.yaml"

// Config holds all dashboard configuration.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Storage StorageConfig `yaml:"storage"`
	Access  AccessConfig  `yaml:"access"`
	Logging LoggingConfig `yaml:"logging"`
	Report  ReportConfig  `yaml:"report"`
}

type DataConfig struct {
	File string `yaml:"file" env:"RECOVERY_DATA_FILE"`
}

type StorageConfig struct {
	Path        string `yaml:"path" env:"RECOVERY_STORAGE_PATH"`
	SQLiteFile  string `yaml:"sqlite_file" env:"RECOVERY_SQLITE_FILE"`
	JournalMode string `yaml:"journal_mode" env:"RECOVERY_JOURNAL_MODE"`
}

type AccessConfig struct {
	Password      string `yaml:"password" env:"RECOVERY_PASSWORD"`
	TokenSecret   string `yaml:"token_secret" env:"RECOVERY_TOKEN_SECRET"`
	TokenTTLHours int    `yaml:"token_ttl_hours" env:"RECOVERY_TOKEN_TTL_HOURS"`
	Issuer        string `yaml:"issuer" env:"RECOVERY_TOKEN_ISSUER"`
}

// TokenTTL returns the access token lifetime.
func (a AccessConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"RECOVERY_LOG_LEVEL"`
	Format string `yaml:"format" env:"RECOVERY_LOG_FORMAT"`
}

type ReportConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url" env:"RECOVERY_SLACK_WEBHOOK_URL"`
	Channel         string `yaml:"channel" env:"RECOVERY_SLACK_CHANNEL"`
	Schedule        string `yaml:"schedule" env:"RECOVERY_REPORT_SCHEDULE"`
	Timezone        string `yaml:"timezone" env:"RECOVERY_REPORT_TIMEZONE"`
	SavedFilter     string `yaml:"saved_filter" env:"RECOVERY_REPORT_FILTER"`
}

// Location resolves the report timezone; empty means the local zone.
func (r ReportConfig) Location() (*time.Location, error) {
	if r.Timezone == "" || strings.EqualFold(r.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(r.Timezone)
}

// Load reads a YAML config file at path, merges it with defaults and
// applies RECOVERY_* environment overrides.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overwrites fields whose environment variable is set.
func applyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// ExpandPath is expandPath for callers outside the package.
func ExpandPath(path string) (string, error) { return expandPath(path) }

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		// The file may end up holding a password; keep it private.
		if err := os.WriteFile(path, data, 0600); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		if err := applyEnv(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return Load(path)
}

// DBPath returns the expanded path of the SQLite database.
func (c *Config) DBPath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

var journalModes = map[string]bool{
	"delete": true, "truncate": true, "persist": true,
	"memory": true, "wal": true, "off": true,
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: must be text or json, got %q", c.Logging.Format)
	}

	if c.Storage.SQLiteFile == "" {
		return fmt.Errorf("storage.sqlite_file is required")
	}
	if !journalModes[strings.ToLower(c.Storage.JournalMode)] {
		return fmt.Errorf("storage.journal_mode: unsupported mode %q", c.Storage.JournalMode)
	}

	if c.Access.TokenTTLHours <= 0 {
		return fmt.Errorf("access.token_ttl_hours must be positive")
	}
	if c.Access.Password != "" && c.Access.TokenSecret == "" {
		return fmt.Errorf("access.token_secret is required when a password is set")
	}

	if c.Report.Schedule != "" {
		if _, err := cron.ParseStandard(c.Report.Schedule); err != nil {
			return fmt.Errorf("report.schedule: %w", err)
		}
	}
	if _, err := c.Report.Location(); err != nil {
		return fmt.Errorf("report.timezone: %w", err)
	}

	return nil
}
