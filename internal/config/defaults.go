package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			File: "",
		},
		Storage: StorageConfig{
			Path:        "~/.config/recovery",
			SQLiteFile:  "recovery.db",
			JournalMode: "wal",
		},
		Access: AccessConfig{
			Password:      "",
			TokenSecret:   "",
			TokenTTLHours: 12,
			Issuer:        "recovery-dashboard",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Report: ReportConfig{
			Schedule: "0 8 * * 1",
			Timezone: "Local",
		},
	}
}
