package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Config captures environment driven configuration for the publisher binary.
type Config struct {
	SQLiteDSN string
	LogLevel  slog.Level
}

// Load parses configuration values from the current process environment,
// applying defaults for optional fields and reporting every invalid entry at
// once.
func Load() (Config, error) {
	cfg := Config{
		SQLiteDSN: "file:scheduler.db?_pragma=foreign_keys(1)",
		LogLevel:  slog.LevelInfo,
	}

	invalid := make([]string, 0, 1)

	if dsn := strings.TrimSpace(os.Getenv("PUBLISHER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if level := strings.TrimSpace(os.Getenv("PUBLISHER_LOG_LEVEL")); level != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(level)); err != nil {
			invalid = append(invalid, "PUBLISHER_LOG_LEVEL")
		} else {
			cfg.LogLevel = parsed
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
