package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the settings shared by every command
type Config struct {
	DataSource        string        `env:"ORGADMIN_DATA_SOURCE" envDefault:"./data"`
	DownloadDir       string        `env:"ORGADMIN_DOWNLOAD_DIR"`
	HistoryDB         string        `env:"ORGADMIN_HISTORY_DB"`
	LogLevel          string        `env:"ORGADMIN_LOG_LEVEL" envDefault:"info"`
	Addr              string        `env:"ORGADMIN_ADDR" envDefault:"127.0.0.1:8080"`
	FetchTimeout      time.Duration `env:"ORGADMIN_FETCH_TIMEOUT" envDefault:"10s"`
	DeferNestedExport bool          `env:"ORGADMIN_DEFER_NESTED_EXPORT" envDefault:"false"`
	UniqueIDs         bool          `env:"ORGADMIN_UNIQUE_IDS" envDefault:"false"`
}

// Load reads the given .env files when they exist, then the environment.
// Callers apply their overrides and then call Validate.
func Load(envFiles ...string) (*Config, error) {
	existing := make([]string, 0, len(envFiles))
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("load env files: %w", err)
		}
	}

	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	home, _ := os.UserHomeDir()
	if c.DownloadDir == "" {
		c.DownloadDir = filepath.Join(home, "Downloads")
	}
	if c.HistoryDB == "" {
		c.HistoryDB = filepath.Join(home, ".orgadmin", "history.db")
	}
	return c, nil
}

// Validate checks the settings for errors
func (c *Config) Validate() error {
	if c.DataSource == "" {
		return errors.New("data source is required")
	}
	if c.DownloadDir == "" {
		return errors.New("download dir is required")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if sameDir(c.DataSource, c.DownloadDir) {
		return fmt.Errorf("download dir %q must differ from the data source", c.DownloadDir)
	}
	return nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
