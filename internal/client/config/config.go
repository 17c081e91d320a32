package config

import (
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/logging"
	"github.com/dmitrijs2005/loandesk/internal/storage"
)

// Config holds runtime settings for the LoanDesk CLI.
type Config struct {
	DataDir          string
	StorageDriver    string
	DatabaseDSN      string
	AuthPollInterval time.Duration
	LogFormat        string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "loandesk-data"
	c.StorageDriver = storage.DriverSQLite
	c.AuthPollInterval = 5 * time.Second
	c.LogFormat = logging.FormatConsole
}

// StorageOptions resolves the backend for storage.Open. dataDir is the
// absolute data directory; a sqlite store without a DSN lives there.
func (c *Config) StorageOptions(dataDir string) storage.Options {
	dsn := c.DatabaseDSN
	if dsn == "" && c.StorageDriver == storage.DriverSQLite {
		dsn = filepath.Join(dataDir, "loandesk.db")
	}
	return storage.Options{Driver: c.StorageDriver, DSN: dsn}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
