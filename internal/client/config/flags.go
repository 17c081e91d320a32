package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/flagx"
)

// parseFlags populates Config fields from the flags listed in the package
// documentation. Other arguments are ignored.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "local data directory")
	fs.StringVar(&cfg.StorageDriver, "k", cfg.StorageDriver, "storage driver")
	fs.StringVar(&cfg.DatabaseDSN, "f", cfg.DatabaseDSN, "storage DSN")
	pollInterval := fs.Int("i", int(cfg.AuthPollInterval.Seconds()), "auth re-check interval (in seconds)")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format")

	if err := flagx.Parse(fs, os.Args[1:]); err != nil {
		panic(err)
	}

	cfg.AuthPollInterval = time.Duration(*pollInterval) * time.Second
}
