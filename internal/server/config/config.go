// Package config handles configuration for the LoanDesk API server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/loandesk/internal/logging"
	"github.com/dmitrijs2005/loandesk/internal/storage"
)

// Config holds runtime settings for the LoanDesk API server.
//
// Fields:
//   - HTTPAddr: bind address for the HTTP API.
//   - StorageDriver / DatabaseDSN: key/value backend (memory, sqlite, postgres, s3)
//     and its DSN (file path for sqlite, pgx DSN for postgres).
//   - SecretKey: HMAC secret for signing access tokens (HS256). Do not use the default in prod.
//   - SessionValidity: lifetime of a signed-in session.
//   - AuthPollInterval: fallback re-check period for auth event streams.
//   - SessionPruneSchedule: cron expression of the expired-session cleanup job.
//   - S3*: object storage settings, used when StorageDriver is s3.
//   - DashboardAPIURL: base URL of the back-office API; empty disables the proxy.
//   - AllowedOrigins: CORS origins.
//   - RateLimit / RateBurst: per-client limit for public endpoints (requests per second).
//   - LogFormat: json or console.
type Config struct {
	HTTPAddr             string
	StorageDriver        string
	DatabaseDSN          string
	SecretKey            string
	SessionValidity      time.Duration
	AuthPollInterval     time.Duration
	SessionPruneSchedule string
	S3RootUser           string
	S3RootPassword       string
	S3Bucket             string
	S3Region             string
	S3BaseEndpoint       string
	DashboardAPIURL      string
	AllowedOrigins       []string
	RateLimit            int
	RateBurst            int
	LogFormat            string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.StorageDriver = storage.DriverSQLite
	c.DatabaseDSN = "loandesk.db"
	c.SecretKey = "secretKey"
	c.SessionValidity = 7 * 24 * time.Hour
	c.AuthPollInterval = 5 * time.Second
	c.SessionPruneSchedule = "@every 1h"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "loandesk"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.AllowedOrigins = []string{"http://localhost:5173"}
	c.RateLimit = 5
	c.RateBurst = 10
	c.LogFormat = logging.FormatJSON
}

// StorageOptions converts the storage related fields for storage.Open.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver: c.StorageDriver,
		DSN:    c.DatabaseDSN,
		S3: storage.S3Options{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		},
	}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
