package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/flagx"
	"github.com/dmitrijs2005/loandesk/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Intervals use
// timex.Duration so both "5s" and integer nanoseconds are accepted. Fields
// left out of the file keep their current values.
type JsonConfig struct {
	HTTPAddr             string          `json:"http_addr"`
	StorageDriver        string          `json:"storage_driver"`
	DatabaseDSN          string          `json:"database_dsn"`
	SecretKey            string          `json:"secret_key"`
	SessionValidity      *timex.Duration `json:"session_validity"`
	AuthPollInterval     *timex.Duration `json:"auth_poll_interval"`
	SessionPruneSchedule string          `json:"session_prune_schedule"`
	S3RootUser           string          `json:"s3_root_user"`
	S3RootPassword       string          `json:"s3_root_password"`
	S3Bucket             string          `json:"s3_bucket"`
	S3Region             string          `json:"s3_region"`
	S3BaseEndpoint       string          `json:"s3_base_endpoint"`
	DashboardAPIURL      string          `json:"dashboard_api_url"`
	AllowedOrigins       []string        `json:"allowed_origins"`
	RateLimit            *int            `json:"rate_limit"`
	RateBurst            *int            `json:"rate_burst"`
	LogFormat            string          `json:"log_format"`
}

// parseJson overlays config with the JSON file named by -c or -config.
// Without either flag nothing is loaded. An unreadable file or invalid JSON
// panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.StorageDriver, c.StorageDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.SessionValidity, c.SessionValidity)
	setDuration(&config.AuthPollInterval, c.AuthPollInterval)
	setString(&config.SessionPruneSchedule, c.SessionPruneSchedule)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.DashboardAPIURL, c.DashboardAPIURL)
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.RateLimit != nil {
		config.RateLimit = *c.RateLimit
	}
	if c.RateBurst != nil {
		config.RateBurst = *c.RateBurst
	}
	setString(&config.LogFormat, c.LogFormat)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
