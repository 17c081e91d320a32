package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-k string   storage driver: memory, sqlite, postgres, s3
//	-d string   storage DSN
//	-s string   JWT HMAC secret key
//	-t int      session validity, hours
//	-i int      auth event re-check interval, seconds (0 disables)
//	-x string   session cleanup cron expression
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-m string   back-office API base URL
//	-o string   comma separated CORS origins
//	-r int      public endpoint rate, requests per second
//	-n int      public endpoint burst
//	-l string   log format: json or console
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.StorageDriver, "k", config.StorageDriver, "storage driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "storage DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionValidity.Hours()), "session validity (in hours)")
	pollInterval := fs.Int("i", int(config.AuthPollInterval.Seconds()), "auth re-check interval (in seconds)")

	fs.StringVar(&config.SessionPruneSchedule, "x", config.SessionPruneSchedule, "session cleanup schedule")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.DashboardAPIURL, "m", config.DashboardAPIURL, "back-office API URL")

	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "CORS origins")

	fs.IntVar(&config.RateLimit, "r", config.RateLimit, "public rate limit (requests per second)")
	fs.IntVar(&config.RateBurst, "n", config.RateBurst, "public rate burst")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format")

	if err := flagx.Parse(fs, os.Args[1:]); err != nil {
		panic(err)
	}

	config.SessionValidity = time.Duration(*sessionValidity) * time.Hour
	config.AuthPollInterval = time.Duration(*pollInterval) * time.Second
	config.AllowedOrigins = splitList(*origins)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
