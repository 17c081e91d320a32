// Package config loads runtime configuration for the LoanDesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   local data directory; relative paths resolve against the working directory
//	-k string   storage driver: memory, sqlite, postgres
//	-f string   storage DSN; empty means loandesk.db inside the data directory
//	-i int      auth state re-check interval (seconds, 0 disables)
//	-l string   log format: console or json
//
// # JSON schema
//
//	{
//	  "data_dir": "loandesk-data",
//	  "storage_driver": "sqlite",
//	  "database_dsn": "",
//	  "auth_poll_interval": "5s",
//	  "log_format": "console"
//	}
//
// This package does not read environment variables.
package config
