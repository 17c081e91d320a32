package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/loandesk/internal/flagx"
	"github.com/dmitrijs2005/loandesk/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent fields
// keep their current values.
type JsonConfig struct {
	DataDir          string          `json:"data_dir"`
	StorageDriver    string          `json:"storage_driver"`
	DatabaseDSN      string          `json:"database_dsn"`
	AuthPollInterval *timex.Duration `json:"auth_poll_interval"`
	LogFormat        string          `json:"log_format"`
}

// parseJson overlays cfg with the file named by -c or -config. It panics on
// read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	for _, f := range []struct {
		dst *string
		v   string
	}{
		{&cfg.DataDir, jc.DataDir},
		{&cfg.StorageDriver, jc.StorageDriver},
		{&cfg.DatabaseDSN, jc.DatabaseDSN},
		{&cfg.LogFormat, jc.LogFormat},
	} {
		if f.v != "" {
			*f.dst = f.v
		}
	}
	if jc.AuthPollInterval != nil {
		cfg.AuthPollInterval = jc.AuthPollInterval.Duration
	}
}
