package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name        string
		args        []string
		start       Config
		want        Config
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cli", "-d", "data", "-k", "memory", "-f", "x.db", "-i", "10", "-l", "json"},
			want: Config{DataDir: "data", StorageDriver: "memory", DatabaseDSN: "x.db",
				AuthPollInterval: 10 * time.Second, LogFormat: "json"},
		},
		{
			name:  "config file flag and unknown flags are skipped",
			args:  []string{"cli", "-c", "cli.json", "--d=/var/lib/loandesk", "-z", "1"},
			start: Config{StorageDriver: "sqlite", AuthPollInterval: 5 * time.Second},
			want: Config{DataDir: "/var/lib/loandesk", StorageDriver: "sqlite",
				AuthPollInterval: 5 * time.Second},
		},
		{
			name:        "poll interval must be a number",
			args:        []string{"cli", "-i", "often"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			cfg := tt.start

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(&cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(&cfg) })
			assert.Empty(t, cmp.Diff(tt.want, cfg))
		})
	}
}
