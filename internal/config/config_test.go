package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, Config{
		MaxResults: 20,
		RPS:        4,
		Interval:   5 * time.Minute,
		Format:     FormatText,
		LogLevel:   "info",
	}, cfg)
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hourwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
credentials_file: /etc/hourwatch/key.json
subject: ops@example.com
max_results: 50
interval: 2m
format: JSON
`), 0o600))

	t.Setenv("HOURWATCH_RPS", "9")
	t.Setenv("HOURWATCH_MAX_RESULTS", "30")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("max-results", 20, "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--max-results=7"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "/etc/hourwatch/key.json", cfg.CredentialsFile)
	assert.Equal(t, "ops@example.com", cfg.Subject)
	assert.Equal(t, 7, cfg.MaxResults, "changed flag beats env and file")
	assert.Equal(t, 9, cfg.RPS, "env beats default")
	assert.Equal(t, 2*time.Minute, cfg.Interval)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_results: [unterminated"), 0o600))

	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		CredentialsFile: "key.json",
		MaxResults:      20,
		RPS:             4,
		Interval:        time.Minute,
		Format:          FormatText,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing credentials", mutate: func(c *Config) { c.CredentialsFile = " " }},
		{name: "unknown format", mutate: func(c *Config) { c.Format = "xml" }},
		{name: "negative rps", mutate: func(c *Config) { c.RPS = -1 }},
		{name: "zero interval", mutate: func(c *Config) { c.Interval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
