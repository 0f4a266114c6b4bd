package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "annotations.tsv", cfg.CatalogPath)
	assert.Equal(t, "BUSCO.tsv", cfg.SuccessPath)
	assert.Equal(t, "run_log.tsv", cfg.OutcomePath)
	assert.Equal(t, 256, cfg.MaxChunks)
	assert.Equal(t, 0, cfg.MaxPerJob)
	assert.Equal(t, 15*time.Minute, cfg.WatchInterval.Duration)
	assert.NoError(t, cfg.Validate())
}

func TestParseConfigFileOverlay(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"catalog-path: /data/annotations.tsv\nmax-per-job: 5\nwatch-interval: 1h\n"), 0644))

	require.NoError(t, cfg.ParseConfigFile(path))
	assert.Equal(t, "/data/annotations.tsv", cfg.CatalogPath)
	assert.Equal(t, 5, cfg.MaxPerJob)
	assert.Equal(t, time.Hour, cfg.WatchInterval.Duration)
	// Untouched fields keep their env defaults.
	assert.Equal(t, "BUSCO.tsv", cfg.SuccessPath)
}

func TestParseConfigFileMissing(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.NoError(t, cfg.ParseConfigFile(""))
	assert.Error(t, cfg.ParseConfigFile(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "empty catalog path", mutate: func(c *Config) { c.CatalogPath = "" }},
		{name: "empty success path", mutate: func(c *Config) { c.SuccessPath = "" }},
		{name: "zero max chunks", mutate: func(c *Config) { c.MaxChunks = 0 }},
		{name: "negative max per job", mutate: func(c *Config) { c.MaxPerJob = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := New()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLineageCandidates(t *testing.T) {
	cfg := &Config{LineageDir: "/lineages/eukaryota_odb12"}
	candidates := cfg.LineageCandidates()
	assert.Equal(t, "/lineages/eukaryota_odb12", candidates[0])
	assert.Contains(t, candidates, "eukaryota_odb12")
}
