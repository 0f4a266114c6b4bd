package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"sigs.k8s.io/yaml"

	"github.com/genomehub/busco-tracker/internal/util"
)

// Config carries every path and limit the tracker commands share.
// Values come from the environment (BUSCO_TRACKER_*) and may be
// overridden by an optional YAML config file.
type Config struct {
	// CatalogPath is the annotation catalog TSV.
	CatalogPath string `envconfig:"BUSCO_TRACKER_CATALOG" default:"annotations.tsv" json:"catalog-path,omitempty"`
	// SuccessPath is the successful results TSV.
	SuccessPath string `envconfig:"BUSCO_TRACKER_RESULTS" default:"BUSCO.tsv" json:"success-path,omitempty"`
	// OutcomePath is the run log TSV recording every attempt.
	OutcomePath string `envconfig:"BUSCO_TRACKER_RUN_LOG" default:"run_log.tsv" json:"outcome-path,omitempty"`

	// ScriptsDir holds the two pipeline shell scripts.
	ScriptsDir string `envconfig:"BUSCO_TRACKER_SCRIPTS_DIR" default:"scripts" json:"scripts-dir,omitempty"`
	// LineageDir points at the BUSCO lineage dataset. When empty the
	// executor falls back to the conventional locations.
	LineageDir string `envconfig:"BUSCO_TRACKER_LINEAGE_DIR" default:"" json:"lineage-dir,omitempty"`
	// WorkDir is the scratch directory for per-annotation BUSCO output.
	WorkDir string `envconfig:"BUSCO_TRACKER_WORK_DIR" default:"." json:"work-dir,omitempty"`
	// ArtifactsDir is where workers drop fragments for aggregation.
	ArtifactsDir string `envconfig:"BUSCO_TRACKER_ARTIFACTS_DIR" default:"artifacts" json:"artifacts-dir,omitempty"`

	// MaxChunks bounds the parallel chunk count of one cycle.
	MaxChunks int `envconfig:"BUSCO_TRACKER_MAX_CHUNKS" default:"256" json:"max-chunks,omitempty"`
	// MaxPerJob caps annotations per chunk per cycle; 0 means no cap.
	MaxPerJob int `envconfig:"BUSCO_TRACKER_MAX_PER_JOB" default:"0" json:"max-per-job,omitempty"`

	LogLevel string `envconfig:"BUSCO_TRACKER_LOG_LEVEL" default:"info" json:"log-level,omitempty"`
	// MetricsAddress exposes prometheus metrics in watch mode when set.
	MetricsAddress string `envconfig:"BUSCO_TRACKER_METRICS_ADDRESS" default:"" json:"metrics-address,omitempty"`
	// WatchInterval is the mean pause between watch-mode cycles.
	WatchInterval util.Duration `envconfig:"BUSCO_TRACKER_WATCH_INTERVAL" default:"15m" json:"watch-interval,omitempty"`
}

// New builds the configuration from the environment.
func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseConfigFile overlays values from a YAML config file. A missing
// path argument is not an error; a missing named file is.
func (c *Config) ParseConfigFile(cfgFile string) error {
	if cfgFile == "" {
		return nil
	}
	contents, err := os.ReadFile(cfgFile)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(contents, c); err != nil {
		return fmt.Errorf("unmarshalling config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.CatalogPath == "" {
		return fmt.Errorf("catalog path must be set")
	}
	if c.SuccessPath == "" || c.OutcomePath == "" {
		return fmt.Errorf("success and run log paths must be set")
	}
	if c.MaxChunks <= 0 {
		return fmt.Errorf("max chunks must be positive, got %d", c.MaxChunks)
	}
	if c.MaxPerJob < 0 {
		return fmt.Errorf("max per job must not be negative, got %d", c.MaxPerJob)
	}
	return nil
}

// LineageCandidates returns the lineage directories the executor should
// try, the configured one first, then the conventional fallbacks.
func (c *Config) LineageCandidates() []string {
	return []string{
		c.LineageDir,
		"assets/busco_downloads/lineages/eukaryota_odb12",
		"eukaryota_odb12",
	}
}
