package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/genomehub/busco-tracker/internal/config"
	"github.com/genomehub/busco-tracker/internal/executor"
	"github.com/genomehub/busco-tracker/internal/store"
)

const (
	extractScriptName = "01_extract_proteins.sh"
	buscoScriptName   = "02_run_BUSCO.sh"
)

// tablePaths resolves the three canonical table paths: positional
// arguments win over the configuration, matching the legacy script
// invocation `<catalog> <results> <run_log>`.
func tablePaths(cfg *config.Config, args []string) (catalog, success, outcome string) {
	catalog, success, outcome = cfg.CatalogPath, cfg.SuccessPath, cfg.OutcomePath
	if len(args) > 0 {
		catalog = args[0]
	}
	if len(args) > 1 {
		success = args[1]
	}
	if len(args) > 2 {
		outcome = args[2]
	}
	return catalog, success, outcome
}

func newStore(cfg *config.Config, args []string) store.Store {
	catalog, success, outcome := tablePaths(cfg, args)
	return store.NewStore(catalog, success, outcome)
}

func newExecutor(cfg *config.Config) *executor.Executor {
	return &executor.Executor{
		ExtractScript: filepath.Join(cfg.ScriptsDir, extractScriptName),
		BuscoScript:   filepath.Join(cfg.ScriptsDir, buscoScriptName),
		LineageDirs:   cfg.LineageCandidates(),
		ScratchDir:    cfg.WorkDir,
		Runner:        executor.NewShellRunner(),
	}
}

// writeOutput reports a dispatch value to the orchestrator: appended to
// $GITHUB_OUTPUT when set, printed to stdout otherwise (local runs).
func writeOutput(key, value string) error {
	line := fmt.Sprintf("%s=%s", key, value)
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		fmt.Println(line)
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintln(f, line)
	return err
}
