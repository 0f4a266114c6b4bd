package executor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Step names recorded in the run log when an attempt fails. The taxonomy
// is fixed: the resolver and any reporting downstream key off these.
const (
	StepScriptMissing   = "script_missing"
	StepInputMissing    = "input_missing"
	StepExtractProteins = "extract_proteins"
	StepRunBusco        = "run_busco"
	StepLineageMissing  = "lineage_missing"
	StepUnexpectedError = "unexpected_error"
)

// CommandRunner abstracts the blocking external invocations so the state
// machine can be exercised in tests without shelling out.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type shellRunner struct{}

// NewShellRunner returns the production runner backed by os/exec.
func NewShellRunner() CommandRunner {
	return shellRunner{}
}

func (shellRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		zap.S().Errorf("%s failed: %v", name, err)
		if len(out) > 0 {
			zap.S().Errorf("output: %s", strings.TrimSpace(string(out)))
		}
		return err
	}
	return nil
}

// proteinArtifactPath derives where the extraction script leaves the
// protein FASTA: next to the annotation file, named after its basename
// with compression and format suffixes stripped.
func proteinArtifactPath(gffPath string) string {
	base := filepath.Base(gffPath)
	for _, ext := range []string{".gz", ".gff3", ".gff", ".gz"} {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(filepath.Dir(gffPath), base+"_proteins.faa")
}

// resolveLineageDir returns the first existing candidate lineage
// directory, or "" when none resolves.
func resolveLineageDir(candidates []string) string {
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
