// Package executor drives one annotation through the two-stage external
// pipeline: protein extraction, then BUSCO scoring, then summary parsing.
// Each attempt ends in exactly one fragment pair on disk; the executor
// never touches the canonical tables.
package executor

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/genomehub/busco-tracker/internal/fragment"
	"github.com/genomehub/busco-tracker/internal/store/model"
)

// Result is the terminal state of one attempt. Either Succeeded with
// metrics, or a failure tagged with the step that broke.
type Result struct {
	AnnotationID string
	Succeeded    bool
	Step         string
	Metrics      model.BuscoMetrics
}

// Executor runs attempts. Scripts and lineage candidates are fixed for
// the lifetime of a chunk.
type Executor struct {
	ExtractScript string
	BuscoScript   string
	// LineageDirs are tried in order; the first existing directory wins.
	LineageDirs []string
	// ScratchDir is where per-annotation BUSCO output directories are
	// created. Intermediate artifacts are left behind on purpose.
	ScratchDir string
	Runner     CommandRunner
}

// Process runs one attempt and writes its fragments under outDir before
// returning. It never returns an error: every fault is mapped to a
// failure step so one annotation's crash cannot abort the rest of the
// worker's slice.
func (e *Executor) Process(ctx context.Context, item model.WorkItem, outDir string) (res Result) {
	res = Result{AnnotationID: item.ID}

	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorf("unexpected error processing %s: %v", item.ID, r)
			res.Succeeded = false
			res.Step = StepUnexpectedError
		}
		if !res.Succeeded {
			e.writeFailure(outDir, item.ID, res.Step)
		}
	}()

	if step := e.checkPreconditions(item); step != "" {
		res.Step = step
		return res
	}

	// Extracting
	zap.S().Infof("extracting proteins for %s", item.ID)
	if err := e.Runner.Run(ctx, e.ExtractScript, item.AnnotationURL, item.AssemblyURL); err != nil {
		res.Step = StepExtractProteins
		return res
	}
	proteinFile := proteinArtifactPath(item.AnnotationURL)
	if !fileExists(proteinFile) {
		zap.S().Errorf("protein file not found: %s", proteinFile)
		res.Step = StepExtractProteins
		return res
	}

	// Analyzing
	lineageDir := resolveLineageDir(e.LineageDirs)
	if lineageDir == "" {
		zap.S().Errorf("no lineage directory found, tried %v", e.LineageDirs)
		res.Step = StepLineageMissing
		return res
	}
	buscoOut := filepath.Join(e.ScratchDir, fmt.Sprintf("busco_%s", item.ID))
	zap.S().Infof("running BUSCO for %s against %s", item.ID, lineageDir)
	if err := e.Runner.Run(ctx, e.BuscoScript, proteinFile, lineageDir, buscoOut); err != nil {
		res.Step = StepRunBusco
		return res
	}

	// Parsing
	metrics, err := ParseSummary(buscoOut)
	if err != nil {
		zap.S().Errorf("parsing BUSCO results for %s: %v", item.ID, err)
		res.Step = StepUnexpectedError
		return res
	}

	res.Succeeded = true
	res.Metrics = metrics
	e.writeSuccess(outDir, item.ID, metrics)
	return res
}

func (e *Executor) checkPreconditions(item model.WorkItem) string {
	if !fileExists(e.ExtractScript) || !fileExists(e.BuscoScript) {
		zap.S().Errorf("pipeline script missing: %s or %s", e.ExtractScript, e.BuscoScript)
		return StepScriptMissing
	}
	if !fileExists(item.AnnotationURL) || !fileExists(item.AssemblyURL) {
		zap.S().Errorf("input file missing for %s", item.ID)
		return StepInputMissing
	}
	return ""
}

// writeSuccess emits the success fragment plus the success-tagged run log
// fragment so both canonical tables stay consistent after aggregation.
func (e *Executor) writeSuccess(outDir, id string, metrics model.BuscoMetrics) {
	rec := model.SuccessRecord{AnnotationID: id, Metrics: metrics}
	if err := fragment.WriteSuccess(outDir, rec); err != nil {
		zap.S().Errorf("writing result fragment for %s: %v", id, err)
	}
	if err := fragment.WriteOutcome(outDir, model.NewSuccessOutcome(id)); err != nil {
		zap.S().Errorf("writing log fragment for %s: %v", id, err)
	}
}

func (e *Executor) writeFailure(outDir, id, step string) {
	if step == "" {
		step = StepUnexpectedError
	}
	if err := fragment.WriteOutcome(outDir, model.NewFailure(id, step)); err != nil {
		zap.S().Errorf("writing log fragment for %s: %v", id, err)
	}
}
