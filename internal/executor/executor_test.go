package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomehub/busco-tracker/internal/fragment"
	"github.com/genomehub/busco-tracker/internal/store/model"
)

// fakeRunner simulates the two pipeline scripts: the extract stage drops
// the protein artifact, the BUSCO stage creates the output directory with
// a summary report. Either stage can be forced to fail.
type fakeRunner struct {
	extractScript string
	buscoScript   string
	failExtract   bool
	failBusco     bool
	skipArtifact  bool
	calls         []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	f.calls = append(f.calls, name)
	switch name {
	case f.extractScript:
		if f.failExtract {
			return errors.New("exit status 1")
		}
		if !f.skipArtifact {
			return os.WriteFile(proteinArtifactPath(args[0]), []byte(">p1\nMSTN\n"), 0644)
		}
		return nil
	case f.buscoScript:
		if f.failBusco {
			return errors.New("exit status 1")
		}
		if err := os.MkdirAll(args[2], 0755); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(args[2], "short_summary.specific.txt"), []byte(sampleSummary), 0644)
	}
	return errors.New("unknown command")
}

type fixture struct {
	ex     *Executor
	runner *fakeRunner
	item   model.WorkItem
	outDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	scripts := filepath.Join(dir, "scripts")
	require.NoError(t, os.MkdirAll(scripts, 0755))
	extract := filepath.Join(scripts, "01_extract_proteins.sh")
	busco := filepath.Join(scripts, "02_run_BUSCO.sh")
	require.NoError(t, os.WriteFile(extract, []byte("#!/bin/sh\n"), 0755))
	require.NoError(t, os.WriteFile(busco, []byte("#!/bin/sh\n"), 0755))

	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(data, 0755))
	gff := filepath.Join(data, "ann1.gff3.gz")
	fasta := filepath.Join(data, "ann1.fna.gz")
	require.NoError(t, os.WriteFile(gff, []byte("gff"), 0644))
	require.NoError(t, os.WriteFile(fasta, []byte("fasta"), 0644))

	lineage := filepath.Join(dir, "eukaryota_odb12")
	require.NoError(t, os.MkdirAll(lineage, 0755))

	outDir := filepath.Join(dir, "artifacts")
	require.NoError(t, os.MkdirAll(outDir, 0755))

	runner := &fakeRunner{extractScript: extract, buscoScript: busco}
	return &fixture{
		ex: &Executor{
			ExtractScript: extract,
			BuscoScript:   busco,
			LineageDirs:   []string{lineage},
			ScratchDir:    dir,
			Runner:        runner,
		},
		runner: runner,
		item:   model.WorkItem{ID: "ann1", AnnotationURL: gff, AssemblyURL: fasta},
		outDir: outDir,
	}
}

func readOutcome(t *testing.T, dir, id string) model.OutcomeRecord {
	t.Helper()
	rows, err := fragment.ReadRows(fragment.LogPath(dir, id), model.OutcomeHeader)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return model.OutcomeRecord{
		AnnotationID: rows[0][0],
		RunAt:        rows[0][1],
		Result:       rows[0][2],
		Step:         rows[0][3],
	}
}

func TestProcessSuccess(t *testing.T) {
	f := newFixture(t)

	res := f.ex.Process(context.Background(), f.item, f.outDir)

	assert.True(t, res.Succeeded)
	assert.Equal(t, "eukaryota_odb12", res.Metrics.Lineage)
	assert.Equal(t, 255, res.Metrics.BuscoCount)

	// Both fragments are written: the result row and the success-tagged
	// run log row.
	rows, err := fragment.ReadRows(fragment.ResultPath(f.outDir, "ann1"), model.SuccessHeader)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ann1", rows[0][0])

	outcome := readOutcome(t, f.outDir, "ann1")
	assert.Equal(t, model.ResultSuccess, outcome.Result)
	assert.Equal(t, "NA", outcome.Step)
}

func TestProcessFailureSteps(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(f *fixture)
		wantStep string
	}{
		{
			name:     "extract script missing",
			mutate:   func(f *fixture) { require.NoError(t, os.Remove(f.ex.ExtractScript)) },
			wantStep: StepScriptMissing,
		},
		{
			name:     "busco script missing",
			mutate:   func(f *fixture) { require.NoError(t, os.Remove(f.ex.BuscoScript)) },
			wantStep: StepScriptMissing,
		},
		{
			name:     "gff input missing",
			mutate:   func(f *fixture) { require.NoError(t, os.Remove(f.item.AnnotationURL)) },
			wantStep: StepInputMissing,
		},
		{
			name:     "fasta input missing",
			mutate:   func(f *fixture) { require.NoError(t, os.Remove(f.item.AssemblyURL)) },
			wantStep: StepInputMissing,
		},
		{
			name:     "extraction fails",
			mutate:   func(f *fixture) { f.runner.failExtract = true },
			wantStep: StepExtractProteins,
		},
		{
			name:     "extraction leaves no artifact",
			mutate:   func(f *fixture) { f.runner.skipArtifact = true },
			wantStep: StepExtractProteins,
		},
		{
			name:     "lineage dataset unresolvable",
			mutate:   func(f *fixture) { f.ex.LineageDirs = []string{"/does/not/exist"} },
			wantStep: StepLineageMissing,
		},
		{
			name:     "busco fails",
			mutate:   func(f *fixture) { f.runner.failBusco = true },
			wantStep: StepRunBusco,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.mutate(f)

			res := f.ex.Process(context.Background(), f.item, f.outDir)

			assert.False(t, res.Succeeded)
			assert.Equal(t, tt.wantStep, res.Step)

			outcome := readOutcome(t, f.outDir, "ann1")
			assert.Equal(t, model.ResultFail, outcome.Result)
			assert.Equal(t, tt.wantStep, outcome.Step)

			// No success fragment on any failure path.
			_, err := os.Stat(fragment.ResultPath(f.outDir, "ann1"))
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestProcessMissingSummaryIsUnexpectedError(t *testing.T) {
	f := newFixture(t)
	inner := f.runner
	f.ex.Runner = runnerFunc(func(ctx context.Context, name string, args ...string) error {
		if name == f.ex.BuscoScript {
			// BUSCO exits 0 but leaves no summary report behind.
			return os.MkdirAll(args[2], 0755)
		}
		return inner.Run(ctx, name, args...)
	})

	res := f.ex.Process(context.Background(), f.item, f.outDir)

	assert.False(t, res.Succeeded)
	assert.Equal(t, StepUnexpectedError, res.Step)
	assert.Equal(t, StepUnexpectedError, readOutcome(t, f.outDir, "ann1").Step)
}

type runnerFunc func(ctx context.Context, name string, args ...string) error

func (f runnerFunc) Run(ctx context.Context, name string, args ...string) error {
	return f(ctx, name, args...)
}

func TestRunSliceContinuesPastFailures(t *testing.T) {
	f := newFixture(t)

	// Second item has no input files: it fails, the third still runs.
	items := []model.WorkItem{
		f.item,
		{ID: "ann2", AnnotationURL: "/missing.gff3.gz", AssemblyURL: "/missing.fna.gz"},
		{ID: "ann3", AnnotationURL: f.item.AnnotationURL, AssemblyURL: f.item.AssemblyURL},
	}

	summary := RunSlice(context.Background(), f.ex, items, f.outDir)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, StepInputMissing, readOutcome(t, f.outDir, "ann2").Step)
}
