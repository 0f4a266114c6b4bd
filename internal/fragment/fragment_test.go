package fragment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomehub/busco-tracker/internal/store/model"
)

func TestWriteSuccessRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rec := model.SuccessRecord{
		AnnotationID: "ann1",
		Metrics: model.BuscoMetrics{
			Lineage:    "eukaryota_odb12",
			BuscoCount: 255,
			Complete:   95.5,
			Single:     90.2,
			Duplicated: 5.3,
			Fragmented: 2.1,
			Missing:    2.4,
		},
	}
	require.NoError(t, WriteSuccess(dir, rec))

	rows, err := ReadRows(ResultPath(dir, "ann1"), model.SuccessHeader)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, rec.Fields(), rows[0])
}

func TestWriteOutcomeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rec := model.OutcomeRecord{
		AnnotationID: "ann1",
		RunAt:        "2026-01-02 10:00:00",
		Result:       model.ResultFail,
		Step:         "run_busco",
	}
	require.NoError(t, WriteOutcome(dir, rec))

	rows, err := ReadRows(LogPath(dir, "ann1"), model.OutcomeHeader)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, rec.Fields(), rows[0])
}

func TestReadRowsSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	// Fragment written against an older, narrower schema: the result
	// column is absent, so the row cannot be merged.
	path := filepath.Join(dir, "log_ann1.tsv")
	require.NoError(t, os.WriteFile(path,
		[]byte("annotation_id\trun_at\tstep\nann1\t2026-01-02 10:00:00\trun_busco\n"), 0644))

	rows, err := ReadRows(path, model.OutcomeHeader)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadRowsHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result_ann1.tsv")
	require.NoError(t, os.WriteFile(path, []byte("annotation_id\tlineage\n"), 0644))

	rows, err := ReadRows(path, model.SuccessHeader)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestScanRecursiveAndSorted(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "chunk-1", "deep")
	require.NoError(t, os.MkdirAll(nested, 0755))

	require.NoError(t, WriteSuccess(root, model.SuccessRecord{AnnotationID: "ann2"}))
	require.NoError(t, WriteSuccess(nested, model.SuccessRecord{AnnotationID: "ann1"}))
	require.NoError(t, WriteOutcome(nested, model.NewFailure("ann3", "extract_proteins")))
	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "other.tsv"), []byte("x\ty"), 0644))

	results, logs, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, logs, 1)
	assert.True(t, sortedPaths(results))
	assert.Equal(t, LogPath(nested, "ann3"), logs[0])
}

func sortedPaths(paths []string) bool {
	for i := 1; i < len(paths); i++ {
		if paths[i-1] > paths[i] {
			return false
		}
	}
	return true
}
