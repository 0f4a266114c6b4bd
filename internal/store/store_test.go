package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomehub/busco-tracker/internal/store/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCatalogLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "annotations.tsv",
		"annotation_id\tannotation_url\tassembly_url\n"+
			"ann1\t/data/ann1.gff3.gz\t/data/ann1.fna.gz\n"+
			"ann2\t/data/ann2.gff3.gz\t/data/ann2.fna.gz\n"+
			"\t\t\n")

	c := newCatalog(path)
	items, err := c.Load()
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, model.WorkItem{
		ID:            "ann1",
		AnnotationURL: "/data/ann1.gff3.gz",
		AssemblyURL:   "/data/ann1.fna.gz",
	}, items["ann1"])
}

func TestCatalogLoadHeaderless(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "annotations.tsv",
		"ann1\t/data/ann1.gff3.gz\t/data/ann1.fna.gz\n")

	c := newCatalog(path)
	items, err := c.Load()
	require.NoError(t, err)
	assert.Len(t, items, 1)

	ids, err := c.IDs()
	require.NoError(t, err)
	assert.Contains(t, ids, "ann1")
}

func TestCatalogMissingIsFatal(t *testing.T) {
	c := newCatalog(filepath.Join(t.TempDir(), "nope.tsv"))

	_, err := c.Load()
	assert.ErrorIs(t, err, ErrCatalogNotFound)
	_, err = c.IDs()
	assert.ErrorIs(t, err, ErrCatalogNotFound)
}

func TestSuccessesMissingFileIsEmpty(t *testing.T) {
	s := newSuccesses(filepath.Join(t.TempDir(), "BUSCO.tsv"))
	ids, err := s.IDs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEnsureHeaderAndAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "BUSCO.tsv")
	s := newSuccesses(path)

	require.NoError(t, s.EnsureHeader())
	// A second call must not touch the file.
	require.NoError(t, s.EnsureHeader())

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
	require.NoError(t, s.Append(rec.Fields()))

	ids, err := s.IDs()
	require.NoError(t, err)
	assert.Contains(t, ids, "ann1")

	rows, err := s.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "eukaryota_odb12", rows[0]["lineage"])
	assert.Equal(t, "95.5", rows[0]["complete"])
	assert.Equal(t, "255", rows[0]["busco_count"])
}

func TestAppendRejectsShortRows(t *testing.T) {
	s := newSuccesses(filepath.Join(t.TempDir(), "BUSCO.tsv"))
	require.NoError(t, s.EnsureHeader())

	err := s.Append([]string{"ann1", "eukaryota_odb12"})
	assert.ErrorIs(t, err, ErrHeaderMismatch)
}

func TestOutcomeKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run_log.tsv",
		"annotation_id\trun_at\tresult\tstep\n"+
			"ann1\t2026-01-02 10:00:00\tfail\textract_proteins\n"+
			"ann1\t2026-01-03 10:00:00\tfail\trun_busco\n"+
			"ann2\t2026-01-02 10:00:00\tsuccess\tNA\n")

	o := newOutcomes(path)

	keys, err := o.Keys()
	require.NoError(t, err)
	assert.Len(t, keys, 3)
	assert.Contains(t, keys, model.OutcomeKey{AnnotationID: "ann1", RunAt: "2026-01-03 10:00:00"})

	ids, err := o.IDs()
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestStoreAccessors(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(
		filepath.Join(dir, "annotations.tsv"),
		filepath.Join(dir, "BUSCO.tsv"),
		filepath.Join(dir, "run_log.tsv"),
	)
	assert.NotNil(t, s.Catalog())
	assert.NotNil(t, s.Successes())
	assert.NotNil(t, s.Outcomes())
}
