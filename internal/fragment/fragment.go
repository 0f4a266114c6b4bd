// Package fragment handles the worker-private, single-row TSV files that
// carry one annotation's attempt outcome from a worker to the aggregator.
// Workers only ever create fragments under paths derived from the
// annotation id, so concurrent chunks cannot collide on writes.
package fragment

import (
	"bytes"
	"encoding/csv"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/genomehub/busco-tracker/internal/store/model"
)

const (
	resultPrefix = "result_"
	logPrefix    = "log_"
	suffix       = ".tsv"
)

// ResultPath is where a success fragment for the annotation is written.
func ResultPath(dir, annotationID string) string {
	return filepath.Join(dir, resultPrefix+annotationID+suffix)
}

// LogPath is where an outcome fragment for the annotation is written.
func LogPath(dir, annotationID string) string {
	return filepath.Join(dir, logPrefix+annotationID+suffix)
}

// WriteSuccess writes a success fragment: header plus exactly one row.
func WriteSuccess(dir string, rec model.SuccessRecord) error {
	return write(ResultPath(dir, rec.AnnotationID), model.SuccessHeader, rec.Fields())
}

// WriteOutcome writes an outcome fragment: header plus exactly one row.
func WriteOutcome(dir string, rec model.OutcomeRecord) error {
	return write(LogPath(dir, rec.AnnotationID), model.OutcomeHeader, rec.Fields())
}

func write(path string, header, row []string) error {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(header, "\t"))
	buf.WriteByte('\n')
	buf.WriteString(strings.Join(row, "\t"))
	buf.WriteByte('\n')
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "writing fragment %s", path)
	}
	return nil
}

// Scan walks root recursively and returns the result and log fragment
// paths, each sorted by path for a deterministic merge order.
func Scan(root string) (results, logs []string, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		switch {
		case strings.HasPrefix(d.Name(), resultPrefix):
			results = append(results, path)
		case strings.HasPrefix(d.Name(), logPrefix):
			logs = append(logs, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(results)
	sort.Strings(logs)
	return results, logs, nil
}

// ReadRows reads a fragment's data rows, keeping only rows that carry
// every expected column. Malformed rows are dropped, not fatal: one bad
// fragment must never abort a whole merge.
func ReadRows(path string, expected []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	recs, err := readTSV(f)
	if err != nil || len(recs) < 2 {
		return nil, err
	}
	header := recs[0]
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}
	var rows [][]string
	for _, rec := range recs[1:] {
		row := make([]string, 0, len(expected))
		ok := true
		for _, col := range expected {
			i, found := idx[col]
			if !found || i >= len(rec) {
				ok = false
				break
			}
			row = append(row, rec[i])
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func readTSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}
