package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// table is a flat append-only TSV file with a fixed column layout. All
// canonical state lives in tables; they are only ever created, read as a
// whole, or appended to. Rows are never updated in place.
type table struct {
	path   string
	header []string
}

func newTable(path string, header []string) *table {
	return &table{path: path, header: header}
}

func (t *table) Path() string { return t.path }

func (t *table) Exists() bool {
	_, err := os.Stat(t.path)
	return err == nil
}

// EnsureHeader creates the table with its header row if it does not exist.
func (t *table) EnsureHeader() error {
	if t.Exists() {
		return nil
	}
	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return errors.Wrapf(err, "creating %s", t.path)
	}
	defer f.Close()
	_, err = f.Write(encodeRows([][]string{t.header}))
	return err
}

// Append writes rows to the end of the table. Every row must match the
// header width and is written in a single syscall so that a crash leaves
// either the complete rows or nothing.
func (t *table) Append(rows ...[]string) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if len(row) != len(t.header) {
			return fmt.Errorf("%w: got %d fields, want %d", ErrHeaderMismatch, len(row), len(t.header))
		}
	}
	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "opening %s for append", t.path)
	}
	defer f.Close()
	_, err = f.Write(encodeRows(rows))
	return err
}

// records reads every row of the file, header included if present. A
// missing file yields no records and no error.
func (t *table) records() ([][]string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return readAll(f)
}

// IDs returns the set of values in the table's first column. A header
// row is detected by comparing the first field against the header token,
// so headerless legacy files are read as data from the first line.
func (t *table) IDs() (map[string]struct{}, error) {
	recs, err := t.records()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{})
	for i, rec := range recs {
		if len(rec) == 0 {
			continue
		}
		v := strings.TrimSpace(rec[0])
		if v == "" {
			continue
		}
		if i == 0 && v == t.header[0] {
			continue
		}
		ids[v] = struct{}{}
	}
	return ids, nil
}

// Rows returns header-mapped data rows. Files without a header row are
// mapped positionally against the table's configured header.
func (t *table) Rows() ([]map[string]string, error) {
	recs, err := t.records()
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	cols := t.header
	start := 0
	if len(recs[0]) > 0 && strings.TrimSpace(recs[0][0]) == t.header[0] {
		cols = recs[0]
		start = 1
	}
	var rows []map[string]string
	for _, rec := range recs[start:] {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row := make(map[string]string, len(cols))
		for i, col := range cols {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readAll(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

func encodeRows(rows [][]string) []byte {
	var buf bytes.Buffer
	for _, row := range rows {
		buf.WriteString(strings.Join(row, "\t"))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
