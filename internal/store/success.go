package store

import (
	"github.com/genomehub/busco-tracker/internal/store/model"
)

// Successes is the success table: at most one row per annotation id, ever.
// The aggregator enforces the uniqueness; storage only appends.
type Successes interface {
	IDs() (map[string]struct{}, error)
	Rows() ([]map[string]string, error)
	EnsureHeader() error
	Append(rows ...[]string) error
	Path() string
}

type successTable struct {
	*table
}

func newSuccesses(path string) Successes {
	return &successTable{table: newTable(path, model.SuccessHeader)}
}
