package store

import (
	"github.com/genomehub/busco-tracker/internal/store/model"
)

// Outcomes is the run log: the full history of every attempt, success and
// failure alike. Rows are unique on (annotation_id, run_at).
type Outcomes interface {
	// IDs returns the distinct annotation ids with any run log entry.
	IDs() (map[string]struct{}, error)
	// Keys returns the (annotation_id, run_at) dedup keys currently present.
	Keys() (map[model.OutcomeKey]struct{}, error)
	Rows() ([]map[string]string, error)
	EnsureHeader() error
	Append(rows ...[]string) error
	Path() string
}

type outcomeTable struct {
	*table
}

func newOutcomes(path string) Outcomes {
	return &outcomeTable{table: newTable(path, model.OutcomeHeader)}
}

func (o *outcomeTable) Keys() (map[model.OutcomeKey]struct{}, error) {
	rows, err := o.Rows()
	if err != nil {
		return nil, err
	}
	keys := make(map[model.OutcomeKey]struct{})
	for _, row := range rows {
		id, runAt := row["annotation_id"], row["run_at"]
		if id == "" || runAt == "" {
			continue
		}
		keys[model.OutcomeKey{AnnotationID: id, RunAt: runAt}] = struct{}{}
	}
	return keys, nil
}
