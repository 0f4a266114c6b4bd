package model

import (
	"strconv"
	"time"
)

// Column layouts of the canonical TSV tables. The header row is written
// once when a table is created and every appended row must match it.
var (
	CatalogHeader = []string{"annotation_id", "annotation_url", "assembly_url"}
	SuccessHeader = []string{"annotation_id", "lineage", "busco_count", "complete",
		"single", "duplicated", "fragmented", "missing"}
	OutcomeHeader = []string{"annotation_id", "run_at", "result", "step"}
)

const (
	// RunAtLayout is the timestamp format recorded in outcome rows. The
	// formatted string is part of the outcome dedup key, so it must never
	// change between the executor and the aggregator.
	RunAtLayout = "2006-01-02 15:04:05"

	ResultSuccess = "success"
	ResultFail    = "fail"
)

// WorkItem is one catalog entry: a stable opaque id plus the two resource
// locators needed to run its analysis. Immutable once loaded.
type WorkItem struct {
	ID            string
	AnnotationURL string
	AssemblyURL   string
}

// BuscoMetrics holds the fields extracted from a BUSCO short summary.
type BuscoMetrics struct {
	Lineage    string
	BuscoCount int
	Complete   float64
	Single     float64
	Duplicated float64
	Fragmented float64
	Missing    float64
}

// SuccessRecord is one row of the success table, keyed by annotation id.
type SuccessRecord struct {
	AnnotationID string
	Metrics      BuscoMetrics
}

// Fields renders the record in SuccessHeader column order.
func (r SuccessRecord) Fields() []string {
	return []string{
		r.AnnotationID,
		r.Metrics.Lineage,
		strconv.Itoa(r.Metrics.BuscoCount),
		formatPct(r.Metrics.Complete),
		formatPct(r.Metrics.Single),
		formatPct(r.Metrics.Duplicated),
		formatPct(r.Metrics.Fragmented),
		formatPct(r.Metrics.Missing),
	}
}

// OutcomeRecord is one row of the run log. RunAt is kept as the formatted
// string so that dedup compares exactly what was written.
type OutcomeRecord struct {
	AnnotationID string
	RunAt        string
	Result       string
	Step         string
}

// Fields renders the record in OutcomeHeader column order.
func (r OutcomeRecord) Fields() []string {
	return []string{r.AnnotationID, r.RunAt, r.Result, r.Step}
}

// OutcomeKey is the dedup key of the run log: every attempt is retained,
// uniqueness is on (annotation_id, run_at), not on the id alone.
type OutcomeKey struct {
	AnnotationID string
	RunAt        string
}

func (r OutcomeRecord) Key() OutcomeKey {
	return OutcomeKey{AnnotationID: r.AnnotationID, RunAt: r.RunAt}
}

// NewFailure builds a fail outcome stamped with the current time.
func NewFailure(annotationID, step string) OutcomeRecord {
	return OutcomeRecord{
		AnnotationID: annotationID,
		RunAt:        time.Now().Format(RunAtLayout),
		Result:       ResultFail,
		Step:         step,
	}
}

// NewSuccessOutcome builds the success-path run log entry (step is NA).
func NewSuccessOutcome(annotationID string) OutcomeRecord {
	return OutcomeRecord{
		AnnotationID: annotationID,
		RunAt:        time.Now().Format(RunAtLayout),
		Result:       ResultSuccess,
		Step:         "NA",
	}
}

func formatPct(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
