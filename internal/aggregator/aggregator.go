// Package aggregator merges worker fragments into the canonical tables.
// It is the single writer of canonical state: one non-concurrent pass per
// cycle, after all workers have finished, before the next dispatch
// snapshot is taken.
package aggregator

import (
	"go.uber.org/zap"

	"github.com/genomehub/busco-tracker/internal/fragment"
	"github.com/genomehub/busco-tracker/internal/store"
	"github.com/genomehub/busco-tracker/internal/store/model"
	"github.com/genomehub/busco-tracker/pkg/metrics"
)

// Summary reports what one aggregation pass appended.
type Summary struct {
	SuccessRows int
	OutcomeRows int
}

type Aggregator struct {
	store store.Store
}

func New(s store.Store) *Aggregator {
	return &Aggregator{store: s}
}

// Aggregate scans artifactsDir recursively for fragments and appends the
// genuinely new rows to the canonical tables. Success rows dedup on
// annotation id (first success wins, forever); run log rows dedup on
// (annotation_id, run_at). Re-running over the same directory appends
// nothing the second time.
func (a *Aggregator) Aggregate(artifactsDir string) (Summary, error) {
	successIDs, err := a.store.Successes().IDs()
	if err != nil {
		return Summary{}, err
	}
	outcomeKeys, err := a.store.Outcomes().Keys()
	if err != nil {
		return Summary{}, err
	}
	zap.S().Infof("existing success rows: %d", len(successIDs))
	zap.S().Infof("existing run log keys: %d", len(outcomeKeys))

	if err := a.store.Successes().EnsureHeader(); err != nil {
		return Summary{}, err
	}
	if err := a.store.Outcomes().EnsureHeader(); err != nil {
		return Summary{}, err
	}

	resultFrags, logFrags, err := fragment.Scan(artifactsDir)
	if err != nil {
		return Summary{}, err
	}

	var successNew, outcomeNew [][]string

	for _, frag := range resultFrags {
		rows, err := fragment.ReadRows(frag, model.SuccessHeader)
		if err != nil {
			zap.S().Warnf("skipping unreadable fragment %s: %v", frag, err)
			continue
		}
		for _, row := range rows {
			id := row[0]
			if _, ok := successIDs[id]; ok {
				zap.S().Infof("  skip (already recorded): %s", id)
				continue
			}
			successNew = append(successNew, row)
			successIDs[id] = struct{}{}
			zap.S().Infof("  + success: %s", id)
		}
	}

	for _, frag := range logFrags {
		rows, err := fragment.ReadRows(frag, model.OutcomeHeader)
		if err != nil {
			zap.S().Warnf("skipping unreadable fragment %s: %v", frag, err)
			continue
		}
		for _, row := range rows {
			key := model.OutcomeKey{AnnotationID: row[0], RunAt: row[1]}
			if _, ok := outcomeKeys[key]; ok {
				continue
			}
			outcomeNew = append(outcomeNew, row)
			outcomeKeys[key] = struct{}{}
			zap.S().Infof("  + run log: %s @ %s", key.AnnotationID, key.RunAt)
		}
	}

	if err := a.store.Successes().Append(successNew...); err != nil {
		return Summary{}, err
	}
	if err := a.store.Outcomes().Append(outcomeNew...); err != nil {
		return Summary{}, err
	}

	metrics.AddRowsAppended("success", len(successNew))
	metrics.AddRowsAppended("run_log", len(outcomeNew))
	zap.S().Infof("appended %d success rows and %d run log rows", len(successNew), len(outcomeNew))
	return Summary{SuccessRows: len(successNew), OutcomeRows: len(outcomeNew)}, nil
}
