package executor

import (
	"context"

	"go.uber.org/zap"

	"github.com/genomehub/busco-tracker/internal/store/model"
	"github.com/genomehub/busco-tracker/pkg/metrics"
)

// SliceSummary counts terminal states over one worker's slice.
type SliceSummary struct {
	Succeeded int
	Failed    int
	Total     int
}

// RunSlice processes a worker's slice strictly in order. Items are never
// skipped on failure; a killed worker simply leaves the rest of its slice
// without fragments, and those annotations stay pending for a later cycle.
func RunSlice(ctx context.Context, ex *Executor, items []model.WorkItem, outDir string) SliceSummary {
	summary := SliceSummary{Total: len(items)}
	for i, item := range items {
		zap.S().Infof("[%d/%d] processing %s", i+1, len(items), item.ID)
		res := ex.Process(ctx, item, outDir)
		if res.Succeeded {
			summary.Succeeded++
			metrics.IncreaseItemsProcessed(model.ResultSuccess)
			zap.S().Infof("  ok %s", item.ID)
		} else {
			summary.Failed++
			metrics.IncreaseItemsProcessed(model.ResultFail)
			metrics.IncreaseItemFailures(res.Step)
			zap.S().Warnf("  failed %s (%s)", item.ID, res.Step)
		}
	}
	zap.S().Infof("slice complete: %d succeeded, %d failed out of %d",
		summary.Succeeded, summary.Failed, summary.Total)
	return summary
}
