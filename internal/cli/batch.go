package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/genomehub/busco-tracker/internal/dispatch"
	"github.com/genomehub/busco-tracker/internal/executor"
	"github.com/genomehub/busco-tracker/internal/fragment"
	"github.com/genomehub/busco-tracker/internal/store"
	"github.com/genomehub/busco-tracker/internal/store/model"
)

type BatchOptions struct {
	GlobalOptions

	ChunkIndex int
	ChunkCount int
	OutputDir  string
	MaxPerJob  int
}

func DefaultBatchOptions() *BatchOptions {
	return &BatchOptions{
		GlobalOptions: DefaultGlobalOptions(),
		ChunkIndex:    -1,
		OutputDir:     "artifacts",
	}
}

func NewCmdBatch() *cobra.Command {
	o := DefaultBatchOptions()
	cmd := &cobra.Command{
		Use:   "batch [CATALOG [RESULTS [RUN_LOG]]]",
		Short: "Process one chunk's strided slice of the pending set.",
		Args:  cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *BatchOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.IntVar(&o.ChunkIndex, "chunk-index", o.ChunkIndex, "Index of this chunk (0-based).")
	fs.IntVar(&o.ChunkCount, "chunk-count", o.ChunkCount, "Total number of chunks this cycle.")
	fs.StringVar(&o.OutputDir, "output-dir", o.OutputDir, "Directory to write result and log fragments.")
	fs.IntVar(&o.MaxPerJob, "max-per-job", o.MaxPerJob, "Cap on annotations processed by this chunk; 0 disables the cap.")
}

func (o *BatchOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	if !cmd.Flags().Changed("max-per-job") {
		o.MaxPerJob = o.Config.MaxPerJob
	}
	return nil
}

func (o *BatchOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.ChunkCount <= 0 {
		return fmt.Errorf("chunk-count must be positive, got %d", o.ChunkCount)
	}
	if o.ChunkIndex < 0 || o.ChunkIndex >= o.ChunkCount {
		return fmt.Errorf("chunk-index %d out of range [0, %d)", o.ChunkIndex, o.ChunkCount)
	}
	if o.MaxPerJob < 0 {
		return fmt.Errorf("max-per-job must not be negative, got %d", o.MaxPerJob)
	}
	return nil
}

func (o *BatchOptions) Run(ctx context.Context, args []string) error {
	s := newStore(o.Config, args)
	ex := newExecutor(o.Config)
	return RunChunk(ctx, s, ex, o.OutputDir, o.ChunkIndex, o.ChunkCount, o.MaxPerJob)
}

// RunChunk recomputes the pending set from the cycle snapshot, takes this
// chunk's strided slice, and processes it sequentially. Once the slice is
// known, per-annotation failures are recorded as fragments and never
// surface as a command error: the orchestrator only sees infrastructure
// faults.
func RunChunk(ctx context.Context, s store.Store, ex *executor.Executor, outputDir string, chunkIndex, chunkCount, maxPerJob int) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	items, err := s.Catalog().Load()
	if err != nil {
		if errors.Is(err, store.ErrCatalogNotFound) {
			return fmt.Errorf("annotation catalog not found: %s", s.Catalog().Path())
		}
		return err
	}
	allIDs := make(map[string]struct{}, len(items))
	for id := range items {
		allIDs[id] = struct{}{}
	}
	successIDs, err := s.Successes().IDs()
	if err != nil {
		return err
	}
	attemptedIDs, err := s.Outcomes().IDs()
	if err != nil {
		return err
	}

	pending := dispatch.Resolve(allIDs, successIDs, attemptedIDs)
	slice, err := dispatch.Slice(pending.IDs(), chunkIndex, chunkCount, maxPerJob)
	if err != nil {
		return err
	}
	zap.S().Infof("chunk %d/%d: %d annotations to process", chunkIndex, chunkCount, len(slice))

	sliceItems := make([]model.WorkItem, 0, len(slice))
	for _, id := range slice {
		item, ok := items[id]
		if !ok {
			// A retryable id that left the catalog: record the attempt so
			// the aggregator keeps its history consistent.
			zap.S().Warnf("pending id %s not present in catalog", id)
			if err := fragment.WriteOutcome(outputDir, model.NewFailure(id, executor.StepInputMissing)); err != nil {
				zap.S().Errorf("writing log fragment for %s: %v", id, err)
			}
			continue
		}
		sliceItems = append(sliceItems, item)
	}

	executor.RunSlice(ctx, ex, sliceItems, outputDir)
	return nil
}
