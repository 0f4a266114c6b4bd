package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/genomehub/busco-tracker/internal/dispatch"
	"github.com/genomehub/busco-tracker/internal/store"
	"github.com/genomehub/busco-tracker/pkg/metrics"
)

type DispatchOptions struct {
	GlobalOptions

	MaxChunks int
	MaxPerJob int
}

func DefaultDispatchOptions() *DispatchOptions {
	return &DispatchOptions{
		GlobalOptions: DefaultGlobalOptions(),
		MaxChunks:     dispatch.DefaultMaxChunks,
	}
}

func NewCmdDispatch() *cobra.Command {
	o := DefaultDispatchOptions()
	cmd := &cobra.Command{
		Use:   "dispatch [CATALOG [RESULTS [RUN_LOG]]]",
		Short: "Compute the pending set and emit the chunk matrix for one cycle.",
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

func (o *DispatchOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.IntVar(&o.MaxChunks, "max-chunks", o.MaxChunks, "Maximum number of matrix chunks.")
	fs.IntVar(&o.MaxPerJob, "max-per-job", o.MaxPerJob, "Maximum annotations per chunk this cycle; 0 disables the budget.")
}

func (o *DispatchOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	if !cmd.Flags().Changed("max-chunks") && o.Config.MaxChunks > 0 {
		o.MaxChunks = o.Config.MaxChunks
	}
	if !cmd.Flags().Changed("max-per-job") {
		o.MaxPerJob = o.Config.MaxPerJob
	}
	return nil
}

func (o *DispatchOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.MaxChunks <= 0 {
		return fmt.Errorf("max-chunks must be positive, got %d", o.MaxChunks)
	}
	if o.MaxPerJob < 0 {
		return fmt.Errorf("max-per-job must not be negative, got %d", o.MaxPerJob)
	}
	return nil
}

func (o *DispatchOptions) Run(ctx context.Context, args []string) error {
	s := newStore(o.Config, args)
	plan, err := BuildDispatchPlan(s, o.MaxChunks, o.MaxPerJob)
	if err != nil {
		return err
	}
	return reportPlan(plan)
}

// BuildDispatchPlan snapshots the canonical tables and computes the
// cycle's partition plan. A missing catalog is fatal; an empty one yields
// a zero-chunk plan.
func BuildDispatchPlan(s store.Store, maxChunks, maxPerJob int) (dispatch.Plan, error) {
	allIDs, err := s.Catalog().IDs()
	if err != nil {
		if errors.Is(err, store.ErrCatalogNotFound) {
			return dispatch.Plan{}, fmt.Errorf("annotation catalog not found: %s", s.Catalog().Path())
		}
		return dispatch.Plan{}, err
	}
	if len(allIDs) == 0 {
		zap.S().Warn("annotation catalog is empty, nothing to process")
		return dispatch.Plan{}, nil
	}

	successIDs, err := s.Successes().IDs()
	if err != nil {
		return dispatch.Plan{}, err
	}
	attemptedIDs, err := s.Outcomes().IDs()
	if err != nil {
		return dispatch.Plan{}, err
	}

	pending := dispatch.Resolve(allIDs, successIDs, attemptedIDs)
	zap.S().Infof("total annotations : %d", len(allIDs))
	zap.S().Infof("successful        : %d", len(successIDs))
	zap.S().Infof("never run         : %d", len(pending.NeverRun))
	zap.S().Infof("failed (retry)    : %d", len(pending.Failed))
	zap.S().Infof("pending (total)   : %d", pending.Len())

	plan, err := dispatch.BuildPlan(pending.Len(), maxChunks, maxPerJob)
	if err != nil {
		return dispatch.Plan{}, err
	}
	if plan.DeferredCount > 0 {
		zap.S().Infof("annotations this cycle: %d (%d deferred to next run)",
			plan.EligibleCount, plan.DeferredCount)
	}
	zap.S().Infof("chunks to create  : %d", plan.ChunkCount)

	metrics.UpdatePendingAnnotations(plan.PendingCount)
	metrics.UpdateDispatchedChunks(plan.ChunkCount)
	return plan, nil
}

func reportPlan(plan dispatch.Plan) error {
	matrix, err := json.Marshal(plan.ChunkIndices())
	if err != nil {
		return err
	}
	if err := writeOutput("matrix", string(matrix)); err != nil {
		return err
	}
	if err := writeOutput("chunk_count", strconv.Itoa(plan.ChunkCount)); err != nil {
		return err
	}
	return writeOutput("pending_count", strconv.Itoa(plan.PendingCount))
}
