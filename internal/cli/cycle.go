package cli

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lthibault/jitterbug/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/genomehub/busco-tracker/internal/aggregator"
	"github.com/genomehub/busco-tracker/internal/dispatch"
)

type CycleOptions struct {
	GlobalOptions

	Watch     bool
	MaxChunks int
	MaxPerJob int
}

func DefaultCycleOptions() *CycleOptions {
	return &CycleOptions{
		GlobalOptions: DefaultGlobalOptions(),
		MaxChunks:     dispatch.DefaultMaxChunks,
	}
}

func NewCmdCycle() *cobra.Command {
	o := DefaultCycleOptions()
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Run a full local cycle: dispatch, process every chunk, aggregate.",
		Args:  cobra.NoArgs,
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

func (o *CycleOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.BoolVarP(&o.Watch, "watch", "w", o.Watch, "Keep running cycles on a jittered interval.")
	fs.IntVar(&o.MaxChunks, "max-chunks", o.MaxChunks, "Maximum number of chunks per cycle.")
	fs.IntVar(&o.MaxPerJob, "max-per-job", o.MaxPerJob, "Maximum annotations per chunk per cycle; 0 disables the budget.")
}

func (o *CycleOptions) Complete(cmd *cobra.Command, args []string) error {
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

func (o *CycleOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.MaxChunks <= 0 {
		return fmt.Errorf("max-chunks must be positive, got %d", o.MaxChunks)
	}
	return nil
}

func (o *CycleOptions) Run(ctx context.Context, args []string) error {
	if o.Watch && o.Config.MetricsAddress != "" {
		go serveMetrics(o.Config.MetricsAddress)
	}

	if err := o.runOnce(ctx); err != nil {
		return err
	}
	if !o.Watch {
		return nil
	}

	ticker := jitterbug.New(o.Config.WatchInterval.Duration, &jitterbug.Norm{Stdev: 30 * time.Second})
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := o.runOnce(ctx); err != nil {
			// In watch mode a failed cycle is logged and retried on the
			// next tick; canonical state is only ever appended to, so a
			// partial cycle cannot corrupt it.
			zap.S().Errorf("cycle failed: %v", err)
		}
	}
}

// runOnce executes the strict phase ordering of one cycle: snapshot and
// plan, process every chunk sequentially into a private artifacts
// directory, then aggregate before the next snapshot can be taken.
func (o *CycleOptions) runOnce(ctx context.Context) error {
	s := newStore(o.Config, nil)
	plan, err := BuildDispatchPlan(s, o.MaxChunks, o.MaxPerJob)
	if err != nil {
		return err
	}
	if plan.ChunkCount == 0 {
		zap.S().Info("no pending annotations, skipping cycle")
		return nil
	}

	cycleDir := filepath.Join(o.Config.ArtifactsDir, uuid.NewString())
	ex := newExecutor(o.Config)
	for chunk := 0; chunk < plan.ChunkCount; chunk++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := RunChunk(ctx, s, ex, cycleDir, chunk, plan.ChunkCount, o.MaxPerJob); err != nil {
			return err
		}
	}

	_, err = aggregator.New(s).Aggregate(cycleDir)
	return err
}

func serveMetrics(address string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	zap.S().Infof("serving metrics on %s", address)
	if err := http.ListenAndServe(address, mux); err != nil {
		zap.S().Errorf("metrics server: %v", err)
	}
}
