package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/genomehub/busco-tracker/internal/aggregator"
)

type AggregateOptions struct {
	GlobalOptions
}

func DefaultAggregateOptions() *AggregateOptions {
	return &AggregateOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdAggregate() *cobra.Command {
	o := DefaultAggregateOptions()
	cmd := &cobra.Command{
		Use:   "aggregate ARTIFACTS_DIR [RESULTS [RUN_LOG]]",
		Short: "Merge worker fragments into the canonical result tables.",
		Args:  cobra.RangeArgs(1, 3),
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

func (o *AggregateOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
}

func (o *AggregateOptions) Complete(cmd *cobra.Command, args []string) error {
	return o.GlobalOptions.Complete(cmd, args)
}

func (o *AggregateOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	info, err := os.Stat(args[0])
	if err != nil || !info.IsDir() {
		return fmt.Errorf("artifacts directory not found: %s", args[0])
	}
	return nil
}

func (o *AggregateOptions) Run(ctx context.Context, args []string) error {
	// Aggregation never reads the catalog; only the two writable tables.
	tableArgs := append([]string{o.Config.CatalogPath}, args[1:]...)
	s := newStore(o.Config, tableArgs)
	_, err := aggregator.New(s).Aggregate(args[0])
	return err
}
