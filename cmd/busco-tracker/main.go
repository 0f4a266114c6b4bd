package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/genomehub/busco-tracker/internal/cli"
	"github.com/genomehub/busco-tracker/pkg/log"
)

func main() {
	logger := log.InitLog(log.AtomicLevel(os.Getenv("BUSCO_TRACKER_LOG_LEVEL")))
	defer func() { _ = logger.Sync() }()

	undo := zap.ReplaceGlobals(logger)
	defer undo()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	command := NewTrackerCommand()
	if err := command.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func NewTrackerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "busco-tracker [flags] [options]",
		Short: "busco-tracker coordinates batch BUSCO analyses over an annotation catalog.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdDispatch())
	cmd.AddCommand(cli.NewCmdBatch())
	cmd.AddCommand(cli.NewCmdAnalyze())
	cmd.AddCommand(cli.NewCmdAggregate())
	cmd.AddCommand(cli.NewCmdCycle())
	cmd.AddCommand(cli.NewCmdVersion())

	return cmd
}
