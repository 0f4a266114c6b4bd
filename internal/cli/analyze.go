package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/genomehub/busco-tracker/internal/store/model"
)

type AnalyzeOptions struct {
	GlobalOptions

	OutputDir string
}

func DefaultAnalyzeOptions() *AnalyzeOptions {
	return &AnalyzeOptions{
		GlobalOptions: DefaultGlobalOptions(),
		OutputDir:     "artifacts",
	}
}

func NewCmdAnalyze() *cobra.Command {
	o := DefaultAnalyzeOptions()
	cmd := &cobra.Command{
		Use:   "analyze GFF_FILE FASTA_FILE ANNOTATION_ID",
		Short: "Run the extraction and BUSCO pipeline for a single annotation.",
		Args:  cobra.ExactArgs(3),
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

func (o *AnalyzeOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVar(&o.OutputDir, "output-dir", o.OutputDir, "Directory to write the result and log fragments.")
}

func (o *AnalyzeOptions) Complete(cmd *cobra.Command, args []string) error {
	return o.GlobalOptions.Complete(cmd, args)
}

func (o *AnalyzeOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if args[2] == "" {
		return fmt.Errorf("annotation id must not be empty")
	}
	return nil
}

// Run processes exactly one annotation. Unlike batch, a failed attempt
// makes the command exit non-zero; the outcome fragment is still written
// first, so the failure is durably recorded either way.
func (o *AnalyzeOptions) Run(ctx context.Context, args []string) error {
	if err := os.MkdirAll(o.OutputDir, 0755); err != nil {
		return err
	}
	item := model.WorkItem{
		AnnotationURL: args[0],
		AssemblyURL:   args[1],
		ID:            args[2],
	}
	ex := newExecutor(o.Config)
	res := ex.Process(ctx, item, o.OutputDir)
	if !res.Succeeded {
		return fmt.Errorf("analysis of %s failed at step %s", item.ID, res.Step)
	}
	return nil
}
