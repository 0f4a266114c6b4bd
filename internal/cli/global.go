package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/genomehub/busco-tracker/internal/config"
)

type GlobalOptions struct {
	ConfigFile string

	Config *config.Config
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigFile, "config", "c", o.ConfigFile, "Path to an optional YAML config file.")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	if err := cfg.ParseConfigFile(o.ConfigFile); err != nil {
		return err
	}
	o.Config = cfg
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	return o.Config.Validate()
}
