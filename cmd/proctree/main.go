package main

import (
	"context"
	"fmt"
	"os"

	"proctree/config"
	"proctree/process"
	"proctree/process_tree"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

type sourcesFunc func(cfg config.Config) (process.Sources, error)

type app struct {
	v          *viper.Viper
	cfg        config.Config
	configPath string
	noColor    bool
	sources    sourcesFunc
	log        *logger.Logger
}

func main() {
	if err := newRootCmd(newSources).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(sources sourcesFunc) *cobra.Command {
	a := &app{
		v:       config.New(),
		sources: sources,
		log:     logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "proctree")),
	}

	root := &cobra.Command{
		Use:               "proctree",
		Short:             "Show running processes and services as a parent/child forest",
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./proctree.yaml)")
	flags.Duration("timeout", 0, "give up after this long, 0 waits forever")
	flags.String("service-source", "scm", "service enumerator on Windows: scm or wmi")
	flags.String("procfs", "/proc", "procfs mount point on Linux")
	flags.String("process-source", "psutil", "process enumerator on Linux: psutil or procfs")
	flags.StringP("output", "o", config.OutputText, "output format: text, table, json or yaml")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colors")

	a.bind(flags, config.KeyTimeout, "timeout")
	a.bind(flags, config.KeyServiceSource, "service-source")
	a.bind(flags, config.KeyProcfsPath, "procfs")
	a.bind(flags, config.KeyProcessSource, "process-source")
	a.bind(flags, config.KeyOutput, "output")

	root.AddCommand(a.treeCmd(), a.processesCmd(), a.servicesCmd())
	return root
}

func (a *app) bind(flags *pflag.FlagSet, key, name string) {
	if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(err)
	}
}

func (a *app) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debugln("loaded config from " + used)
	}
	return nil
}

func (a *app) context(parent context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Timeout > 0 {
		return context.WithTimeout(parent, a.cfg.Timeout)
	}
	return context.WithCancel(parent)
}

// withFetcher runs fn with a fetcher over the configured sources and closes
// the sources afterwards.
func (a *app) withFetcher(cmd *cobra.Command, fn func(ctx context.Context, f *process_tree.Fetcher) error) (err error) {
	sources, err := a.sources(a.cfg)
	if err != nil {
		return fmt.Errorf("open sources: %w", err)
	}

	fetcher := process_tree.NewFetcher(sources, process_tree.WithForestOptions(a.cfg.ForestOptions()...))
	defer func() {
		if closeErr := fetcher.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close sources: %w", closeErr))
		}
	}()

	ctx, cancel := a.context(cmd.Context())
	defer cancel()

	return fn(ctx, fetcher)
}

// colors reports whether output goes to a terminal that should be colored
func (a *app) colors(cmd *cobra.Command) bool {
	if a.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
