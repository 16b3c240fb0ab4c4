package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kilianc/propflow/internal/propflow/config"
	"github.com/kilianc/propflow/internal/propflow/driver"
)

const longHelp = `Writes one prop flow report per JSX source: every component instantiated
at the top level of the file, its props and where it appears, nested the way
the components nest.

Paths behave like Go patterns:
  - ./...        recurse from cwd (the default)
  - ./dir        only that directory (non-recursive)
  - ./dir/...    recurse from that directory
  - ./file.jsx   only that file`

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

type app struct {
	v          *viper.Viper
	configFile string
	logger     *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{
		v:      config.New(),
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "propflow"}),
	}

	cmd := &cobra.Command{
		Use:           "propflow [flags] [paths...]",
		Short:         "Report which components a JSX file instantiates and with which props",
		Long:          longHelp,
		Example:       "propflow ./src/... --format json --stdout",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.BindFlags(a.v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, d, cwd, err := a.setup(cmd)
			if err != nil {
				return err
			}
			paths, err := d.Collect(cwd, args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				a.logger.Debug("no sources matched", "patterns", args)
				return nil
			}
			_, err = d.Run(cmd.Context(), paths)
			return err
		},
	}

	config.RegisterFlags(cmd.PersistentFlags())
	cmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (default .propflow.yaml in the working directory)")
	cmd.AddCommand(newWatchCmd(a))
	return cmd
}

// setup loads the merged configuration and builds a driver rooted at the
// working directory.
func (a *app) setup(cmd *cobra.Command) (*config.Config, *driver.Driver, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, "", err
	}
	cfg, err := config.Load(a.v, a.configFile, cwd)
	if err != nil {
		return nil, nil, "", err
	}
	a.logger.SetLevel(cfg.Level())

	opt, err := cfg.DriverOptions(cmd.OutOrStdout(), a.logger)
	if err != nil {
		return nil, nil, "", err
	}
	if !filepath.IsAbs(opt.OutputDir) {
		opt.OutputDir = filepath.Join(cwd, opt.OutputDir)
	}
	return cfg, driver.New(opt), cwd, nil
}
