package main

import (
	"github.com/spf13/cobra"

	"github.com/kilianc/propflow/internal/propflow/driver"
)

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [flags] [paths...]",
		Short: "Regenerate reports whenever a matched source changes",
		Long: `Polls the matched sources and rewrites the report of every file whose
contents changed since the previous poll. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, d, cwd, err := a.setup(cmd)
			if err != nil {
				return err
			}
			a.logger.Info("watching", "dir", cwd, "interval", cfg.Watch.Interval)
			return d.Watch(cmd.Context(), cwd, args, cfg.Watch.Interval)
		},
	}
	cmd.Flags().Duration("interval", driver.DefaultWatchInterval, "polling interval")
	return cmd
}
