package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/coverflow/internal/browser"
	"github.com/Nomadcxx/coverflow/internal/logging"
)

func newBrowseCmd() *cobra.Command {
	var scale int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the library as a carousel of covers",
		Long: `Open the interactive browser.

Keys:
  ←/→       previous / next title (wraps around)
  typing    filter by keywords
  enter     play the title (choose a file when it has several)
  ctrl+j    jump to a letter (0, A-Z)
  ctrl+r    rescan the library
  esc       clear the filter, then quit

Log output goes to the log file while the browser is open.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{quiet: true})
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("scale") {
				scale = a.cfg.Browser.Scale
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			opts := browser.Options{Scale: scale}
			fetcher, err := a.fetcher()
			if err != nil {
				return err
			}
			if fetcher != nil {
				opts.Ready = fetcher.Ready()
				populated := a.lib.Subscribe()
				go func() {
					for {
						select {
						case <-ctx.Done():
							return
						case <-populated:
							if _, err := fetcher.Run(ctx, a.lib.Catalog().All()); err != nil && !errors.Is(err, context.Canceled) {
								a.logger.Error("browse", "Cover run failed", err)
							}
						}
					}
				}()
			}

			a.logger.Info("browse", "Browser starting", logging.F("scale", scale))
			return browser.Run(ctx, a.lib, opts)
		},
	}

	cmd.Flags().IntVar(&scale, "scale", 2, "titles shown on each side of the selection")

	return cmd
}
