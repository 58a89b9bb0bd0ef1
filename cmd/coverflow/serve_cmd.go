package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/coverflow/internal/api"
	"github.com/Nomadcxx/coverflow/internal/daemon"
	"github.com/Nomadcxx/coverflow/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var (
		addr    string
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Keep the catalog current and serve it over HTTP",
		Long: `Run in the foreground: scan the library, rescan when files change and
on the configured schedule, fetch missing covers, and serve the JSON API.

Endpoints (under /api/v1):
  GET  /titles?q=&offset=&limit=   Ranked titles
  GET  /titles/{key}               Title detail
  GET  /titles/{key}/cover         Cover image
  GET  /jump?c=A&q=                Index of the first title at a letter
  GET  /stats                      Catalog size and last scan
  POST /rescan                     Scan now
  GET  /health                     Health check

Examples:
  coverflow serve                        # Listen on server.addr
  coverflow serve --addr 0.0.0.0:8787    # Listen on all interfaces`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			fetcher, err := a.fetcher()
			if err != nil {
				return err
			}

			deps := daemon.Deps{
				Library:    a.lib,
				RescanSpec: a.cfg.Schedule.Rescan,
				Logger:     a.logger,
				Fetcher:    fetcher,
				Server: api.NewServer(a.lib, api.Options{
					CORSOrigins: a.cfg.Server.CORSOrigins,
					Logger:      a.logger,
					Version:     version,
				}).HTTPServer(addr),
			}
			if a.cfg.Watch.Enabled && !noWatch {
				w, err := watcher.New(a.lib.Scanner().IsVideo,
					watcher.WithDebounce(a.cfg.Watch.DebounceDuration()),
					watcher.WithLogger(a.logger))
				if err != nil {
					return err
				}
				defer w.Close()
				if err := w.Watch(a.lib.Roots()); err != nil {
					return fmt.Errorf("failed to watch library: %w", err)
				}
				deps.Watcher = w
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving http://%s/api/v1\n", addr)
			return daemon.Run(ctx, deps)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (default: server.addr)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not watch library paths for changes")

	return cmd
}
