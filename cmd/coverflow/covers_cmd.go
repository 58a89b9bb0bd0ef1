package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/coverflow/internal/catalog"
	"github.com/Nomadcxx/coverflow/internal/covers"
	"github.com/Nomadcxx/coverflow/internal/ui"
)

func newCoversCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "covers",
		Short: "Manage cached cover images",
		Long: `Commands for fetching and inspecting cover images.

Covers live at <cache dir>/<collection root>/<Title>_<Year>. Downloads need
an OMDb API key in covers.api_key or COVERFLOW_OMDB_API_KEY.

Examples:
  coverflow covers fetch                          # Download missing covers
  coverflow covers set alien_1979 ~/alien.jpg     # Use your own image
  coverflow covers path alien_1979                # Where the cover lives
  coverflow covers failures                       # Titles without a poster
  coverflow covers reset alien_1979               # Retry a title now`,
	}

	cmd.AddCommand(newCoversFetchCmd())
	cmd.AddCommand(newCoversSetCmd())
	cmd.AddCommand(newCoversPathCmd())
	cmd.AddCommand(newCoversFailuresCmd())
	cmd.AddCommand(newCoversResetCmd())

	return cmd
}

// lookupEntry populates the catalog and finds key in it.
func lookupEntry(cmd *cobra.Command, a *app, key string) (*catalog.Entry, error) {
	if _, err := a.populate(cmd.Context()); err != nil {
		return nil, err
	}
	e, ok := a.lib.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("no title with key %q (see 'coverflow scan')", key)
	}
	return e, nil
}

func newCoversFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download covers for titles that have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			// fetch is explicit, so it runs even with covers.enabled off
			a.cfg.Covers.Enabled = true
			fetcher, err := a.fetcher()
			if err != nil {
				return err
			}
			if _, err := a.populate(cmd.Context()); err != nil {
				return err
			}

			report, err := fetcher.Run(cmd.Context(), a.lib.Catalog().All())
			out := cmd.OutOrStdout()
			ui.Section(out, "Covers")
			ui.KeyValue(out, "Checked", ui.FormatCount(report.Checked))
			ui.KeyValue(out, "Already cached", ui.FormatCount(report.Cached))
			ui.KeyValue(out, "Downloaded", ui.FormatCount(report.Downloaded))
			ui.KeyValue(out, "No poster", ui.FormatCount(report.NoPoster))
			ui.KeyValue(out, "Failed", ui.FormatCount(report.Failed))
			ui.KeyValue(out, "Retry later", ui.FormatCount(report.Deferred))
			return err
		},
	}
}

func newCoversSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <image>",
		Short: "Use a local image as the cover of a title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			e, err := lookupEntry(cmd, a, args[0])
			if err != nil {
				return err
			}
			if err := covers.SetCover(a.lib.Resolver(), e, args[1]); err != nil {
				return err
			}
			ui.SuccessMsg(cmd.OutOrStdout(), "Cover for %s set from %s", e.Display(), args[1])
			return nil
		},
	}
}

func newCoversPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <key>",
		Short: "Print where the cover of a title is cached",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			e, err := lookupEntry(cmd, a, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.lib.Resolver().CoverCachePath(e))
			return nil
		},
	}
}

func newCoversFailuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "failures",
		Short: "List titles whose last cover download did not succeed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.openStore()
			if err != nil {
				return err
			}
			failures, err := store.ListFailures()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(failures) == 0 {
				ui.SuccessMsg(out, "No failed downloads")
				return nil
			}
			tbl := ui.NewTable("Key", "Status", "Attempts", "Last try", "Error")
			for _, f := range failures {
				tbl.AddRow(f.Key, string(f.Status), strconv.Itoa(f.Attempts), ui.FormatAgo(f.UpdatedAt), f.LastError)
			}
			tbl.Render(out)
			return nil
		},
	}
}

func newCoversResetCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset [key]",
		Short: "Forget download attempts so titles are retried immediately",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("give a title key or --all")
			}
			a, err := newApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.openStore()
			if err != nil {
				return err
			}

			var key, root string
			if !all {
				e, err := lookupEntry(cmd, a, args[0])
				if err != nil {
					return err
				}
				key, root = e.Key(), e.CollectionRoot()
			}
			n, err := store.Reset(key, root)
			if err != nil {
				return err
			}
			ui.SuccessMsg(cmd.OutOrStdout(), "Cleared %d attempt(s)", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "clear every recorded attempt")

	return cmd
}
