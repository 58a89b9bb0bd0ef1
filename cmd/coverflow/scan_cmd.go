package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/coverflow/internal/catalog"
	"github.com/Nomadcxx/coverflow/internal/library"
	"github.com/Nomadcxx/coverflow/internal/scanner"
	"github.com/Nomadcxx/coverflow/internal/ui"
)

func newScanCmd() *cobra.Command {
	var (
		quiet bool
		limit int
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the library and list every title",
		Long: `Scan every configured library path, build the catalog and print it.

Files that normalize to the same title and year are listed once, with
their file count.

Examples:
  coverflow scan                # Full table
  coverflow scan --limit 20     # First 20 titles
  coverflow scan --quiet        # Summary only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			bar := ui.NewProgressBar(cmd.ErrOrStderr(), "Scanning")

			a, err := newApp(appOptions{progress: func(p scanner.Progress) {
				bar.SetLabel(filepath.Base(p.Root))
				bar.Update(p.Done, p.Total)
			}})
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.populate(cmd.Context())
			bar.Done()
			if err != nil {
				return err
			}

			if !quiet {
				renderEntries(out, a.lib.Catalog().Entries(), a.lib.Resolver(), limit)
			}
			printStats(out, stats)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print the summary only")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum titles to list (0 = all)")

	return cmd
}

func renderEntries(w io.Writer, entries []*catalog.Entry, r catalog.CoverResolver, limit int) {
	if len(entries) == 0 {
		ui.InfoMsg(w, "No titles found")
		return
	}

	tbl := ui.NewTable("Title", "Year", "Files", "Cover", "Collection")
	for i, e := range entries {
		if limit > 0 && i >= limit {
			break
		}
		tbl.AddRow(e.Title(), e.YearOrEmpty(), strconv.Itoa(e.FileCount()), ui.CoverMark(r.HasCover(e)), e.CollectionRoot())
	}
	tbl.Render(w)
	if limit > 0 && len(entries) > limit {
		fmt.Fprintln(w, ui.Dim(fmt.Sprintf("… %d more", len(entries)-limit)))
	}
}

func printStats(w io.Writer, stats library.Stats) {
	ui.Section(w, "Library")
	ui.KeyValue(w, "Titles", ui.FormatCount(stats.Entries))
	ui.KeyValue(w, "Folders/files", ui.FormatCount(stats.Units))
	ui.KeyValue(w, "Video files", ui.FormatCount(stats.Files))
	ui.KeyValue(w, "Merged", ui.FormatCount(stats.Merged))
	ui.KeyValue(w, "Unrecognized", ui.FormatCount(stats.Skipped))
	ui.KeyValue(w, "Took", ui.FormatDuration(stats.Duration))
	for _, root := range stats.SkippedRoots {
		ui.WarningMsg(w, "Skipped missing library path %s", ui.Path(root))
	}
}
