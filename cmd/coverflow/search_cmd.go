package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Find titles matching every keyword",
		Long: `Scan the library and list the titles containing every keyword,
best matches first. Matching ignores case and accents are compared
after Unicode normalization.

Examples:
  coverflow search iron man
  coverflow search amelie --limit 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.populate(cmd.Context()); err != nil {
				return err
			}

			view := a.lib.Search(strings.Join(args, " "))
			renderEntries(cmd.OutOrStdout(), view.Entries(), a.lib.Resolver(), limit)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum titles to list (0 = all)")

	return cmd
}
