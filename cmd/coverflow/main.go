package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"
	cfgFile string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "coverflow",
		Short: "Browse a local movie collection by cover",
		Long: `Coverflow scans your movie folders, groups the files of each title,
and lets you browse them as a carousel of covers in the terminal.

Titles are recovered from release-style file names:
  "The.Matrix.1999.1080p.BluRay.x264.mkv"  →  The Matrix (1999)

Covers are fetched from OMDb when an API key is configured and cached
under ~/.config/coverflow/covers.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/coverflow/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCoversCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "coverflow %s\n", version)
		},
	}
}
