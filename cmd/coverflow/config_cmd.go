package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/coverflow/internal/config"
	"github.com/Nomadcxx/coverflow/internal/paths"
	"github.com/Nomadcxx/coverflow/internal/ui"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage coverflow configuration",
		Long: `Commands for managing coverflow configuration.

The config file is stored at: ~/.config/coverflow/config.toml

Examples:
  coverflow config init              # Create default config file
  coverflow config show              # Display current configuration
  coverflow config path              # Show config file path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return paths.ConfigPath()
}

func newConfigInitCmd() *cobra.Command {
	var (
		force     bool
		libraries []string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long: `Create a new configuration file with default values.

Edit the file afterwards to set your library paths and OMDb API key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			cfg.Library.Paths = append(cfg.Library.Paths, libraries...)
			if err := cfg.SaveTo(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			out := cmd.OutOrStdout()
			ui.SuccessMsg(out, "Created config file: %s", path)
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "  1. Add your movie folders to [library] paths")
			fmt.Fprintln(out, "  2. Set covers.api_key and covers.enabled to download covers")
			fmt.Fprintln(out, "  3. Run 'coverflow browse'")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")
	cmd.Flags().StringSliceVar(&libraries, "library", nil, "library path to add (repeatable)")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Print the configuration after applying the file, .env files and
COVERFLOW_* environment variables. The API key is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Covers.APIKey != "" {
				cfg.Covers.APIKey = "********"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", cfg.Path())
			fmt.Fprint(out, cfg.ToTOML())
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
