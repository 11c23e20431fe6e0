package cmd

import (
	"fmt"

	"github.com/rustyeddy/tradepnl/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  tradepnl config init -o tradepnl.yaml
  tradepnl config validate -f tradepnl.yaml`,
		// Config files are handled directly; skip the root setup.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	}

	cmd.AddCommand(newConfigInitCmd(), newConfigValidateCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := cfg.SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Created default configuration: %s\n", output)
			fmt.Fprintf(out, "\nSet %s and %s (or a .env file), then run:\n", config.EnvAPIKey, config.EnvAPISecret)
			fmt.Fprintf(out, "  tradepnl --config %s pnl\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "tradepnl.yaml", "output config file path")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration valid: %s\n", path)
			fmt.Fprintf(out, "  Exchange: %s (page delay %s)\n", cfg.Exchange.BaseURL, cfg.Exchange.PageDelay)
			fmt.Fprintf(out, "  Credentials: %t\n", cfg.Exchange.APIKey != "")
			fmt.Fprintf(out, "  Quote: %s\n", cfg.Report.QuoteCurrency)
			fmt.Fprintf(out, "  Journal: %s\n", cfg.Journal.Type)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
