package commands

import (
	"github.com/spf13/cobra"

	"github.com/paia-tech/hsj-operator/cmd/hsj-operator/handlers"
)

// Config returns the command that prints the effective configuration.
func Config() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration the operator would run with, after applying
the --config file, HSJ_* environment variables and flags. Secrets are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return handlers.PrintConfig(cmd.OutOrStdout(), cfg)
		},
	}
}
