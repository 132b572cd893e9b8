// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/paia-tech/hsj-operator/internal/config"
)

// Root returns the root command for the hsj-operator CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hsj-operator",
		Short:         "Keep warm pools of standby Jobs for HotStandbyJob resources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(Run())
	cmd.AddCommand(Config())
	cmd.AddCommand(Version())

	return cmd
}

// loadConfig resolves the configuration for cmd from its --config file and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(config.FlagConfig)
	if err != nil {
		return nil, err
	}
	return config.Load(path, cmd.Flags())
}
