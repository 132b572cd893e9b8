package commands

import (
	"flag"
	"os"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	ctrlzap "sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/paia-tech/hsj-operator/cmd/hsj-operator/handlers"
	"github.com/paia-tech/hsj-operator/internal/logging"
)

// Run returns the command that starts the operator.
//
// Configuration is read from --config, HSJ_* environment variables and the
// flags below, in increasing precedence. The --zap-* flags override the
// logging section.
func Run() *cobra.Command {
	var zapOpts ctrlzap.Options

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the operator",
		Long: `Start the HotStandbyJob operator.

The operator watches HotStandbyJob resources and their member Jobs and pods,
and keeps each pool at its idle target within [minReplicas, maxReplicas].

Examples:
  # Run against the current kubeconfig context, all namespaces
  hsj-operator run --leader-elect=false

  # Run with a configuration file, watching a single namespace
  hsj-operator run --config /etc/hsj/config.yaml --namespace inference`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr, logging.FlagOverrides(&zapOpts))
			if err != nil {
				return err
			}

			return handlers.Run(ctrl.SetupSignalHandler(), cfg, logger, version)
		},
	}

	goFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	zapOpts.BindFlags(goFlags)
	cmd.Flags().AddGoFlagSet(goFlags)

	return cmd
}
