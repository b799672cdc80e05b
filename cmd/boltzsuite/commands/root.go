// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd constructs the boltzsuite root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("BOLTZSUITE_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "boltzsuite",
		Short:         "boltzsuite - test harness for Boltz-2 prediction deployments",
		Long: `boltzsuite exercises a Boltz-2 structure-prediction service through the
client API and the boltz2 CLI, against local and NVIDIA-hosted endpoints,
and aggregates the outcomes into a report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of boltzsuite",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "boltzsuite version %s\n", version)
		},
	})

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newReportCmd())

	return cmd
}
