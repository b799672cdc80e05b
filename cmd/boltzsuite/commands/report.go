// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartekus/boltzsuite/cmd/boltzsuite/internal/clierr"
	"github.com/bartekus/boltzsuite/internal/cases"
	"github.com/bartekus/boltzsuite/internal/report"
	"github.com/bartekus/boltzsuite/internal/runner"
)

func newReportCmd() *cobra.Command {
	var (
		jsonOut  bool
		stateDir string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render the report for the last recorded run",
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := runner.NewStateStore(stateDir).ReadLastRun()
			if err != nil {
				return clierr.Wrap(1, "reading run state", err)
			}
			if run == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No run state found.")
				return nil
			}

			rep := report.Summarize(run.ID, run.Records, run.Elapsed)
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			rep.Render(cmd.OutOrStdout(), true)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the report as JSON")
	cmd.Flags().StringVar(&stateDir, "state-dir", defaultStateDir, "directory run state was stored in")

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered test cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range cases.Registry() {
				ifaces := make([]string, 0, len(c.Interfaces))
				for _, i := range c.Interfaces {
					ifaces = append(ifaces, string(i))
				}
				eps := make([]string, 0, len(c.Endpoints))
				for _, e := range c.Endpoints {
					eps = append(eps, string(e))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-32s interfaces=%s endpoints=%s\n",
					c.Name, strings.Join(ifaces, ","), strings.Join(eps, ","))
			}
			return nil
		},
	}
}
