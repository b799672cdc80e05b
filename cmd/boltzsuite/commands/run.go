// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	prettyconsole "github.com/thessem/zap-prettyconsole"
	"go.uber.org/zap"

	"github.com/bartekus/boltzsuite/cmd/boltzsuite/internal/clierr"
	"github.com/bartekus/boltzsuite/internal/backoff"
	"github.com/bartekus/boltzsuite/internal/boltz"
	"github.com/bartekus/boltzsuite/internal/cases"
	"github.com/bartekus/boltzsuite/internal/cliexec"
	"github.com/bartekus/boltzsuite/internal/report"
	"github.com/bartekus/boltzsuite/internal/runner"
	"github.com/bartekus/boltzsuite/internal/selection"
	"github.com/bartekus/boltzsuite/internal/suite"
)

const (
	defaultLocalURL  = "http://localhost:8000"
	defaultHostedURL = "https://health.api.nvidia.com"
	defaultBinary    = "boltz2"
	defaultStateDir  = ".boltzsuite"

	credentialEnv = "NVIDIA_API_KEY"
)

func newRunCmd() *cobra.Command {
	var (
		apiOnly    bool
		cliOnly    bool
		localOnly  bool
		nvidiaOnly bool
		quick      bool
		jsonOut    bool
		stateDir   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the test matrix and report the outcomes",
		Long: `Runs every applicable case against the selected endpoints and interfaces.
The run itself exits 0 regardless of individual case outcomes; only invalid
flag combinations or internal harness errors exit non-zero.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			log := newLogger(verbose)
			defer func() { _ = log.Sync() }()

			credential := os.Getenv(credentialEnv)
			matrix, err := selection.Select(selection.Flags{
				APIOnly:    apiOnly,
				CLIOnly:    cliOnly,
				LocalOnly:  localOnly,
				NvidiaOnly: nvidiaOnly,
			}, credential != "", log)
			if err != nil {
				return clierr.Wrap(2, "invalid configuration", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var progress runner.Progress
			if !jsonOut {
				progress = newConsoleProgress(cmd.OutOrStdout(), verbose)
			}

			deps := &runner.Deps{
				Clients:    clientFactory(credential),
				Targets:    targetFor,
				Invoker:    cliexec.NewInvoker(envOr("BOLTZ_CLI", defaultBinary), log),
				Controller: backoff.New(backoff.DefaultConfig(), nil, nil, log),
				Progress:   progress,
				Log:        log,
				Quick:      quick,
			}

			orch := runner.New(cases.Registry(), deps)
			run, runErr := orch.Execute(ctx, matrix)

			if runErr != nil && !interrupted(runErr) {
				return clierr.Wrap(1, "harness error", runErr)
			}

			if err := runner.NewStateStore(stateDir).WriteRun(run); err != nil {
				log.Warn("could not persist run state", zap.Error(err))
			}

			rep := report.Summarize(run.ID, run.Records, run.Elapsed)
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return clierr.Wrap(1, "encoding report", err)
				}
			} else {
				rep.Render(cmd.OutOrStdout(), true)
			}

			if runErr != nil {
				if len(run.Records) == 0 {
					return clierr.New(1, "interrupted before any case completed")
				}
				log.Warn("run interrupted, report covers completed cases only")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&apiOnly, "api-only", false, "test the client API only")
	cmd.Flags().BoolVar(&cliOnly, "cli-only", false, "test the boltz2 CLI only")
	cmd.Flags().BoolVar(&localOnly, "local-only", false, "test the local endpoint only")
	cmd.Flags().BoolVar(&nvidiaOnly, "nvidia-only", false, "test the NVIDIA hosted endpoint only")
	cmd.Flags().BoolVar(&quick, "quick", false, "reduced parameters for fast runs")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the report as JSON")
	cmd.Flags().StringVar(&stateDir, "state-dir", defaultStateDir, "directory to store run state")

	return cmd
}

// newLogger follows the deployment convention: pretty console by default,
// JSON when LOG_FORMAT=json.
func newLogger(verbose bool) *zap.Logger {
	if os.Getenv("LOG_FORMAT") == "json" {
		log, err := zap.NewProduction()
		if err != nil {
			panic("failed to initialize logger: " + err.Error())
		}
		return log
	}
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}
	return prettyconsole.NewLogger(level)
}

func clientFactory(credential string) func(ep suite.Endpoint) boltz.Client {
	clients := map[suite.Endpoint]boltz.Client{}
	return func(ep suite.Endpoint) boltz.Client {
		if c, ok := clients[ep]; ok {
			return c
		}
		var c boltz.Client
		if ep == suite.EndpointNvidia {
			c = boltz.NewHTTPClient(envOr("BOLTZ_HOSTED_URL", defaultHostedURL),
				boltz.WithAPIKey(credential),
				boltz.WithEndpointType(boltz.EndpointHosted))
		} else {
			c = boltz.NewHTTPClient(envOr("BOLTZ_LOCAL_URL", defaultLocalURL))
		}
		clients[ep] = c
		return c
	}
}

func targetFor(ep suite.Endpoint) cliexec.Target {
	if ep == suite.EndpointNvidia {
		return cliexec.Target{
			BaseURL:      envOr("BOLTZ_HOSTED_URL", defaultHostedURL),
			EndpointType: string(boltz.EndpointHosted),
		}
	}
	return cliexec.Target{BaseURL: envOr("BOLTZ_LOCAL_URL", defaultLocalURL)}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
