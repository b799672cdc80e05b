// Package selection maps the user's flags and the hosted credential's
// presence onto the active execution matrix.
package selection

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bartekus/boltzsuite/internal/suite"
)

// ErrConflictingFlags marks a mutually exclusive flag pair.
var ErrConflictingFlags = errors.New("conflicting flags")

// ErrMissingCredential marks an explicit hosted-only request without the
// credential required to honor it. Running zero cases silently would be
// indistinguishable from a clean run, so this is a configuration error.
var ErrMissingCredential = errors.New("hosted endpoint requested but no credential is set")

// Flags are the selection switches from the command line.
type Flags struct {
	APIOnly    bool
	CLIOnly    bool
	LocalOnly  bool
	NvidiaOnly bool
}

// Select validates the flags and produces the matrix of (endpoint,
// interface) combinations to run. Without a hosted credential the hosted
// endpoint is dropped silently unless it was the only thing asked for.
func Select(f Flags, credentialPresent bool, log *zap.Logger) (suite.Matrix, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if f.APIOnly && f.CLIOnly {
		return suite.Matrix{}, fmt.Errorf("%w: --api-only and --cli-only", ErrConflictingFlags)
	}
	if f.LocalOnly && f.NvidiaOnly {
		return suite.Matrix{}, fmt.Errorf("%w: --local-only and --nvidia-only", ErrConflictingFlags)
	}
	if f.NvidiaOnly && !credentialPresent {
		return suite.Matrix{}, ErrMissingCredential
	}

	var endpoints []suite.Endpoint
	if !f.NvidiaOnly {
		endpoints = append(endpoints, suite.EndpointLocal)
	}
	if !f.LocalOnly {
		if credentialPresent {
			endpoints = append(endpoints, suite.EndpointNvidia)
		} else {
			log.Info("no hosted credential set, skipping hosted endpoint")
		}
	}

	// Direct calls always run before external-process invocations.
	var interfaces []suite.Interface
	if !f.CLIOnly {
		interfaces = append(interfaces, suite.InterfaceAPI)
	}
	if !f.APIOnly {
		interfaces = append(interfaces, suite.InterfaceCLI)
	}

	return suite.Matrix{Endpoints: endpoints, Interfaces: interfaces}, nil
}
