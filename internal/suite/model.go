// Package suite holds the data model shared across the harness: the
// execution matrix vocabulary, per-case result records, and case descriptors.
package suite

import (
	"context"

	"github.com/bartekus/boltzsuite/internal/boltz"
)

// Interface is the execution path a case runs through.
type Interface string

const (
	// InterfaceAPI invokes the prediction client in-process.
	InterfaceAPI Interface = "api"
	// InterfaceCLI invokes the external boltz2 binary.
	InterfaceCLI Interface = "cli"
)

// Endpoint is the deployment target a case runs against.
type Endpoint string

const (
	EndpointLocal  Endpoint = "local"
	EndpointNvidia Endpoint = "nvidia"
)

// Matrix is the set of (endpoint, interface) combinations active for a run.
// Slice order is execution order.
type Matrix struct {
	Endpoints  []Endpoint
	Interfaces []Interface
}

// Empty reports whether the matrix schedules nothing at all.
func (m Matrix) Empty() bool {
	return len(m.Endpoints) == 0 || len(m.Interfaces) == 0
}

// ParamsFor maps quick mode onto the numeric prediction parameters.
// Quick mode uses the minimum the server accepts.
func ParamsFor(quick bool) boltz.Params {
	if quick {
		return boltz.Params{RecyclingSteps: 1, SamplingSteps: 10, DiffusionSamples: 1}
	}
	return boltz.Params{RecyclingSteps: 2, SamplingSteps: 20, DiffusionSamples: 1}
}

// Outcome carries the optional signals a successful case produced.
type Outcome struct {
	Confidence *float64          `json:"confidence,omitempty"`
	Structures *int              `json:"structures,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

// Case couples a scenario name to its executable forms and applicability.
// Descriptors are static; the registry defines them once at startup.
type Case struct {
	Name       string
	Interfaces []Interface
	Endpoints  []Endpoint

	// Fixture, when set, is a file that must exist before the case may run.
	// A missing fixture skips the case instead of failing it.
	Fixture string

	// Direct invokes the prediction client's matching capability. Set only
	// when InterfaceAPI is applicable.
	Direct func(ctx context.Context, client boltz.Client, p boltz.Params) (*Outcome, error)

	// Args builds the boltz2 subcommand argv, without the binary name or
	// endpoint flags. Set only when InterfaceCLI is applicable.
	Args func(p boltz.Params) []string
}

// AppliesTo reports whether the case is scheduled for the given combination.
func (c Case) AppliesTo(ep Endpoint, iface Interface) bool {
	return containsEndpoint(c.Endpoints, ep) && containsInterface(c.Interfaces, iface)
}

func containsEndpoint(s []Endpoint, v Endpoint) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func containsInterface(s []Interface, v Interface) bool {
	for _, i := range s {
		if i == v {
			return true
		}
	}
	return false
}
