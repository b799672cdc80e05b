// Package runner drives the test matrix: it walks the active (endpoint,
// interface) combinations, executes every applicable case through the
// backoff controller, and owns the run-wide ordered result list.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bartekus/boltzsuite/internal/backoff"
	"github.com/bartekus/boltzsuite/internal/boltz"
	"github.com/bartekus/boltzsuite/internal/cliexec"
	"github.com/bartekus/boltzsuite/internal/suite"
)

// Invoker runs one external-process form. *cliexec.Invoker is the real one.
type Invoker interface {
	Run(ctx context.Context, target cliexec.Target, args []string) (*suite.Outcome, error)
}

// Deps contains everything the orchestrator needs injected. Clients and
// targets are resolved per endpoint so tests can substitute fakes.
type Deps struct {
	Clients    func(ep suite.Endpoint) boltz.Client
	Targets    func(ep suite.Endpoint) cliexec.Target
	Invoker    Invoker
	Controller *backoff.Controller
	Progress   Progress
	Log        *zap.Logger
	Quick      bool
}

// Progress receives advisory per-case notifications. It must not influence
// control flow.
type Progress interface {
	CaseStarted(name string, ep suite.Endpoint, iface suite.Interface)
	CaseFinished(rec *suite.Result)
}

// Run is the complete record of one harness execution.
type Run struct {
	ID      string          `json:"id"`
	Started time.Time       `json:"started"`
	Elapsed time.Duration   `json:"elapsed"`
	Records []*suite.Result `json:"records"`
}

// Orchestrator executes the registry sequentially over a matrix.
type Orchestrator struct {
	cases []suite.Case
	deps  *Deps
}

// New builds an orchestrator over the given ordered cases.
func New(cases []suite.Case, deps *Deps) *Orchestrator {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Orchestrator{cases: cases, deps: deps}
}

// Execute runs every applicable case for every combination in the matrix,
// endpoints outer, interfaces inner, cases in registry order. Cases run one
// at a time; a case failure never aborts the run. On cancellation the run
// stops promptly and the records collected so far are returned alongside
// the context's error so a partial report can still be rendered.
func (o *Orchestrator) Execute(ctx context.Context, m suite.Matrix) (*Run, error) {
	run := &Run{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
	defer func() { run.Elapsed = time.Since(run.Started) }()

	params := suite.ParamsFor(o.deps.Quick)
	o.deps.Log.Info("starting run",
		zap.String("run_id", run.ID),
		zap.Int("endpoints", len(m.Endpoints)),
		zap.Int("interfaces", len(m.Interfaces)),
		zap.Bool("quick", o.deps.Quick))

	for _, ep := range m.Endpoints {
		for _, iface := range m.Interfaces {
			for _, c := range o.cases {
				if !c.AppliesTo(ep, iface) {
					continue
				}
				if ctx.Err() != nil {
					return run, ctx.Err()
				}
				rec, err := o.runCase(ctx, c, ep, iface, params)
				if err != nil {
					return run, err
				}
				run.Records = append(run.Records, rec)
				if ctx.Err() != nil {
					return run, ctx.Err()
				}
			}
		}
	}
	return run, nil
}

// runCase produces exactly one terminal record. A non-nil error means a
// harness bug, not a case failure.
func (o *Orchestrator) runCase(ctx context.Context, c suite.Case, ep suite.Endpoint, iface suite.Interface, params boltz.Params) (*suite.Result, error) {
	rec := suite.NewResult(c.Name, iface, ep)

	if c.Fixture != "" {
		if _, err := os.Stat(c.Fixture); err != nil {
			if markErr := rec.MarkSkipped(fmt.Sprintf("required fixture %s not found", c.Fixture)); markErr != nil {
				return nil, markErr
			}
			o.finish(rec)
			return rec, nil
		}
	}

	if o.deps.Progress != nil {
		o.deps.Progress.CaseStarted(c.Name, ep, iface)
	}

	out, elapsed, err := o.deps.Controller.Execute(ctx, ep, iface, o.operation(c, ep, iface, params))
	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.Canceled) {
			msg = "interrupted"
		}
		if markErr := rec.MarkFailed(elapsed, msg); markErr != nil {
			return nil, markErr
		}
		o.deps.Log.Debug("case failed",
			zap.String("case", c.Name),
			zap.String("endpoint", string(ep)),
			zap.String("interface", string(iface)),
			zap.String("error", msg))
	} else {
		if markErr := rec.MarkSuccess(elapsed, out); markErr != nil {
			return nil, markErr
		}
	}

	o.finish(rec)
	return rec, nil
}

func (o *Orchestrator) operation(c suite.Case, ep suite.Endpoint, iface suite.Interface, params boltz.Params) backoff.Operation {
	if iface == suite.InterfaceAPI {
		client := o.deps.Clients(ep)
		return func(ctx context.Context) (*suite.Outcome, error) {
			return c.Direct(ctx, client, params)
		}
	}
	target := o.deps.Targets(ep)
	args := c.Args(params)
	return func(ctx context.Context) (*suite.Outcome, error) {
		return o.deps.Invoker.Run(ctx, target, args)
	}
}

func (o *Orchestrator) finish(rec *suite.Result) {
	if o.deps.Progress != nil {
		o.deps.Progress.CaseFinished(rec)
	}
}
