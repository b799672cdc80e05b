// Package cliexec invokes the external boltz2 binary and turns its exit
// status and output into harness outcomes.
package cliexec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bartekus/boltzsuite/internal/suite"
)

// ErrTimeout marks a process that exceeded the wall-clock limit. Timeouts
// are terminal; the retry controller never classifies them as rate limits.
var ErrTimeout = errors.New("command timed out")

// DefaultTimeout bounds a single CLI invocation.
const DefaultTimeout = 300 * time.Second

// Target tells the invoker which deployment the binary should talk to.
type Target struct {
	BaseURL      string
	EndpointType string // empty for local
}

// Flags returns the global endpoint flags prepended to every subcommand.
func (t Target) Flags() []string {
	var flags []string
	if t.BaseURL != "" {
		flags = append(flags, "--base-url", t.BaseURL)
	}
	if t.EndpointType != "" {
		flags = append(flags, "--endpoint-type", t.EndpointType)
	}
	return flags
}

// Invoker runs boltz2 subcommands with a timeout and scans their output.
type Invoker struct {
	Binary  string
	Timeout time.Duration
	Log     *zap.Logger
}

// NewInvoker builds an invoker for the named binary, defaulting the timeout.
func NewInvoker(binary string, log *zap.Logger) *Invoker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Invoker{Binary: binary, Timeout: DefaultTimeout, Log: log}
}

// Run executes one subcommand against the target. A non-zero exit becomes an
// error carrying the tail of the combined output so rate-limit signatures
// remain classifiable. Success returns whatever signals could be scanned
// from stdout; unparseable signals are simply absent.
func (iv *Invoker) Run(ctx context.Context, target Target, args []string) (*suite.Outcome, error) {
	timeout := iv.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argv := append(target.Flags(), args...)
	cmd := exec.CommandContext(runCtx, iv.Binary, argv...)
	cmd.Env = os.Environ()

	iv.Log.Debug("invoking boltz2", zap.Strings("args", argv))
	out, err := cmd.CombinedOutput()
	if err != nil {
		// Distinguish our deadline from a caller cancellation.
		if runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		exitCode := 1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return nil, fmt.Errorf("boltz2 exited %d: %s", exitCode, tail(string(out), 20))
	}

	return ScanOutput(string(out)), nil
}

var (
	confidencePattern = regexp.MustCompile(`(?i)(?:average )?confidence:\s*([0-9]*\.?[0-9]+)`)
	structuresPattern = regexp.MustCompile(`(?i)generated\s+(\d+)\s+structure`)
)

// ScanOutput extracts the optional confidence and structure-count signals
// from process output. The scan is best effort: anything that does not parse
// leaves the corresponding field unset.
func ScanOutput(out string) *suite.Outcome {
	outcome := &suite.Outcome{}
	if m := confidencePattern.FindStringSubmatch(out); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			outcome.Confidence = &v
		}
	}
	if m := structuresPattern.FindStringSubmatch(out); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			outcome.Structures = &v
		}
	}
	return outcome
}

// tail keeps the last n lines of output, marking any truncation.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
		return "...(truncated)...\n" + strings.Join(lines, "\n")
	}
	return s
}
