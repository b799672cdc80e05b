package cliexec

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarget_Flags(t *testing.T) {
	local := Target{BaseURL: "http://localhost:8000"}
	assert.Equal(t, []string{"--base-url", "http://localhost:8000"}, local.Flags())

	hosted := Target{BaseURL: "https://health.api.nvidia.com", EndpointType: "nvidia_hosted"}
	assert.Equal(t, []string{
		"--base-url", "https://health.api.nvidia.com",
		"--endpoint-type", "nvidia_hosted",
	}, hosted.Flags())
}

func TestScanOutput_BothSignals(t *testing.T) {
	out := ScanOutput("Prediction complete\nAverage confidence: 0.874\nGenerated 2 structures\n")
	require.NotNil(t, out.Confidence)
	assert.InDelta(t, 0.874, *out.Confidence, 1e-9)
	require.NotNil(t, out.Structures)
	assert.Equal(t, 2, *out.Structures)
}

func TestScanOutput_PlainConfidenceLabel(t *testing.T) {
	out := ScanOutput("Confidence: 0.5\n")
	require.NotNil(t, out.Confidence)
	assert.InDelta(t, 0.5, *out.Confidence, 1e-9)
	assert.Nil(t, out.Structures)
}

func TestScanOutput_UnparseableSignalsLeftUnset(t *testing.T) {
	out := ScanOutput("Confidence: very high\nGenerated some structures\n")
	assert.Nil(t, out.Confidence)
	assert.Nil(t, out.Structures)

	out = ScanOutput("no signals at all")
	assert.Nil(t, out.Confidence)
	assert.Nil(t, out.Structures)
}

func TestInvoker_RunSuccess(t *testing.T) {
	skipOnWindows(t)

	iv := NewInvoker("true", nil)
	out, err := iv.Run(context.Background(), Target{BaseURL: "http://localhost:8000"}, []string{"health"})
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Nil(t, out.Confidence)
}

func TestInvoker_RunFailureCarriesExitCode(t *testing.T) {
	skipOnWindows(t)

	iv := NewInvoker("false", nil)
	_, err := iv.Run(context.Background(), Target{BaseURL: "http://localhost:8000"}, []string{"health"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited 1")
}

func TestInvoker_Timeout(t *testing.T) {
	skipOnWindows(t)

	iv := NewInvoker("sleep", nil)
	iv.Timeout = 50 * time.Millisecond

	// sleep ignores the endpoint flags and just sleeps its last argument.
	_, err := iv.Run(context.Background(), Target{}, []string{"5"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), "timed out")
}

func TestInvoker_CallerCancellationIsNotATimeout(t *testing.T) {
	skipOnWindows(t)

	iv := NewInvoker("sleep", nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := iv.Run(ctx, Target{}, []string{"5"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "a\nb", tail("a\nb\n", 5))

	long := "1\n2\n3\n4\n5"
	got := tail(long, 2)
	assert.Contains(t, got, "truncated")
	assert.Contains(t, got, "4\n5")
	assert.NotContains(t, got, "1\n2")
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX coreutils")
	}
}
