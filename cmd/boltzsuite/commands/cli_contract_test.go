// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/boltzsuite/cmd/boltzsuite/internal/clierr"
	"github.com/bartekus/boltzsuite/internal/testutil/golden"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLIContract(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	for _, c := range []string{"run", "list", "report", "version", "help", "completion"} {
		assert.Contains(t, out, c, "expected top-level command %q in root help", c)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("BOLTZSUITE_VERSION", "1.2.3")

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "boltzsuite version 1.2.3\n", out)
}

func TestVersionCommand_DevFallback(t *testing.T) {
	t.Setenv("BOLTZSUITE_VERSION", "")

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "0.0.0-dev")
}

func TestListCommand_Golden(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)

	dir := golden.TestdataDir(t)
	if *golden.Update {
		golden.Write(t, dir, "list", out)
	}
	assert.Equal(t, golden.Read(t, dir, "list"), out)
}

func TestRunCommand_ConflictingInterfaceFlags(t *testing.T) {
	_, err := execute(t, "run", "--api-only", "--cli-only")
	require.Error(t, err)
	assert.Equal(t, 2, clierr.ExitCodeOf(err))
}

func TestRunCommand_ConflictingEndpointFlags(t *testing.T) {
	_, err := execute(t, "run", "--local-only", "--nvidia-only")
	require.Error(t, err)
	assert.Equal(t, 2, clierr.ExitCodeOf(err))
}

func TestRunCommand_NvidiaOnlyWithoutCredential(t *testing.T) {
	t.Setenv("NVIDIA_API_KEY", "")

	_, err := execute(t, "run", "--nvidia-only")
	require.Error(t, err)
	assert.Equal(t, 2, clierr.ExitCodeOf(err))
	assert.Contains(t, err.Error(), "no credential")
}

func TestReportCommand_NoState(t *testing.T) {
	out, err := execute(t, "report", "--state-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No run state found.")
}

func TestRunCommand_HelpDocumentsFlags(t *testing.T) {
	out, err := execute(t, "run", "--help")
	require.NoError(t, err)

	for _, flag := range []string{"--api-only", "--cli-only", "--local-only", "--nvidia-only", "--quick", "--json", "--state-dir"} {
		assert.Contains(t, out, flag)
	}
}
