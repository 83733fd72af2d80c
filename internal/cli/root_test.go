package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/runlens/internal/cli/config"
	clitest "github.com/leapstack-labs/runlens/internal/cli/testutil"
	"github.com/leapstack-labs/runlens/internal/testutil"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func projectFlags(t *testing.T) []string {
	t.Helper()
	storage := testutil.SampleStorage(t)
	return []string{
		"--project-dir", t.TempDir(),
		"--storage-dir", storage,
		"--state", filepath.Join(t.TempDir(), "index.db"),
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"serve", "runs", "show", "export", "tui", "init-view", "version", "completion"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"config", "project-dir", "storage-dir", "view-config", "state", "origin", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRootCmd_Runs(t *testing.T) {
	args := append([]string{"runs", "--output", "json"}, projectFlags(t)...)

	out, err := executeRoot(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, `"alpha"`)
	assert.Contains(t, out, `"beta"`)
}

func TestRootCmd_ShowWithViewConfig(t *testing.T) {
	viewPath := filepath.Join(t.TempDir(), "view.yaml")
	require.NoError(t, os.WriteFile(viewPath, []byte(`index: run_id
panels:
  - name: Hyperparameters
    columns: [config]
    type: data
`), 0o644))

	args := append([]string{"show", "alpha", "--output", "text", "--view-config", viewPath}, projectFlags(t)...)
	out, err := executeRoot(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Hyperparameters")
	assert.NotContains(t, out, "Summary")
}

func TestRootCmd_ConfigFile(t *testing.T) {
	_, cfgPath := clitest.SetupTestProject(t, config.OutputMarkdown)

	out, err := executeRoot(t, "runs", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "| 1 | alpha |")
	clitest.AssertNoANSI(t, out)
}

func TestRootCmd_EnvConfig(t *testing.T) {
	storage := testutil.SampleStorage(t)
	t.Setenv("RUNLENS_STORAGE_DIR", storage)
	t.Setenv("RUNLENS_STATE_PATH", filepath.Join(t.TempDir(), "index.db"))
	t.Setenv("RUNLENS_OUTPUT", "json")

	out, err := executeRoot(t, "runs", "--project-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, `"alpha"`)
}

func TestRootCmd_InvalidOutput(t *testing.T) {
	args := append([]string{"runs", "--output", "yaml"}, projectFlags(t)...)

	_, err := executeRoot(t, args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output")
}

func TestRootCmd_VersionSkipsConfig(t *testing.T) {
	out, err := executeRoot(t, "version", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "runlens v"+Version)
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := executeRoot(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "runlens")
		})
	}

	_, err := executeRoot(t, "completion", "tcsh")
	assert.Error(t, err)
}
