// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/runlens/internal/cli/config"
	"github.com/leapstack-labs/runlens/internal/testutil"
)

// SetupTestProject creates a temporary project: sample run logs under logs/,
// and a runlens.yaml pointing at them with the given output mode. It returns
// the project root and the config file path.
func SetupTestProject(t *testing.T, output string) (root, cfgPath string) {
	t.Helper()

	root = t.TempDir()
	storage := filepath.Join(root, config.DefaultStorageDir)
	testutil.WriteRunLog(t, storage, "runs.jsonl", testutil.SampleRows...)
	testutil.WriteArtifact(t, storage, "alpha/preds.csv", "id,pred\n1,0.9\n2,cat\n")

	content := "storage_dir: " + config.DefaultStorageDir + "\n" +
		"state_path: .runlens/index.db\n" +
		"output: " + output + "\n"
	cfgPath = filepath.Join(root, "runlens.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create runlens.yaml: %v", err)
	}
	return root, cfgPath
}

// LoadTestProject sets up a project and loads its config as the current one.
// The config is reset when the test ends.
func LoadTestProject(t *testing.T, output string) string {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	root, cfgPath := SetupTestProject(t, output)
	if _, err := config.LoadConfig(cfgPath, nil); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	return root
}

// Execute runs cmd with args and returns its combined output.
func Execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
