package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/scenario/internal/model"
)

func TestParsePaths(t *testing.T) {
	assert.Equal(t, []m.Path{"./..."}, parsePaths(nil))
	assert.Equal(t, []m.Path{"./spec", "./e2e/..."}, parsePaths([]string{"./spec", "./e2e/..."}))
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

const passingFixture = `given("a sum", () => {
  $inputs = { a: 1, b: 2 };
  $subject = $inputs.a + $inputs.b;

  it("adds", () => {
    expect($subject).toBe(3);
  });
});
`

const failingFixture = `given("a sum", () => {
  $subject = 1;

  it("is wrong on purpose", () => {
    expect($subject).toBe(2);
  });
});
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer

	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return buf.String(), err
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "sum.scenario.js", passingFixture)

	out, err := execute(t, "list", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "sum.scenario.js")
	assert.Contains(t, out, "2")
	assert.Contains(t, out, "TOTAL FILES 1")
}

func TestRunCommand_PassingSuite(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "sum.scenario.js", passingFixture)

	out, err := execute(t, "run", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "a sum › adds")
	assert.Contains(t, out, "TOTAL FILES 1")
}

func TestRunCommand_FailingSuiteSetsExitError(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "sum.scenario.js", failingFixture)

	out, err := execute(t, "run", dir)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "1 of 1 files failed")
	assert.Contains(t, out, "expected 1 to be 2")
}

func TestRunCommand_WritesReports(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "sum.scenario.js", passingFixture)

	reportPath := filepath.Join(t.TempDir(), "run.json")

	_, err := execute(t, "run", dir, "--reports", reportPath)
	require.NoError(t, err)

	loaded, err := reportStore.LoadReports(m.Path(reportPath))
	require.NoError(t, err)

	require.Len(t, loaded, 1)
	assert.Equal(t, 1, loaded[0].Count().Passed)
}
