package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformCommand_WritesCodeAndMap(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "sum.scenario.js", passingFixture)

	outDir := filepath.Join(t.TempDir(), "out")

	out, err := execute(t, "transform", dir, "--out-dir", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "sum.scenario.js")

	code, err := os.ReadFile(filepath.Join(outDir, "sum.scenario.js"))
	require.NoError(t, err)

	assert.Contains(t, string(code), "registerGiven(")
	assert.Contains(t, string(code), "globalThis.__scenario")
	assert.Contains(t, string(code), "//# sourceMappingURL=sum.scenario.js.map")

	mapDoc, err := os.ReadFile(filepath.Join(outDir, "sum.scenario.js.map"))
	require.NoError(t, err)

	var decoded struct {
		Version  int    `json:"version"`
		Mappings string `json:"mappings"`
	}
	require.NoError(t, json.Unmarshal(mapDoc, &decoded))
	assert.Equal(t, 3, decoded.Version)
	assert.NotEmpty(t, decoded.Mappings)
}

func TestTransformCommand_UnchangedFileHasNoMap(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "plain.scenario.js", "export const nothing = 1;\n")

	outDir := filepath.Join(t.TempDir(), "out")

	_, err := execute(t, "transform", dir, "--out-dir", outDir)
	require.NoError(t, err)

	code, err := os.ReadFile(filepath.Join(outDir, "plain.scenario.js"))
	require.NoError(t, err)
	assert.Equal(t, "export const nothing = 1;\n", string(code))

	_, err = os.Stat(filepath.Join(outDir, "plain.scenario.js.map"))
	assert.True(t, os.IsNotExist(err))
}

func TestTransformCommand_Stdout(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "sum.scenario.js", passingFixture)

	out, err := execute(t, "transform", dir, "--stdout")
	require.NoError(t, err)

	assert.Contains(t, out, "// "+path)
	assert.Contains(t, out, "registerIt(")
}
