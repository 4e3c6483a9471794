package adapter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/scenario/internal/model"
)

func TestReportStore_RoundTrip(t *testing.T) {
	store := NewReportStore()

	path := m.Path(filepath.Join(t.TempDir(), "reports", "run.json"))

	saved := []m.FileResult{
		{
			Origin: "spec/a.scenario.js",
			Cases: []m.CaseReport{
				{Names: []string{"g", "i"}, Status: m.StatusPassed},
				{Names: []string{"g", "w", "j"}, Status: m.StatusFailed, Error: "boom"},
			},
		},
		{Origin: "spec/b.scenario.js", Error: "syntax error"},
	}

	require.NoError(t, store.SaveReports(path, saved))

	loaded, err := store.LoadReports(path)
	require.NoError(t, err)

	assert.Equal(t, saved, loaded)
}

func TestReportStore_LoadMissingFile(t *testing.T) {
	store := NewReportStore()

	_, err := store.LoadReports(m.Path(filepath.Join(t.TempDir(), "absent.json")))
	assert.Error(t, err)
}

func TestReportStore_LoadRejectsGarbage(t *testing.T) {
	store := NewReportStore()

	path := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, NewLocalSourceFS().WriteFile(m.Path(path), []byte("not json")))

	_, err := store.LoadReports(m.Path(path))
	assert.Error(t, err)
}
