package controller

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	m "github.com/mouse-blink/scenario/internal/model"
)

func updateModel(t *testing.T, rm runModel, msg tea.Msg) runModel {
	t.Helper()

	next, _ := rm.Update(msg)

	got, ok := next.(runModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}

	return got
}

func TestRunModel_TracksCounts(t *testing.T) {
	rm := newRunModel()
	rm = updateModel(t, rm, tea.WindowSizeMsg{Width: 100, Height: 40})

	rm = updateModel(t, rm, fileStartedMsg{origin: "a.scenario.js"})
	rm = updateModel(t, rm, caseCompletedMsg{
		origin: "a.scenario.js",
		report: m.CaseReport{Names: []string{"g", "i"}, Status: m.StatusPassed},
	})
	rm = updateModel(t, rm, caseCompletedMsg{
		origin: "a.scenario.js",
		report: m.CaseReport{Names: []string{"g", "j"}, Status: m.StatusFailed, Error: "boom"},
	})
	rm = updateModel(t, rm, caseCompletedMsg{
		origin: "a.scenario.js",
		report: m.CaseReport{Names: []string{"g", "k"}, Status: m.StatusSkipped},
	})

	if rm.counts.Passed != 1 || rm.counts.Failed != 1 || rm.counts.Skipped != 1 {
		t.Errorf("counts = %+v", rm.counts)
	}

	view := rm.View()
	if !strings.Contains(view, "a.scenario.js") {
		t.Error("progress view missing current file")
	}

	if !strings.Contains(view, "g › j") {
		t.Error("progress view missing failed case line")
	}
}

func TestRunModel_SummarySwitchesToResultsView(t *testing.T) {
	rm := newRunModel()
	rm = updateModel(t, rm, tea.WindowSizeMsg{Width: 100, Height: 40})

	rm = updateModel(t, rm, summaryMsg{results: []m.FileResult{
		{
			Origin: "a.scenario.js",
			Cases:  []m.CaseReport{{Status: m.StatusPassed}},
		},
		{Origin: "b.scenario.js", Error: "engine exploded"},
	}})

	if !rm.finished {
		t.Fatal("summary message must finish the run view")
	}

	view := rm.View()
	if !strings.Contains(view, "a.scenario.js") || !strings.Contains(view, "b.scenario.js") {
		t.Errorf("results view missing files:\n%s", view)
	}
}

func TestRunModel_QuitKeys(t *testing.T) {
	rm := newRunModel()

	_, cmd := rm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("q must quit")
	}
}

func TestRunModel_FileErrorAccumulates(t *testing.T) {
	rm := newRunModel()

	rm = updateModel(t, rm, fileCompletedMsg{
		result: m.FileResult{Origin: "bad.scenario.js", Error: "syntax error"},
	})

	if len(rm.fileErrors) != 1 {
		t.Fatalf("fileErrors = %v", rm.fileErrors)
	}
}
