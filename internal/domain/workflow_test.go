package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	m "github.com/mouse-blink/scenario/internal/model"
)

// memFS is an in-memory SourceFS for workflow tests.
type memFS struct {
	files  map[m.Path][]byte
	writes map[m.Path][]byte
}

func newMemFS(files map[m.Path][]byte) *memFS {
	return &memFS{files: files, writes: map[m.Path][]byte{}}
}

func (f *memFS) Discover([]m.Path) ([]m.Source, error) {
	sources := make([]m.Source, 0, len(f.files))
	for path := range f.files {
		sources = append(sources, m.Source{Origin: path, Lang: m.DetectLanguage(path)})
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Origin < sources[j].Origin })

	return sources, nil
}

func (f *memFS) ReadFile(path m.Path) ([]byte, error) {
	content, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}

	return content, nil
}

func (f *memFS) WriteFile(path m.Path, content []byte) error {
	f.writes[path] = content
	return nil
}

// scriptedVM registers canned cases against the runner, ignoring the suite
// code entirely.
type scriptedVM struct {
	runner Runner
	fail   bool
}

func (v *scriptedVM) RunSuite(string, []byte) error {
	if v.fail {
		return errors.New("engine exploded")
	}

	v.runner.Group("g", m.ModeNormal, func() {
		v.runner.Case("passes", m.ModeNormal, func() error { return nil })
		v.runner.Case("fails", m.ModeNormal, func() error { return errors.New("boom") })
	})

	return nil
}

const validSuite = `given("g", () => {
  $subject = 1;

  it("i", () => {
    expect($subject).toBe(1);
  });
});
`

func TestWorkflow_Estimate(t *testing.T) {
	fs := newMemFS(map[m.Path][]byte{
		"a.scenario.js": []byte(validSuite),
		"b.scenario.js": []byte("export const nothing = 1;\n"),
	})

	wf := NewWorkflow(fs, nil, nil)

	sources, err := wf.Discover("./...")
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}

	rows, err := wf.Estimate(sources)
	if err != nil {
		t.Fatalf("Estimate error: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	if rows[0].CallSites != 2 {
		t.Errorf("a.scenario.js call sites = %d, want 2", rows[0].CallSites)
	}

	if rows[1].CallSites != 0 {
		t.Errorf("b.scenario.js call sites = %d, want 0", rows[1].CallSites)
	}
}

func TestWorkflow_TransformAllKeepsSourceOrder(t *testing.T) {
	files := map[m.Path][]byte{}
	for i := 0; i < 8; i++ {
		files[m.Path(fmt.Sprintf("s%d.scenario.js", i))] = []byte(validSuite)
	}

	fs := newMemFS(files)
	wf := NewWorkflow(fs, nil, nil)

	sources, _ := fs.Discover(nil)

	results, err := wf.TransformAll(sources, 4)
	if err != nil {
		t.Fatalf("TransformAll error: %v", err)
	}

	if len(results) != len(sources) {
		t.Fatalf("expected %d results, got %d", len(sources), len(results))
	}

	for i, result := range results {
		if result.Origin != sources[i].Origin {
			t.Errorf("result %d origin = %s, want %s", i, result.Origin, sources[i].Origin)
		}

		if !result.Changed {
			t.Errorf("result %d not rewritten", i)
		}
	}
}

func TestWorkflow_TransformAllPropagatesDiagnostics(t *testing.T) {
	fs := newMemFS(map[m.Path][]byte{
		"bad.scenario.js": []byte("given(\"g\", () => {\n"),
	})

	wf := NewWorkflow(fs, nil, nil)
	sources, _ := fs.Discover(nil)

	_, err := wf.TransformAll(sources, 2)
	if err == nil {
		t.Fatal("expected a diagnostic")
	}

	if !strings.Contains(err.Error(), "syntax error") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWorkflow_RunIsolatesFileFailures(t *testing.T) {
	fs := newMemFS(map[m.Path][]byte{
		"bad.scenario.js":  []byte("given(\"g\", () => {\n"),
		"good.scenario.js": []byte(validSuite),
	})

	factory := func(runner Runner) SuiteVM {
		return &scriptedVM{runner: runner}
	}

	wf := NewWorkflow(fs, factory, nil)
	sources, _ := fs.Discover(nil)

	var started, finished []m.Path

	var caseCount int

	results, err := wf.Run(sources, RunOptions{
		OnFileStart: func(origin m.Path) { started = append(started, origin) },
		OnCase:      func(m.Path, m.CaseReport) { caseCount++ },
		OnFile:      func(result m.FileResult) { finished = append(finished, result.Origin) },
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	bad, good := results[0], results[1]

	if !strings.Contains(bad.Error, "syntax error") {
		t.Errorf("bad file error = %q", bad.Error)
	}

	if len(bad.Cases) != 0 {
		t.Errorf("bad file produced cases: %+v", bad.Cases)
	}

	if good.Error != "" {
		t.Errorf("good file error = %q", good.Error)
	}

	counts := good.Count()
	if counts.Passed != 1 || counts.Failed != 1 {
		t.Errorf("good file counts = %+v", counts)
	}

	if len(started) != 2 || len(finished) != 2 {
		t.Errorf("hooks: started %d, finished %d, want 2/2", len(started), len(finished))
	}

	if caseCount != 2 {
		t.Errorf("case hook saw %d cases, want 2", caseCount)
	}
}

func TestWorkflow_RunReportsVMErrors(t *testing.T) {
	fs := newMemFS(map[m.Path][]byte{
		"good.scenario.js": []byte(validSuite),
	})

	factory := func(runner Runner) SuiteVM {
		return &scriptedVM{runner: runner, fail: true}
	}

	wf := NewWorkflow(fs, factory, nil)
	sources, _ := fs.Discover(nil)

	results, err := wf.Run(sources, RunOptions{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if !strings.Contains(results[0].Error, "engine exploded") {
		t.Errorf("result error = %q", results[0].Error)
	}
}
