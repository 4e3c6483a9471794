package controller

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mouse-blink/scenario/internal/domain"
	m "github.com/mouse-blink/scenario/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display. The program
// runs on its own goroutine; progress callbacks feed it messages.
type TUI struct {
	output  io.Writer
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start initializes the UI. Listing mode stays plain text; run mode starts
// the interactive program.
func (t *TUI) Start(options ...StartOption) error {
	config := &StartConfig{}
	for _, option := range options {
		option(config)
	}

	if config.mode != ModeRun {
		return nil
	}

	t.program = tea.NewProgram(newRunModel(), tea.WithOutput(t.output))
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)

		_, _ = t.program.Run()
	}()

	return nil
}

// Close waits for the program to finish so the final results view stays on
// screen until the user quits.
func (t *TUI) Close() {
	if t.program == nil {
		return
	}

	<-t.done
	t.program = nil
}

// DisplayEstimation prints the per-file call-site counts or error.
func (t *TUI) DisplayEstimation(rows []domain.EstimateRow, err error) error {
	if err != nil {
		_, _ = fmt.Fprintf(t.output, "estimation error: %v\n", err)

		return err
	}

	total := 0
	for _, row := range rows {
		total += row.CallSites
	}

	_, _ = fmt.Fprintf(t.output, "Found %d call sites across %d files\n", total, len(rows))

	return nil
}

// FileStarted announces the suite about to run.
func (t *TUI) FileStarted(origin m.Path) {
	t.send(fileStartedMsg{origin: origin})
}

// CaseCompleted reports one settled case.
func (t *TUI) CaseCompleted(origin m.Path, report m.CaseReport) {
	t.send(caseCompletedMsg{origin: origin, report: report})
}

// FileCompleted reports a finished suite.
func (t *TUI) FileCompleted(result m.FileResult) {
	t.send(fileCompletedMsg{result: result})
}

// DisplaySummary switches the program to the results view.
func (t *TUI) DisplaySummary(results []m.FileResult) error {
	t.send(summaryMsg{results: results})

	return nil
}

func (t *TUI) send(msg tea.Msg) {
	if t.program == nil {
		return
	}

	t.program.Send(msg)
}
