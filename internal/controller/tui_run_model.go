package controller

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "github.com/mouse-blink/scenario/internal/model"
)

// caseLine is one settled case rendered in the results pane.
type caseLine struct {
	name   string
	status m.CaseStatus
	err    string
}

// runModel handles the TUI display while suites execute.
type runModel struct {
	width       int
	height      int
	spin        spinner.Model
	currentFile string
	lines       []caseLine
	counts      m.Counts
	fileErrors  []string
	finished    bool
	results     []m.FileResult
}

func newRunModel() runModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	return runModel{spin: spin}
}

func (rm runModel) Init() tea.Cmd {
	return tea.Batch(
		rm.spin.Tick,
		tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
			return tickMsg(t)
		}),
	)
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.width = msg.Width
		rm.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return rm, tea.Quit
		}

	case tickMsg:
		return rm, tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case spinner.TickMsg:
		var cmd tea.Cmd
		rm.spin, cmd = rm.spin.Update(msg)

		return rm, cmd

	case fileStartedMsg:
		rm.currentFile = string(msg.origin)

	case caseCompletedMsg:
		rm = rm.handleCaseCompleted(msg)

	case fileCompletedMsg:
		if msg.result.Error != "" {
			rm.fileErrors = append(rm.fileErrors,
				fmt.Sprintf("%s: %s", msg.result.Origin, msg.result.Error))
		}

	case summaryMsg:
		rm.finished = true
		rm.results = msg.results
		rm.currentFile = ""
	}

	return rm, nil
}

func (rm runModel) handleCaseCompleted(msg caseCompletedMsg) runModel {
	rm.lines = append(rm.lines, caseLine{
		name:   strings.Join(msg.report.Names, " › "),
		status: msg.report.Status,
		err:    msg.report.Error,
	})

	switch msg.report.Status {
	case m.StatusPassed:
		rm.counts.Passed++
	case m.StatusFailed:
		rm.counts.Failed++
	case m.StatusSkipped:
		rm.counts.Skipped++
	}

	return rm
}

func (rm runModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 0, 1, 2)

	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	title := titleStyle.Render("Scenario Suites")

	summary := summaryStyle.Render(fmt.Sprintf(
		"Passed: %s  •  Failed: %s  •  Skipped: %s",
		accentStyle.Render(fmt.Sprintf("%d", rm.counts.Passed)),
		accentStyle.Render(fmt.Sprintf("%d", rm.counts.Failed)),
		accentStyle.Render(fmt.Sprintf("%d", rm.counts.Skipped)),
	))

	sections := []string{title, summary}

	if rm.finished {
		sections = append(sections, rm.viewResults())
	} else {
		sections = append(sections, rm.viewProgress())
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Padding(1, 0, 0, 2)

	sections = append(sections, footerStyle.Render("Press q to quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (rm runModel) viewProgress() string {
	lineStyle := lipgloss.NewStyle().Padding(0, 0, 0, 2)

	file := rm.currentFile
	if file == "" {
		file = "waiting for suites…"
	}

	lines := []string{lineStyle.Render(rm.spin.View() + fileStyle.Render(file))}

	for _, line := range tailLines(rm.lines, rm.visibleLines()) {
		lines = append(lines, lineStyle.Render(renderCaseLine(line, rm.width-6)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (rm runModel) viewResults() string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("6")).
		Margin(0, 1, 0, 2).
		Padding(0, 1)

	lines := make([]string, 0, len(rm.results)+len(rm.fileErrors))

	for _, result := range rm.results {
		counts := result.Count()
		mark := passStyle.Render("✓")

		if result.Failed() {
			mark = failStyle.Render("✗")
		}

		lines = append(lines, fmt.Sprintf("%s %s  %d passed, %d failed, %d skipped",
			mark, fileStyle.Render(string(result.Origin)),
			counts.Passed, counts.Failed, counts.Skipped))
	}

	for _, fileErr := range rm.fileErrors {
		lines = append(lines, failStyle.Render(fileErr))
	}

	if len(lines) == 0 {
		lines = append(lines, skipStyle.Render("no scenario files found"))
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (rm runModel) visibleLines() int {
	visible := rm.height - 8
	if visible < 5 {
		visible = 5
	}

	return visible
}

func renderCaseLine(line caseLine, width int) string {
	name := truncateLine(line.name, width)

	switch line.status {
	case m.StatusFailed:
		return failStyle.Render("✗") + " " + name + "  " + failStyle.Render(line.err)
	case m.StatusSkipped:
		return skipStyle.Render("- " + name)
	default:
		return passStyle.Render("✓") + " " + name
	}
}

func tailLines(lines []caseLine, visible int) []caseLine {
	if len(lines) <= visible {
		return lines
	}

	return lines[len(lines)-visible:]
}

func truncateLine(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}

	ellipsis := "…"

	maxWidth := width - lipgloss.Width(ellipsis)
	if maxWidth <= 0 {
		return ellipsis
	}

	currentWidth := 0

	result := make([]rune, 0, len(text))
	for _, r := range text {
		rWidth := lipgloss.Width(string(r))
		if currentWidth+rWidth > maxWidth {
			break
		}

		result = append(result, r)
		currentWidth += rWidth
	}

	return string(result) + ellipsis
}
