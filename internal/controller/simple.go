package controller

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mouse-blink/scenario/internal/domain"
	m "github.com/mouse-blink/scenario/internal/model"
)

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	skipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	fileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(_ ...StartOption) error {
	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close() {

}

// DisplayEstimation prints the per-file call-site counts or error.
func (s *SimpleUI) DisplayEstimation(rows []domain.EstimateRow, err error) error {
	if err != nil {
		s.printf("estimation error: %v\n", err)
		return err
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Call Sites"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	total := 0

	for _, row := range rows {
		table.Append([]string{string(row.Origin), fmt.Sprintf("%d", row.CallSites)})

		total += row.CallSites
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(rows)),
		fmt.Sprintf("%d", total),
	})

	table.Render()
	s.printf("\n%s", tableBuffer.String())

	return nil
}

// FileStarted announces the suite about to run.
func (s *SimpleUI) FileStarted(origin m.Path) {
	s.printf("%s\n", fileStyle.Render(string(origin)))
}

// CaseCompleted prints one settled case.
func (s *SimpleUI) CaseCompleted(_ m.Path, report m.CaseReport) {
	name := strings.Join(report.Names, " › ")

	switch report.Status {
	case m.StatusPassed:
		s.printf("  %s %s (%s)\n", passStyle.Render("✓"), name, report.Duration)
	case m.StatusFailed:
		s.printf("  %s %s\n      %s\n", failStyle.Render("✗"), name, failStyle.Render(report.Error))
	case m.StatusSkipped:
		s.printf("  %s %s\n", skipStyle.Render("-"), skipStyle.Render(name))
	}
}

// FileCompleted prints a file-level failure, if any.
func (s *SimpleUI) FileCompleted(result m.FileResult) {
	if result.Error != "" {
		s.printf("  %s %s\n", failStyle.Render("✗"), failStyle.Render(result.Error))
	}
}

// DisplaySummary prints the per-file counts table with totals.
func (s *SimpleUI) DisplaySummary(results []m.FileResult) error {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"File", "Passed", "Failed", "Skipped"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
	})

	var totals m.Counts

	for _, result := range results {
		counts := result.Count()
		totals.Passed += counts.Passed
		totals.Failed += counts.Failed
		totals.Skipped += counts.Skipped

		table.Append([]string{
			string(result.Origin),
			fmt.Sprintf("%d", counts.Passed),
			fmt.Sprintf("%d", counts.Failed),
			fmt.Sprintf("%d", counts.Skipped),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(results)),
		fmt.Sprintf("%d", totals.Passed),
		fmt.Sprintf("%d", totals.Failed),
		fmt.Sprintf("%d", totals.Skipped),
	})

	table.Render()
	s.printf("\n%s", tableBuffer.String())

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
