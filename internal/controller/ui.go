// Package controller provides output adapters for displaying scenario runs.
package controller

import (
	"github.com/mouse-blink/scenario/internal/domain"
	m "github.com/mouse-blink/scenario/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeList StartMode = iota
	ModeRun
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithListMode sets the UI to call-site listing mode.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// WithRunMode sets the UI to suite execution mode.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// UI defines the interface for displaying scenario discovery and run
// progress. Implementations can use different output methods (simple text,
// TUI, etc).
type UI interface {
	Start(options ...StartOption) error
	Close()
	DisplayEstimation(rows []domain.EstimateRow, err error) error
	FileStarted(origin m.Path)
	CaseCompleted(origin m.Path, report m.CaseReport)
	FileCompleted(result m.FileResult)
	DisplaySummary(results []m.FileResult) error
}
