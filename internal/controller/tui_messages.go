package controller

import (
	"time"

	"github.com/mouse-blink/scenario/internal/domain"
	m "github.com/mouse-blink/scenario/internal/model"
)

// Message types.
type tickMsg time.Time

type estimationMsg struct {
	rows []domain.EstimateRow
	err  error
}

type fileStartedMsg struct {
	origin m.Path
}

type caseCompletedMsg struct {
	origin m.Path
	report m.CaseReport
}

type fileCompletedMsg struct {
	result m.FileResult
}

type summaryMsg struct {
	results []m.FileResult
}
