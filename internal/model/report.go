package model

import "time"

// CaseStatus is the outcome of one executed it case.
type CaseStatus string

const (
	// StatusPassed marks a case whose chain and test body completed.
	StatusPassed CaseStatus = "passed"
	// StatusFailed marks a case that threw or rejected anywhere in its chain.
	StatusFailed CaseStatus = "failed"
	// StatusSkipped marks a case excluded by skip/only modes.
	StatusSkipped CaseStatus = "skipped"
)

// CaseReport records the outcome of a single it case.
type CaseReport struct {
	// Names is the description path from the outermost given to the case.
	Names    []string      `json:"names"`
	Status   CaseStatus    `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// FileResult holds the suite outcome for a single scenario file.
type FileResult struct {
	Origin Path         `json:"origin"`
	Cases  []CaseReport `json:"cases"`
	// Error records a file-level failure (transform diagnostic or VM error)
	// that prevented the suite from producing case reports.
	Error string `json:"error,omitempty"`
}

// Counts tallies case outcomes for summaries.
type Counts struct {
	Passed  int
	Failed  int
	Skipped int
}

// Count sums case statuses for the file.
func (fr FileResult) Count() Counts {
	var c Counts

	for _, cr := range fr.Cases {
		switch cr.Status {
		case StatusPassed:
			c.Passed++
		case StatusFailed:
			c.Failed++
		case StatusSkipped:
			c.Skipped++
		}
	}

	return c
}

// Failed reports whether the file had any failing case or a file-level error.
func (fr FileResult) Failed() bool {
	return fr.Error != "" || fr.Count().Failed > 0
}
