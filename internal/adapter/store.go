package adapter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	m "github.com/mouse-blink/scenario/internal/model"
)

// ReportStore persists and retrieves run reports.
type ReportStore interface {
	SaveReports(path m.Path, results []m.FileResult) error
	LoadReports(path m.Path) ([]m.FileResult, error)
}

type reportStore struct{}

// NewReportStore constructs a JSON-backed ReportStore.
func NewReportStore() ReportStore {
	return &reportStore{}
}

func (rs *reportStore) SaveReports(path m.Path, results []m.FileResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return err
	}

	return os.WriteFile(string(path), data, 0o600)
}

func (rs *reportStore) LoadReports(path m.Path) ([]m.FileResult, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, err
	}

	var results []m.FileResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("decode reports %s: %w", path, err)
	}

	return results, nil
}
