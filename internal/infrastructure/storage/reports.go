package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pricelens/backend/internal/domain"
)

// WriteValidationReport saves a validation report as indented JSON under the
// reports directory, named <market>_validation_report.json.
func WriteValidationReport(report *domain.ValidationReport, reportsDir, market string) error {
	path := filepath.Join(reportsDir, fmt.Sprintf("%s_validation_report.json", market))
	return writeJSON(report, path)
}

// WriteSummaryReport saves a summary analytics report as indented JSON under
// the reports directory, named <market>_summary_analytics_report.json.
func WriteSummaryReport(report *domain.SummaryReport, reportsDir, market string) error {
	path := filepath.Join(reportsDir, fmt.Sprintf("%s_summary_analytics_report.json", market))
	return writeJSON(report, path)
}

// LoadRawRecords reads a raw record file (a JSON array of flat string maps)
// from disk. This is the offline counterpart of the feed client for record
// files dropped by the scraping layer.
func LoadRawRecords(path string) ([]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw records: %w", err)
	}

	var records []map[string]string
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse raw records: %w", err)
	}
	return records, nil
}

// LoadMarketMap reads a branch code-to-name map (e.g. the Vero market map the
// scraper produces). A missing file is not an error: lookups simply fall back
// to raw codes, so an empty map is returned instead.
func LoadMarketMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read market map: %w", err)
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse market map: %w", err)
	}
	return m, nil
}

// writeJSON marshals v with indentation and writes it to path, creating
// parent directories as needed.
func writeJSON(v any, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create reports directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
