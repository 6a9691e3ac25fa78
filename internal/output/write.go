// Package output writes the audit to disk and prints the CI summary line.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"ado-governance-audit/internal/config"
	"ado-governance-audit/internal/model"
)

// File names inside the output directory.
const (
	JSONFile         = "ado-audit.json"
	YAMLFile         = "ado-audit.yaml"
	MarkdownFile     = "ado-audit.md"
	RedactedJSONFile = "ado-audit-redacted.json"
)

// WriteAll writes every requested format to outDir and returns the paths
// written, in order.
func WriteAll(outDir string, a *model.Audit, formats []string, redact bool) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", outDir, err)
	}

	var written []string
	write := func(name string, fn func(string, *model.Audit) error) error {
		path := filepath.Join(outDir, name)
		if err := fn(path, a); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	if slices.Contains(formats, config.FormatJSON) {
		if err := write(JSONFile, WriteJSON); err != nil {
			return written, err
		}
	}
	if slices.Contains(formats, config.FormatYAML) {
		if err := write(YAMLFile, WriteYAML); err != nil {
			return written, err
		}
	}
	if slices.Contains(formats, config.FormatMarkdown) {
		if err := write(MarkdownFile, WriteMarkdown); err != nil {
			return written, err
		}
	}
	if slices.Contains(formats, config.FormatCSV) {
		if err := WriteCSV(outDir, a); err != nil {
			return written, err
		}
		written = append(written, filepath.Join(outDir, "csv"))
	}
	if redact {
		if err := write(RedactedJSONFile, WriteRedactedJSON); err != nil {
			return written, err
		}
	}
	return written, nil
}

// Status values of the CI summary.
const (
	StatusPassed    = "PASSED"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

// CISummary condenses the audit into the CI result. A cancelled scan is
// never reported as passed.
func CISummary(a *model.Audit, minCompliance int, trendLabel string, delta float64, now time.Time) model.ScanSummary {
	s := model.ScanSummary{
		ScanID:       a.Scan.ScanID,
		Organization: a.Organization,
		TimestampUtc: now.UTC().Format(time.RFC3339),
		Status:       StatusPassed,
		Compliance:   a.Summary.Compliance,
		MinScore:     minCompliance,
		Posture:      a.Summary.Posture,
		Checks:       a.Checks,
		Trend:        trendLabel,
		Delta:        delta,
	}
	if s.Checks == nil {
		s.Checks = []model.Check{}
	}
	switch {
	case a.Scan.Cancelled:
		s.Status = StatusCancelled
	case a.Summary.Compliance < float64(minCompliance):
		s.Status = StatusFailed
	}
	return s
}

// PrintCISummary writes s as a single JSON line.
func PrintCISummary(w io.Writer, s model.ScanSummary) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
