// Package history keeps an index of past scans in an output directory.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ado-governance-audit/internal/model"
	"ado-governance-audit/internal/trend"
)

const maxEntries = 200

type IndexEntry struct {
	ScanID       string  `json:"scanId"`
	TimestampUTC string  `json:"timestampUtc"`
	Organization string  `json:"organization"`
	Compliance   float64 `json:"compliance"`
	Posture      string  `json:"posture"`
	Cancelled    bool    `json:"cancelled,omitempty"`
	JSONFile     string  `json:"jsonFile"`
}

type Index struct {
	Entries []IndexEntry `json:"entries"`
}

// Result is the trend of this scan against the previous entry of the same
// organization. Label is trend.LabelFirstRun when there is none.
type Result struct {
	Label    string
	Previous float64
	Current  float64
	Delta    float64
}

// Record archives a into outDir/history and appends it to the index.
func Record(outDir string, a *model.Audit, now time.Time) (Result, error) {
	dir := filepath.Join(outDir, "history")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("history: mkdir: %w", err)
	}

	indexPath := filepath.Join(dir, "index.json")
	idx, err := readIndex(indexPath)
	if err != nil {
		return Result{}, err
	}

	res := Result{Label: trend.LabelFirstRun, Current: a.Summary.Compliance}
	if prev, ok := idx.last(a.Organization); ok {
		t := trend.Compute(prev.Compliance, a.Summary.Compliance)
		res = Result{Label: t.Label(), Previous: t.From, Current: t.To, Delta: t.Delta}
	}

	name := fmt.Sprintf("ado-audit-%s.json", now.UTC().Format("20060102-150405"))
	if err := writeJSON(filepath.Join(dir, name), a); err != nil {
		return Result{}, err
	}

	idx.Entries = append(idx.Entries, IndexEntry{
		ScanID:       a.Scan.ScanID,
		TimestampUTC: now.UTC().Format(time.RFC3339),
		Organization: a.Organization,
		Compliance:   a.Summary.Compliance,
		Posture:      a.Summary.Posture,
		Cancelled:    a.Scan.Cancelled,
		JSONFile:     filepath.ToSlash(filepath.Join("history", name)),
	})
	if len(idx.Entries) > maxEntries {
		idx.Entries = idx.Entries[len(idx.Entries)-maxEntries:]
	}
	if err := writeJSON(indexPath, idx); err != nil {
		return Result{}, err
	}
	return res, nil
}

func readIndex(path string) (*Index, error) {
	var idx Index
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: read index: %w", err)
	}
	if len(raw) == 0 {
		return &idx, nil
	}
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("history: parse %s: %w", path, err)
	}
	return &idx, nil
}

func (idx *Index) last(org string) (IndexEntry, bool) {
	for i := len(idx.Entries) - 1; i >= 0; i-- {
		if idx.Entries[i].Organization == org {
			return idx.Entries[i], true
		}
	}
	return IndexEntry{}, false
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
