package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ado-governance-audit/internal/model"
)

// WriteCSV writes one CSV file per audit section to outDir/csv/.
// Files are UTF-8 with BOM for clean Excel opening on Windows.
func WriteCSV(outDir string, a *model.Audit) error {
	dir := filepath.Join(outDir, "csv")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("csv: mkdir: %w", err)
	}
	writers := []func(string, *model.Audit) error{
		writeFindingsCSV,
		writeAdminsCSV,
		writeServiceConnectionsCSV,
		writeRemediationCSV,
	}
	for _, fn := range writers {
		if err := fn(dir, a); err != nil {
			return err
		}
	}
	return nil
}

func csvFile(dir, name string) (*os.File, *csv.Writer, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, nil, err
	}
	// UTF-8 BOM for Excel
	_, _ = f.Write([]byte{0xEF, 0xBB, 0xBF})
	return f, csv.NewWriter(f), nil
}

func writeFindingsCSV(dir string, a *model.Audit) error {
	f, w, err := csvFile(dir, "findings.csv")
	if err != nil {
		return err
	}
	defer f.Close()
	_ = w.Write([]string{"Project", "Repository", "Repository ID", "Rule", "Passed", "Message"})
	for _, p := range a.Projects {
		for _, r := range p.Repositories {
			for _, fd := range r.PolicyFindings {
				_ = w.Write([]string{p.Name, r.Name, r.ID, fd.ID, strconv.FormatBool(fd.Passed), fd.Message})
			}
		}
	}
	w.Flush()
	return w.Error()
}

func writeAdminsCSV(dir string, a *model.Audit) error {
	f, w, err := csvFile(dir, "admins.csv")
	if err != nil {
		return err
	}
	defer f.Close()
	_ = w.Write([]string{"Project", "Email"})
	for _, p := range a.Projects {
		for _, e := range p.Admins {
			_ = w.Write([]string{p.Name, e})
		}
	}
	w.Flush()
	return w.Error()
}

func writeServiceConnectionsCSV(dir string, a *model.Audit) error {
	f, w, err := csvFile(dir, "service-connections.csv")
	if err != nil {
		return err
	}
	defer f.Close()
	_ = w.Write([]string{"Project", "Name", "Type", "ID"})
	for _, p := range a.Projects {
		for _, sc := range p.ServiceConnections {
			_ = w.Write([]string{p.Name, sc.Name, sc.Type, sc.ID})
		}
	}
	w.Flush()
	return w.Error()
}

func writeRemediationCSV(dir string, a *model.Audit) error {
	f, w, err := csvFile(dir, "remediation.csv")
	if err != nil {
		return err
	}
	defer f.Close()
	_ = w.Write([]string{"Priority", "Project", "Repository", "Title", "Detail", "Commands", "Config File", "Finding ID"})
	for _, s := range a.RemediationSteps {
		_ = w.Write([]string{
			strconv.Itoa(s.Priority),
			s.Project,
			s.Repository,
			s.Title,
			s.Detail,
			strings.Join(s.Commands, " | "),
			s.ConfigFile,
			s.FindingID,
		})
	}
	w.Flush()
	return w.Error()
}
