package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"ado-governance-audit/internal/model"
)

func WriteMarkdown(path string, a *model.Audit) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writeMarkdown(f, a)
	return nil
}

func writeMarkdown(f io.Writer, a *model.Audit) {
	s := a.Summary
	fmt.Fprintf(f, "# Azure DevOps Governance Audit\n\n")
	fmt.Fprintf(f, "- Organization: %s\n", a.Organization)
	fmt.Fprintf(f, "- Scan: %s (%s)\n", a.Scan.ScanID, a.Scan.StartedAt.UTC().Format("2006-01-02 15:04:05Z"))
	if a.Scan.Cancelled {
		fmt.Fprintf(f, "- **Scan was cancelled; results are partial.**\n")
	}
	fmt.Fprintf(f, "\n## Compliance: %.1f%%\n\n**Risk posture: %s**\n\n", s.Compliance, s.Posture)
	fmt.Fprintf(f, "- Projects: %d\n", s.Projects)
	fmt.Fprintf(f, "- Admins: %d\n", s.Admins)
	fmt.Fprintf(f, "- Repositories: %d (%d compliant)\n", s.Repositories, s.CompliantRepos)
	fmt.Fprintf(f, "- Service connections: %d\n", s.ServiceConnections)
	fmt.Fprintf(f, "- Checks: %d passed, %d failed\n\n", s.PassedChecks, s.FailedChecks)

	if len(a.Checks) > 0 {
		fmt.Fprintf(f, "### Checks\n\n| Check | Status | Passed | Failed |\n|---|---|---|---|\n")
		for _, c := range a.Checks {
			fmt.Fprintf(f, "| %s | %s | %d | %d |\n", c.Title, c.Status, c.Passed, c.Failed)
		}
		fmt.Fprintln(f)
	}

	if a.Comparison != nil {
		c := a.Comparison
		fmt.Fprintf(f, "### Changes since %s\n\n", c.PreviousScannedAt)
		fmt.Fprintf(f, "- Compliance: %.1f%% -> %.1f%% (%+.1f)\n", c.PreviousCompliance, s.Compliance, c.ComplianceDelta)
		list(f, "New findings", c.FindingsNew)
		list(f, "Resolved findings", c.FindingsResolved)
		list(f, "Projects added", c.ProjectsAdded)
		list(f, "Projects removed", c.ProjectsRemoved)
		fmt.Fprintln(f)
	}

	fmt.Fprintf(f, "## Projects\n\n")
	for _, p := range a.Projects {
		fmt.Fprintf(f, "### %s\n\n", p.Name)
		fmt.Fprintf(f, "**Admins:** ")
		if len(p.Admins) == 0 {
			fmt.Fprintf(f, "none found\n\n")
		} else {
			fmt.Fprintf(f, "%s\n\n", strings.Join(p.Admins, ", "))
		}
		if a.Options.IncludeRepos {
			if len(p.Repositories) == 0 {
				fmt.Fprintf(f, "No repositories found.\n\n")
			}
			for _, r := range p.Repositories {
				fmt.Fprintf(f, "- `%s`\n", r.Name)
				for _, fd := range r.PolicyFindings {
					mark := "FAIL"
					if fd.Passed {
						mark = "PASS"
					}
					fmt.Fprintf(f, "  - [%s] %s\n", mark, fd.Message)
				}
			}
			fmt.Fprintln(f)
		}
		if a.Options.IncludeServiceConnections {
			fmt.Fprintf(f, "**Service connections:** ")
			if len(p.ServiceConnections) == 0 {
				fmt.Fprintf(f, "none found\n\n")
				continue
			}
			fmt.Fprintln(f)
			for _, sc := range p.ServiceConnections {
				fmt.Fprintf(f, "- %s (%s) `%s`\n", sc.Name, sc.Type, sc.ID)
			}
			fmt.Fprintln(f)
		}
	}

	if len(a.RemediationSteps) == 0 {
		return
	}
	fmt.Fprintf(f, "## Remediation\n\n")
	for i, r := range a.RemediationSteps {
		fmt.Fprintf(f, "%d. **%s** (%s, P%d)\n", i+1, r.Title, r.Project, r.Priority)
		fmt.Fprintf(f, "   %s\n", r.Detail)
		if r.Config != nil {
			if body, err := json.MarshalIndent(r.Config, "   ", "  "); err == nil {
				fmt.Fprintf(f, "   `%s`:\n   ```json\n   %s\n   ```\n", r.ConfigFile, body)
			}
		}
		for _, c := range r.Commands {
			fmt.Fprintf(f, "   ```sh\n   %s\n   ```\n", c)
		}
	}
}

func list(f io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(f, "- %s: %s\n", title, strings.Join(items, ", "))
}
