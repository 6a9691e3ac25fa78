package compare

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"

	"ado-governance-audit/internal/model"
)

// Load reads a previously exported JSON audit.
func Load(path string) (*model.Audit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read previous audit: %w", err)
	}
	var a model.Audit
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse previous audit %s: %w", path, err)
	}
	if a.Scan.ScanID == "" {
		return nil, fmt.Errorf("parse previous audit %s: no scan id", path)
	}
	return &a, nil
}

// Diff compares prev against curr. Lists are sorted; findings are the
// failing ones keyed as project/repository/ruleID.
func Diff(prev, curr *model.Audit) model.Comparison {
	r := model.Comparison{
		PreviousScanID:     prev.Scan.ScanID,
		PreviousScannedAt:  prev.Scan.StartedAt.UTC().Format(time.RFC3339),
		PreviousCompliance: prev.Summary.Compliance,
		ComplianceDelta:    round1(curr.Summary.Compliance - prev.Summary.Compliance),
	}

	prevProjects, currProjects := projectNames(prev), projectNames(curr)
	r.ProjectsAdded = nilIfEmpty(sets.List(currProjects.Difference(prevProjects)))
	r.ProjectsRemoved = nilIfEmpty(sets.List(prevProjects.Difference(currProjects)))

	prevFailing, currFailing := failingKeys(prev), failingKeys(curr)
	r.FindingsNew = nilIfEmpty(sets.List(currFailing.Difference(prevFailing)))
	r.FindingsResolved = nilIfEmpty(sets.List(prevFailing.Difference(currFailing)))
	return r
}

func projectNames(a *model.Audit) sets.Set[string] {
	s := sets.New[string]()
	for _, p := range a.Projects {
		s.Insert(p.Name)
	}
	return s
}

func failingKeys(a *model.Audit) sets.Set[string] {
	s := sets.New[string]()
	for _, p := range a.Projects {
		for _, repo := range p.Repositories {
			for _, f := range repo.PolicyFindings {
				if !f.Passed {
					s.Insert(fmt.Sprintf("%s/%s/%s", p.Name, repo.Name, f.ID))
				}
			}
		}
	}
	return s
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
