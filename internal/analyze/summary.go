package analyze

import (
	"math"

	"ado-governance-audit/internal/model"
	"ado-governance-audit/internal/risk"
)

// policyChecks is the number of checks graded on an enabled reviewer policy.
const policyChecks = 3

// Summarize counts what the audit collected and grades compliance as the
// share of passed policy checks. A repository without a reviewer policy counts
// as failing every one of them. An audit without findings is fully compliant.
func Summarize(a *model.Audit) model.Summary {
	s := model.Summary{Projects: len(a.Projects)}
	for _, p := range a.Projects {
		s.Admins += len(p.Admins)
		s.ServiceConnections += len(p.ServiceConnections)
		for _, r := range p.Repositories {
			s.Repositories++
			if r.Compliant() {
				s.CompliantRepos++
			}
			if lacksReviewerPolicy(r) {
				s.FailedChecks += policyChecks
				continue
			}
			for _, f := range r.PolicyFindings {
				if f.Passed {
					s.PassedChecks++
				} else {
					s.FailedChecks++
				}
			}
		}
	}

	s.Compliance = 100
	if total := s.PassedChecks + s.FailedChecks; total > 0 {
		s.Compliance = round(float64(s.PassedChecks)*100/float64(total), 1)
	}
	s.Posture = string(risk.FromCompliance(s.Compliance).Posture)
	return s
}

// EvaluateAudit fills the derived sections of the audit.
func EvaluateAudit(a *model.Audit) {
	a.Summary = Summarize(a)
	a.Checks = BuildChecks(a)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
