package analyze

import (
	"fmt"

	"ado-governance-audit/internal/model"
)

var checkTitles = []struct {
	id, title string
}{
	{model.RuleBranchPolicyMissing, "Reviewer branch policy enabled"},
	{model.RuleMinReviewers, "At least one reviewer required"},
	{model.RuleBlockLastPusher, "Last pusher cannot approve"},
	{model.RuleResetVotes, "Votes reset on new pushes"},
}

func statusFromScore(score int) string {
	if score >= 90 {
		return "PASS"
	}
	if score >= 60 {
		return "WARN"
	}
	return "FAIL"
}

// BuildChecks rolls repository findings up per rule, in a fixed rule order.
// Every graded repository counts toward every rule: one without a reviewer
// policy fails them all. No checks are reported when no repository was graded.
func BuildChecks(a *model.Audit) []model.Check {
	graded := 0
	passed := map[string]int{}
	for _, p := range a.Projects {
		for _, r := range p.Repositories {
			if len(r.PolicyFindings) == 0 {
				continue
			}
			graded++
			if lacksReviewerPolicy(r) {
				continue
			}
			passed[model.RuleBranchPolicyMissing]++
			for _, f := range r.PolicyFindings {
				if f.Passed {
					passed[f.ID]++
				}
			}
		}
	}
	if graded == 0 {
		return nil
	}

	out := make([]model.Check, 0, len(checkTitles))
	for _, ct := range checkTitles {
		n := passed[ct.id]
		out = append(out, model.Check{
			ID:      ct.id,
			Title:   ct.title,
			Status:  statusFromScore(n * 100 / graded),
			Passed:  n,
			Failed:  graded - n,
			Message: fmt.Sprintf("%d of %d repositories compliant", n, graded),
		})
	}
	return out
}

// lacksReviewerPolicy reports whether the repository was graded without an
// enabled reviewer policy.
func lacksReviewerPolicy(r model.Repository) bool {
	for _, f := range r.PolicyFindings {
		if f.ID == model.RuleBranchPolicyMissing && !f.Passed {
			return true
		}
	}
	return false
}
