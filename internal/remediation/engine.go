// Package remediation turns failing branch-policy findings into prioritized
// fixes with the az CLI commands that apply them.
package remediation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"ado-governance-audit/internal/analyze"
	"ado-governance-audit/internal/model"
)

const (
	PriorityCritical    = 1
	PriorityRecommended = 2
)

// ReviewerPolicyTypeID is the Azure DevOps policy type of the minimum
// reviewers policy.
const ReviewerPolicyTypeID = "fa4e907d-c16b-4a4c-9dfa-4906e5d171dd"

// Generate produces one step per failing finding, critical steps first and
// otherwise in scan order.
func Generate(a *model.Audit) []model.RemediationStep {
	branch := a.Options.Branch
	if branch == "" {
		branch = "main"
	}

	var steps []model.RemediationStep
	for _, p := range a.Projects {
		for _, r := range p.Repositories {
			for _, f := range r.PolicyFindings {
				if f.Passed {
					continue
				}
				if s := stepForFinding(f, a.Organization, p.Name, branch, r); s != nil {
					steps = append(steps, *s)
				}
			}
		}
	}

	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Priority < steps[j].Priority
	})
	return steps
}

func stepForFinding(f model.Finding, org, project, branch string, r model.Repository) *model.RemediationStep {
	step := model.RemediationStep{
		Project:    project,
		Repository: r.Name,
		FindingID:  f.ID,
	}

	switch f.ID {
	case model.RuleBranchPolicyMissing:
		step.Priority = PriorityCritical
		step.Title = fmt.Sprintf("Enable a minimum reviewers policy on %s/%s", r.Name, branch)
		step.Detail = "Pull requests into the default branch can be completed without any review."

	case model.RuleMinReviewers:
		step.Priority = PriorityCritical
		step.Title = fmt.Sprintf("Require at least one reviewer on %s/%s", r.Name, branch)
		step.Detail = "The reviewer policy allows completion with zero approvals."

	case model.RuleBlockLastPusher:
		step.Priority = PriorityRecommended
		step.Title = fmt.Sprintf("Prohibit the last pusher from approving on %s/%s", r.Name, branch)
		step.Detail = "The author of the latest push can approve their own changes."

	case model.RuleResetVotes:
		step.Priority = PriorityRecommended
		step.Title = fmt.Sprintf("Reset votes on new pushes to %s/%s", r.Name, branch)
		step.Detail = "Approvals survive new commits, so reviewed code can change after approval."

	default:
		return nil
	}

	// Without a repository ID no policy can be scoped.
	if r.ID == "" {
		return &step
	}
	step.Config = compliantPolicy(r, branch)
	step.ConfigFile = "reviewer-policy-" + r.ID + ".json"
	step.Commands = []string{policyCommand(org, project, r.PolicyID, step.ConfigFile)}
	return &step
}

// compliantPolicy is a reviewer policy that passes every rule. An existing
// reviewer count above one is kept.
func compliantPolicy(r model.Repository, branch string) *model.PolicyConfig {
	return &model.PolicyConfig{
		IsEnabled:  true,
		IsBlocking: true,
		Type:       model.PolicyType{ID: ReviewerPolicyTypeID, DisplayName: analyze.ReviewerPolicyType},
		Settings: model.PolicySettings{
			MinimumApproverCount:        max(r.MinimumApproverCount, 1),
			BlockLastPusherVote:         true,
			ResetRejectionsOnSourcePush: true,
			RequireVoteOnLastIteration:  true,
			Scope: []model.PolicyScope{{
				RepositoryID: r.ID,
				RefName:      "refs/heads/" + strings.TrimPrefix(branch, "refs/heads/"),
				MatchKind:    "Exact",
			}},
		},
	}
}

// policyCommand updates the policy in place when one exists, so a disabled
// policy is re-enabled rather than duplicated.
func policyCommand(org, project string, policyID int64, configFile string) string {
	if policyID != 0 {
		return fmt.Sprintf("az repos policy update --org %s --project %s --id %d --config %s",
			shellQuote(org), shellQuote(project), policyID, shellQuote(configFile))
	}
	return fmt.Sprintf("az repos policy create --org %s --project %s --config %s",
		shellQuote(org), shellQuote(project), shellQuote(configFile))
}

var shellSafe = regexp.MustCompile(`^[A-Za-z0-9@%+=:,./_-]+$`)

// shellQuote single-quotes s for POSIX shells unless it is made only of
// characters no shell expands.
func shellQuote(s string) string {
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
