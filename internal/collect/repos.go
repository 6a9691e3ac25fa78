package collect

import (
	"context"

	"k8s.io/klog/v2"

	"ado-governance-audit/internal/analyze"
	"ado-governance-audit/internal/model"
)

// ListRepositories returns the project's repositories, each graded against
// the reviewer policy on the configured branch.
func (s *Service) ListRepositories(ctx context.Context, project, org string) []model.Repository {
	kv := []any{"project", project}
	v, ok := s.query(ctx, "repositories", kv,
		"repos", "list", "--project", project, "--organization", org)
	if !ok {
		return []model.Repository{}
	}
	items, err := listItems(v, "value")
	if err != nil {
		klog.FromContext(ctx).Error(err, "unexpected repository list", kv...)
		return []model.Repository{}
	}

	repos := make([]model.Repository, 0, len(items))
	for _, item := range items {
		r := model.Repository{
			Name: stringField(item, "name"),
			ID:   stringField(item, "id"),
		}
		if r.Name == "" && r.ID == "" {
			continue
		}
		r.PolicyFindings, r.PolicyID, r.MinimumApproverCount = s.branchPolicyFindings(ctx, project, org, r)
		repos = append(repos, r)
	}
	return repos
}

func (s *Service) branchPolicyFindings(ctx context.Context, project, org string, r model.Repository) ([]model.Finding, int64, int64) {
	noData := []model.Finding{model.Fail(model.RuleBranchPolicyMissing, analyze.MsgNoPolicyData)}
	if r.ID == "" {
		return noData, 0, 0
	}

	kv := []any{"project", project, "repository", r.Name, "branch", s.branch}
	v, ok := s.query(ctx, "branch policies", kv,
		"repos", "policy", "list",
		"--repository-id", r.ID,
		"--branch", s.branch,
		"--project", project,
		"--organization", org)
	if !ok {
		return noData, 0, 0
	}
	policies, err := listItems(v, "value")
	if err != nil {
		klog.FromContext(ctx).Error(err, "unexpected branch policy list", kv...)
		return noData, 0, 0
	}
	if len(policies) == 0 {
		return noData, 0, 0
	}

	findings, _ := analyze.Evaluate(policies)
	p, _ := analyze.FindReviewerPolicy(policies)
	return findings, p.ID, p.MinimumApproverCount
}
