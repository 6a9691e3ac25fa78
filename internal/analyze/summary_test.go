package analyze

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ado-governance-audit/internal/model"
)

func sampleAudit() *model.Audit {
	compliant := model.Repository{Name: "api", ID: "r1", PolicyFindings: []model.Finding{
		model.Pass(model.RuleMinReviewers, "ok"),
		model.Pass(model.RuleBlockLastPusher, "ok"),
		model.Pass(model.RuleResetVotes, "ok"),
	}}
	partial := model.Repository{Name: "web", ID: "r2", PolicyFindings: []model.Finding{
		model.Pass(model.RuleMinReviewers, "ok"),
		model.Fail(model.RuleBlockLastPusher, "no"),
		model.Pass(model.RuleResetVotes, "ok"),
	}}
	missing := model.Repository{Name: "docs", ID: "r3", PolicyFindings: []model.Finding{
		model.Fail(model.RuleBranchPolicyMissing, MsgNoBranchPolicy),
	}}
	return &model.Audit{Projects: []model.ProjectResult{
		{
			Name:               "alpha",
			Admins:             []string{"a@example.com", "b@example.com"},
			Repositories:       []model.Repository{compliant, partial},
			ServiceConnections: []model.ServiceConnection{{Name: "prod", Type: "azurerm", ID: "s1"}},
		},
		{Name: "beta", Admins: []string{}, Repositories: []model.Repository{missing}},
	}}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleAudit())

	assert.Equal(t, 2, s.Projects)
	assert.Equal(t, 2, s.Admins)
	assert.Equal(t, 3, s.Repositories)
	assert.Equal(t, 1, s.CompliantRepos)
	assert.Equal(t, 1, s.ServiceConnections)
	assert.Equal(t, 5, s.PassedChecks)
	assert.Equal(t, 4, s.FailedChecks, "missing policy fails all three checks")
	assert.Equal(t, 55.6, s.Compliance)
	assert.Equal(t, "HIGH", s.Posture)
}

func TestSummarizeWeightsMissingPolicy(t *testing.T) {
	a := &model.Audit{Projects: []model.ProjectResult{{Name: "alpha", Repositories: []model.Repository{
		{Name: "api", ID: "r1", PolicyFindings: []model.Finding{
			model.Pass(model.RuleMinReviewers, "ok"),
			model.Pass(model.RuleBlockLastPusher, "ok"),
			model.Pass(model.RuleResetVotes, "ok"),
		}},
		{Name: "docs", ID: "r2", PolicyFindings: []model.Finding{
			model.Fail(model.RuleBranchPolicyMissing, MsgNoBranchPolicy),
		}},
	}}}}

	s := Summarize(a)

	assert.Equal(t, 3, s.PassedChecks)
	assert.Equal(t, 3, s.FailedChecks)
	assert.Equal(t, 50.0, s.Compliance)
}

func TestSummarizeNoFindings(t *testing.T) {
	s := Summarize(&model.Audit{Projects: []model.ProjectResult{{Name: "alpha"}}})

	assert.Equal(t, 100.0, s.Compliance)
	assert.Equal(t, "LOW", s.Posture)
}

func TestBuildChecks(t *testing.T) {
	checks := BuildChecks(sampleAudit())

	require.Len(t, checks, 4)
	byID := map[string]model.Check{}
	for _, c := range checks {
		byID[c.ID] = c
	}
	assert.Equal(t, model.RuleBranchPolicyMissing, checks[0].ID, "fixed rule order")

	policy := byID[model.RuleBranchPolicyMissing]
	assert.Equal(t, "WARN", policy.Status)
	assert.Equal(t, 2, policy.Passed)
	assert.Equal(t, 1, policy.Failed)
	assert.Equal(t, "2 of 3 repositories compliant", policy.Message)

	assert.Equal(t, "2 of 3 repositories compliant", byID[model.RuleMinReviewers].Message)
	assert.Equal(t, "2 of 3 repositories compliant", byID[model.RuleResetVotes].Message)

	pusher := byID[model.RuleBlockLastPusher]
	assert.Equal(t, "FAIL", pusher.Status)
	assert.Equal(t, 1, pusher.Passed)
	assert.Equal(t, 2, pusher.Failed)
	assert.Equal(t, "1 of 3 repositories compliant", pusher.Message)
}

func TestBuildChecksCountsReposWithoutPolicy(t *testing.T) {
	var repos []model.Repository
	for i := 0; i < 9; i++ {
		repos = append(repos, model.Repository{Name: fmt.Sprintf("repo-%d", i), PolicyFindings: []model.Finding{
			model.Pass(model.RuleMinReviewers, "ok"),
			model.Pass(model.RuleBlockLastPusher, "ok"),
			model.Pass(model.RuleResetVotes, "ok"),
		}})
	}
	repos = append(repos, model.Repository{Name: "bare", PolicyFindings: []model.Finding{
		model.Fail(model.RuleBranchPolicyMissing, MsgNoBranchPolicy),
	}})
	a := &model.Audit{Projects: []model.ProjectResult{{Name: "alpha", Repositories: repos}}}

	checks := BuildChecks(a)

	require.Len(t, checks, 4)
	for _, c := range checks {
		assert.Equal(t, "9 of 10 repositories compliant", c.Message, c.ID)
		assert.Equal(t, 1, c.Failed, c.ID)
		assert.Equal(t, "PASS", c.Status, c.ID)
	}
}

func TestBuildChecksAllCovered(t *testing.T) {
	a := &model.Audit{Projects: []model.ProjectResult{{Name: "alpha", Repositories: []model.Repository{
		{Name: "api", PolicyFindings: []model.Finding{
			model.Pass(model.RuleMinReviewers, "ok"),
			model.Pass(model.RuleBlockLastPusher, "ok"),
			model.Pass(model.RuleResetVotes, "ok"),
		}},
	}}}}

	checks := BuildChecks(a)

	require.Len(t, checks, 4)
	assert.Equal(t, model.RuleBranchPolicyMissing, checks[0].ID)
	assert.Equal(t, "PASS", checks[0].Status)
	assert.Equal(t, "1 of 1 repositories compliant", checks[0].Message)
}

func TestBuildChecksWithoutRepositories(t *testing.T) {
	assert.Empty(t, BuildChecks(&model.Audit{Projects: []model.ProjectResult{{Name: "alpha"}}}))
}

func TestStatusFromScore(t *testing.T) {
	assert.Equal(t, "PASS", statusFromScore(90))
	assert.Equal(t, "WARN", statusFromScore(60))
	assert.Equal(t, "FAIL", statusFromScore(59))
}

func TestEvaluateAudit(t *testing.T) {
	a := sampleAudit()
	EvaluateAudit(a)

	assert.Equal(t, 3, a.Summary.Repositories)
	assert.NotEmpty(t, a.Checks)
}
