package analyze

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ado-governance-audit/internal/model"
)

// decodePolicies parses a policy list the way the CLI output is parsed.
func decodePolicies(t *testing.T, raw string) []any {
	t.Helper()
	var v []any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestEvaluateAllPassing(t *testing.T) {
	policies := decodePolicies(t, `[
		{"id": 7, "isEnabled": true, "type": {"displayName": "Minimum number of reviewers"},
		 "settings": {"minimumApproverCount": 2, "blockLastPusherVote": true, "requireVoteOnLastIteration": true}}
	]`)

	findings, found := Evaluate(policies)

	require.True(t, found)
	require.Len(t, findings, 3)
	assert.Equal(t, []string{model.RuleMinReviewers, model.RuleBlockLastPusher, model.RuleResetVotes},
		[]string{findings[0].ID, findings[1].ID, findings[2].ID})
	for _, f := range findings {
		assert.True(t, f.Passed, f.Message)
	}
	assert.Equal(t, "Requires at least 2 reviewer(s)", findings[0].Message)
}

func TestEvaluateDisabledPolicy(t *testing.T) {
	policies := decodePolicies(t, `[
		{"isEnabled": false, "type": {"displayName": "Minimum number of reviewers"},
		 "settings": {"minimumApproverCount": 2, "blockLastPusherVote": true, "requireVoteOnLastIteration": true}}
	]`)

	findings, found := Evaluate(policies)

	assert.False(t, found)
	assert.Equal(t, []model.Finding{model.Fail(model.RuleBranchPolicyMissing, MsgNoBranchPolicy)}, findings)
}

func TestEvaluateEmpty(t *testing.T) {
	for _, policies := range [][]any{nil, {}} {
		findings, found := Evaluate(policies)

		assert.False(t, found)
		require.Len(t, findings, 1)
		assert.False(t, findings[0].Passed)
		assert.Equal(t, MsgNoBranchPolicy, findings[0].Message)
	}
}

func TestEvaluateOtherPolicyTypesOnly(t *testing.T) {
	policies := decodePolicies(t, `[
		{"isEnabled": true, "type": {"displayName": "Build"}},
		{"isEnabled": true, "type": "Comment requirements"},
		"not-an-object",
		42
	]`)

	findings, found := Evaluate(policies)

	assert.False(t, found)
	assert.Len(t, findings, 1)
}

func TestEvaluateDirectTypeName(t *testing.T) {
	policies := decodePolicies(t, `[
		{"isEnabled": "True", "type": "Minimum number of reviewers",
		 "settings": {"minimumApproverCount": "1", "blockLastPusherVote": "TRUE", "resetRejectionsOnSourcePush": "true"}}
	]`)

	findings, found := Evaluate(policies)

	require.True(t, found)
	require.Len(t, findings, 3)
	for _, f := range findings {
		assert.True(t, f.Passed, f.Message)
	}
}

func TestEvaluateIndividualFailures(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		want     [3]bool
	}{
		{"no settings fields", `{}`, [3]bool{false, false, false}},
		{"zero approvers", `{"minimumApproverCount": 0, "blockLastPusherVote": true, "requireVoteOnEachIteration": true}`, [3]bool{false, true, true}},
		{"pusher vote allowed", `{"minimumApproverCount": 1, "blockLastPusherVote": false, "requireVoteOnLastIteration": true}`, [3]bool{true, false, true}},
		{"string false", `{"minimumApproverCount": 3, "blockLastPusherVote": "false", "requireVoteOnLastIteration": "no"}`, [3]bool{true, false, false}},
		{"wrong types", `{"minimumApproverCount": [1], "blockLastPusherVote": 1, "resetRejectionsOnSourcePush": {"v": true}}`, [3]bool{false, false, false}},
		{"each iteration only", `{"minimumApproverCount": 1.0, "requireVoteOnEachIteration": true}`, [3]bool{true, false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policies := decodePolicies(t, `[{"isEnabled": true, "type": {"displayName": "Minimum number of reviewers"}, "settings": `+tt.settings+`}]`)

			findings, found := Evaluate(policies)

			require.True(t, found)
			require.Len(t, findings, 3)
			for i, f := range findings {
				assert.Equal(t, tt.want[i], f.Passed, "finding %d (%s): %s", i, f.ID, f.Message)
			}
		})
	}
}

func TestEvaluateSettingsNotAnObject(t *testing.T) {
	policies := []any{map[string]any{
		"isEnabled": true,
		"type":      ReviewerPolicyType,
		"settings":  "broken",
	}}

	findings, found := Evaluate(policies)

	require.True(t, found)
	require.Len(t, findings, 3)
	for _, f := range findings {
		assert.False(t, f.Passed)
	}
}

func TestFindReviewerPolicyFirstMatchWins(t *testing.T) {
	policies := []any{
		map[string]any{"id": 1, "isEnabled": false, "type": ReviewerPolicyType},
		map[string]any{"id": 2, "isEnabled": true, "type": ReviewerPolicyType},
	}

	p, found := FindReviewerPolicy(policies)

	require.True(t, found)
	assert.Equal(t, int64(1), p.ID)
	assert.False(t, p.Enabled)
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{true, "true", "TRUE", " True "} {
		assert.True(t, truthy(v), "%#v", v)
	}
	for _, v := range []any{false, "false", "yes", "1", 1, nil, 1.0, []any{true}} {
		assert.False(t, truthy(v), "%#v", v)
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		ok   bool
	}{
		{float64(2), 2, true},
		{2.9, 2, true},
		{3, 3, true},
		{int64(4), 4, true},
		{json.Number("5"), 5, true},
		{" 6 ", 6, true},
		{"six", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := number(tt.in)
		assert.Equal(t, tt.ok, ok, "%#v", tt.in)
		assert.Equal(t, tt.want, got, "%#v", tt.in)
	}
}
