package analyze

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"ado-governance-audit/internal/model"
)

// ReviewerPolicyType is the display name of the branch policy that carries
// every setting graded here.
const ReviewerPolicyType = "Minimum number of reviewers"

const (
	MsgNoBranchPolicy = "No branch policy (policy not enabled or missing required reviewers policy)"
	// MsgNoPolicyData is used when the policy lookup itself returned nothing.
	MsgNoPolicyData = "No branch policy"
)

// ReviewerPolicy is the normalized reviewer policy configuration. Absent or
// malformed fields read as their zero value.
type ReviewerPolicy struct {
	ID      int64
	Enabled bool

	MinimumApproverCount        int64
	HasMinimumApproverCount     bool
	BlockLastPusherVote         bool
	RequireVoteOnLastIteration  bool
	RequireVoteOnEachIteration  bool
	ResetRejectionsOnSourcePush bool
}

// Evaluate grades the reviewer policy found among policies. It returns the
// three itemized findings and true when the policy exists and is enabled,
// and a single failing finding and false otherwise.
func Evaluate(policies []any) ([]model.Finding, bool) {
	p, found := FindReviewerPolicy(policies)
	if !found || !p.Enabled {
		return []model.Finding{model.Fail(model.RuleBranchPolicyMissing, MsgNoBranchPolicy)}, false
	}
	return []model.Finding{
		reviewerCountFinding(p),
		lastPusherFinding(p),
		voteResetFinding(p),
	}, true
}

// FindReviewerPolicy returns the first policy whose type is the reviewer
// policy. Both {"type": "<name>"} and {"type": {"displayName": "<name>"}}
// are recognised.
func FindReviewerPolicy(policies []any) (ReviewerPolicy, bool) {
	for _, raw := range policies {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if policyTypeName(obj) != ReviewerPolicyType {
			continue
		}
		return decodeReviewerPolicy(obj), true
	}
	return ReviewerPolicy{}, false
}

func policyTypeName(obj map[string]any) string {
	if s, ok := obj["type"].(string); ok {
		return strings.TrimSpace(s)
	}
	s, _, _ := unstructured.NestedString(obj, "type", "displayName")
	return strings.TrimSpace(s)
}

func decodeReviewerPolicy(obj map[string]any) ReviewerPolicy {
	p := ReviewerPolicy{
		Enabled: truthy(obj["isEnabled"]),
	}
	if id, ok := number(obj["id"]); ok {
		p.ID = id
	}

	settings, found, err := unstructured.NestedFieldNoCopy(obj, "settings")
	if !found || err != nil {
		return p
	}
	s, ok := settings.(map[string]any)
	if !ok {
		return p
	}

	p.MinimumApproverCount, p.HasMinimumApproverCount = number(s["minimumApproverCount"])
	p.BlockLastPusherVote = truthy(s["blockLastPusherVote"])
	p.RequireVoteOnLastIteration = truthy(s["requireVoteOnLastIteration"])
	p.RequireVoteOnEachIteration = truthy(s["requireVoteOnEachIteration"])
	p.ResetRejectionsOnSourcePush = truthy(s["resetRejectionsOnSourcePush"])
	return p
}

func reviewerCountFinding(p ReviewerPolicy) model.Finding {
	if p.HasMinimumApproverCount && p.MinimumApproverCount >= 1 {
		return model.Pass(model.RuleMinReviewers,
			fmt.Sprintf("Requires at least %d reviewer(s)", p.MinimumApproverCount))
	}
	return model.Fail(model.RuleMinReviewers, "Does not require at least 1 reviewer")
}

func lastPusherFinding(p ReviewerPolicy) model.Finding {
	if p.BlockLastPusherVote {
		return model.Pass(model.RuleBlockLastPusher, "Prohibits the most recent pusher from approving their own changes")
	}
	return model.Fail(model.RuleBlockLastPusher, "Allows the most recent pusher to approve their own changes")
}

func voteResetFinding(p ReviewerPolicy) model.Finding {
	if p.RequireVoteOnLastIteration || p.RequireVoteOnEachIteration || p.ResetRejectionsOnSourcePush {
		return model.Pass(model.RuleResetVotes, "Resets votes when new changes are pushed")
	}
	return model.Fail(model.RuleResetVotes, "Keeps votes when new changes are pushed")
}

// truthy accepts a JSON true or the string "true" in any case.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}

// number reads an integral value from the numeric encodings JSON decoding
// and hand-built fixtures produce. Fractions are truncated.
func number(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		if f, err := t.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}
