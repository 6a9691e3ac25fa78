package model

// Rule IDs attached to findings.
const (
	RuleBranchPolicyMissing = "BRANCH_POLICY_MISSING"
	RuleMinReviewers        = "MIN_REVIEWERS"
	RuleBlockLastPusher     = "BLOCK_LAST_PUSHER"
	RuleResetVotes          = "RESET_VOTES"
)

// Finding is one pass/fail result of a single governance rule.
type Finding struct {
	ID      string `json:"id" yaml:"id"`
	Passed  bool   `json:"passed" yaml:"passed"`
	Message string `json:"message" yaml:"message"`
}

func Pass(id, msg string) Finding { return Finding{ID: id, Passed: true, Message: msg} }

func Fail(id, msg string) Finding { return Finding{ID: id, Passed: false, Message: msg} }
