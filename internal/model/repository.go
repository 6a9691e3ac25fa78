package model

// Repository is a repository with the findings of its default-branch policy.
// PolicyID and MinimumApproverCount are set when a reviewer policy was found
// on the branch.
type Repository struct {
	Name                 string    `json:"name" yaml:"name"`
	ID                   string    `json:"id" yaml:"id"`
	PolicyID             int64     `json:"policyId,omitempty" yaml:"policyId,omitempty"`
	MinimumApproverCount int64     `json:"minimumApproverCount,omitempty" yaml:"minimumApproverCount,omitempty"`
	PolicyFindings       []Finding `json:"policyFindings" yaml:"policyFindings"`
}

// Compliant reports whether every finding passed.
func (r Repository) Compliant() bool {
	if len(r.PolicyFindings) == 0 {
		return false
	}
	for _, f := range r.PolicyFindings {
		if !f.Passed {
			return false
		}
	}
	return true
}
