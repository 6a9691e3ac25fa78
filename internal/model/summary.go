package model

type Summary struct {
	Projects           int     `json:"projects" yaml:"projects"`
	Admins             int     `json:"admins" yaml:"admins"`
	Repositories       int     `json:"repositories" yaml:"repositories"`
	CompliantRepos     int     `json:"compliantRepositories" yaml:"compliantRepositories"`
	ServiceConnections int     `json:"serviceConnections" yaml:"serviceConnections"`
	PassedChecks       int     `json:"passedChecks" yaml:"passedChecks"`
	FailedChecks       int     `json:"failedChecks" yaml:"failedChecks"`
	Compliance         float64 `json:"compliance" yaml:"compliance"` // percent of passed checks
	Posture            string  `json:"posture" yaml:"posture"`
}

// ScanSummary is the single-line machine readable result printed in CI mode.
type ScanSummary struct {
	ScanID       string  `json:"scanId"`
	Organization string  `json:"organization"`
	TimestampUtc string  `json:"timestampUtc"`
	Status       string  `json:"status"` // PASSED/FAILED/CANCELLED
	Compliance   float64 `json:"compliance"`
	MinScore     int     `json:"minCompliance"`
	Posture      string  `json:"posture"`
	Checks       []Check `json:"checks"`
	Trend        string  `json:"trend,omitempty"`
	Delta        float64 `json:"delta,omitempty"`
}
