package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit is the exported record of one scan.
type Audit struct {
	SchemaVersion string          `json:"schemaVersion" yaml:"schemaVersion"`
	Tool          Tool            `json:"tool" yaml:"tool"`
	Scan          Scan            `json:"scan" yaml:"scan"`
	Organization  string          `json:"organization" yaml:"organization"`
	Options       ScanOptions     `json:"options" yaml:"options"`
	Projects      []ProjectResult `json:"projects" yaml:"projects"`
	Summary       Summary         `json:"summary" yaml:"summary"`
	Checks        []Check         `json:"checks,omitempty" yaml:"checks,omitempty"`
	// RemediationSteps lists one fix per failing finding.
	RemediationSteps []RemediationStep `json:"remediationSteps,omitempty" yaml:"remediationSteps,omitempty"`
	// Comparison holds the diff against a previous audit when --compare is used.
	Comparison *Comparison `json:"comparison,omitempty" yaml:"comparison,omitempty"`
}

type Tool struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

type Scan struct {
	ScanID          string    `json:"scanId" yaml:"scanId"`
	StartedAt       time.Time `json:"startedAt" yaml:"startedAt"`
	EndedAt         time.Time `json:"endedAt" yaml:"endedAt"`
	DurationSeconds int       `json:"durationSeconds" yaml:"durationSeconds"`
	Cancelled       bool      `json:"cancelled" yaml:"cancelled"`
}

type ScanOptions struct {
	IncludeRepos              bool     `json:"includeRepos" yaml:"includeRepos"`
	IncludeServiceConnections bool     `json:"includeServiceConnections" yaml:"includeServiceConnections"`
	Branch                    string   `json:"branch" yaml:"branch"`
	ProjectFilter             []string `json:"projectFilter,omitempty" yaml:"projectFilter,omitempty"`
}

// ProjectResult holds what was collected for one project. Repositories and
// ServiceConnections stay nil when their stage was not requested.
type ProjectResult struct {
	Name               string              `json:"name" yaml:"name"`
	Admins             []string            `json:"admins" yaml:"admins"`
	Repositories       []Repository        `json:"repositories,omitempty" yaml:"repositories,omitempty"`
	ServiceConnections []ServiceConnection `json:"serviceConnections,omitempty" yaml:"serviceConnections,omitempty"`
}

// RemediationStep is one prioritized governance fix. Commands read the
// policy configuration from ConfigFile, which holds Config.
type RemediationStep struct {
	Priority   int           `json:"priority" yaml:"priority"` // 1=critical, 2=recommended
	Project    string        `json:"project" yaml:"project"`
	Repository string        `json:"repository" yaml:"repository"`
	Title      string        `json:"title" yaml:"title"`
	Detail     string        `json:"detail" yaml:"detail"`
	Commands   []string      `json:"commands,omitempty" yaml:"commands,omitempty"`
	FindingID  string        `json:"findingId" yaml:"findingId"`
	ConfigFile string        `json:"configFile,omitempty" yaml:"configFile,omitempty"`
	Config     *PolicyConfig `json:"config,omitempty" yaml:"config,omitempty"`
}

// PolicyConfig is the request body accepted by 'az repos policy create|update
// --config' for a reviewer policy.
type PolicyConfig struct {
	IsEnabled  bool           `json:"isEnabled" yaml:"isEnabled"`
	IsBlocking bool           `json:"isBlocking" yaml:"isBlocking"`
	Type       PolicyType     `json:"type" yaml:"type"`
	Settings   PolicySettings `json:"settings" yaml:"settings"`
}

type PolicyType struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
}

type PolicySettings struct {
	MinimumApproverCount        int64         `json:"minimumApproverCount" yaml:"minimumApproverCount"`
	CreatorVoteCounts           bool          `json:"creatorVoteCounts" yaml:"creatorVoteCounts"`
	AllowDownvotes              bool          `json:"allowDownvotes" yaml:"allowDownvotes"`
	ResetOnSourcePush           bool          `json:"resetOnSourcePush" yaml:"resetOnSourcePush"`
	BlockLastPusherVote         bool          `json:"blockLastPusherVote" yaml:"blockLastPusherVote"`
	ResetRejectionsOnSourcePush bool          `json:"resetRejectionsOnSourcePush" yaml:"resetRejectionsOnSourcePush"`
	RequireVoteOnLastIteration  bool          `json:"requireVoteOnLastIteration" yaml:"requireVoteOnLastIteration"`
	Scope                       []PolicyScope `json:"scope" yaml:"scope"`
}

type PolicyScope struct {
	RepositoryID string `json:"repositoryId" yaml:"repositoryId"`
	RefName      string `json:"refName" yaml:"refName"`
	MatchKind    string `json:"matchKind" yaml:"matchKind"`
}

// Comparison is the diff between a previous audit and this one.
type Comparison struct {
	PreviousScanID     string   `json:"previousScanId" yaml:"previousScanId"`
	PreviousScannedAt  string   `json:"previousScannedAt" yaml:"previousScannedAt"`
	PreviousCompliance float64  `json:"previousCompliance" yaml:"previousCompliance"`
	ComplianceDelta    float64  `json:"complianceDelta" yaml:"complianceDelta"`
	ProjectsAdded      []string `json:"projectsAdded,omitempty" yaml:"projectsAdded,omitempty"`
	ProjectsRemoved    []string `json:"projectsRemoved,omitempty" yaml:"projectsRemoved,omitempty"`
	// Findings are keyed as project/repository/ruleID.
	FindingsNew      []string `json:"findingsNew,omitempty" yaml:"findingsNew,omitempty"`
	FindingsResolved []string `json:"findingsResolved,omitempty" yaml:"findingsResolved,omitempty"`
}

const (
	ToolName      = "ado-governance-audit"
	ToolVersion   = "0.3.0"
	SchemaVersion = "1.0.0"
)

func NewUUID() string { return uuid.NewString() }

func NewAudit(org string, started time.Time, opts ScanOptions) *Audit {
	return &Audit{
		SchemaVersion: SchemaVersion,
		Tool:          Tool{Name: ToolName, Version: ToolVersion},
		Scan: Scan{
			ScanID:    NewUUID(),
			StartedAt: started,
		},
		Organization: org,
		Options:      opts,
		Projects:     []ProjectResult{},
	}
}

// Finish stamps the end time.
func (a *Audit) Finish(ended time.Time, cancelled bool) {
	a.Scan.EndedAt = ended
	a.Scan.DurationSeconds = int(ended.Sub(a.Scan.StartedAt).Seconds())
	a.Scan.Cancelled = cancelled
}
