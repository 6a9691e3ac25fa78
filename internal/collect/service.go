// Package collect queries Azure DevOps through the CLI and turns its output
// into typed records. Apart from ListProjects, every query absorbs failures
// and returns what it could collect.
package collect

import (
	"context"
	"errors"

	"k8s.io/klog/v2"

	"ado-governance-audit/internal/azcli"
)

var (
	ErrProjectList  = errors.New("listing projects failed")
	ErrProjectParse = errors.New("parsing project list failed")
)

const (
	DefaultBranch     = "main"
	DefaultAdminGroup = "Project Administrators"
)

type Service struct {
	client     *azcli.Client
	branch     string
	adminGroup string
}

type Option func(*Service)

// WithBranch sets the branch whose policies are graded.
func WithBranch(b string) Option {
	return func(s *Service) {
		if b != "" {
			s.branch = b
		}
	}
}

// WithAdminGroup sets the display name of the administrators group.
func WithAdminGroup(g string) Option {
	return func(s *Service) {
		if g != "" {
			s.adminGroup = g
		}
	}
}

func NewService(client *azcli.Client, opts ...Option) *Service {
	s := &Service{
		client:     client,
		branch:     DefaultBranch,
		adminGroup: DefaultAdminGroup,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Branch() string { return s.branch }

// query runs a JSON query and decodes it. ok is false when the command
// failed or printed something that is not JSON; both are logged.
func (s *Service) query(ctx context.Context, what string, kv []any, args ...string) (any, bool) {
	logger := klog.FromContext(ctx)
	res := s.client.Query(ctx, args...)
	if !res.OK() {
		logger.Error(errors.New(res.Describe()), "query failed, continuing without it", append([]any{"query", what}, kv...)...)
		return nil, false
	}
	v, err := azcli.Decode(res.Stdout)
	if err != nil {
		logger.Error(err, "could not parse query output, continuing without it", append([]any{"query", what}, kv...)...)
		return nil, false
	}
	return v, true
}
