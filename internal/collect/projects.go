package collect

import (
	"context"
	"fmt"

	"ado-governance-audit/internal/azcli"
)

// ListProjects returns project names in the order the service lists them.
// Unlike the per-project queries, failures are returned: without projects
// there is nothing to scan.
func (s *Service) ListProjects(ctx context.Context, org string) ([]string, error) {
	res := s.client.Query(ctx, "devops", "project", "list", "--organization", org)
	if !res.OK() {
		return nil, fmt.Errorf("%w: %s", ErrProjectList, res.Describe())
	}
	v, err := azcli.Decode(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProjectParse, err)
	}
	items, err := listItems(v, "value")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProjectParse, err)
	}
	names, err := projectStrings(items, "{.items[*].name}")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProjectParse, err)
	}
	return names, nil
}
