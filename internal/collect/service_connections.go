package collect

import (
	"context"

	"k8s.io/klog/v2"

	"ado-governance-audit/internal/model"
)

func (s *Service) ListServiceConnections(ctx context.Context, project, org string) []model.ServiceConnection {
	kv := []any{"project", project}
	v, ok := s.query(ctx, "service connections", kv,
		"devops", "service-endpoint", "list", "--project", project, "--organization", org)
	if !ok {
		return []model.ServiceConnection{}
	}
	items, err := listItems(v, "value")
	if err != nil {
		klog.FromContext(ctx).Error(err, "unexpected service connection list", kv...)
		return []model.ServiceConnection{}
	}

	out := make([]model.ServiceConnection, 0, len(items))
	for _, item := range items {
		sc := model.ServiceConnection{
			Name: stringField(item, "name"),
			Type: stringField(item, "type"),
			ID:   stringField(item, "id"),
		}
		if sc.Name == "" && sc.ID == "" {
			continue
		}
		out = append(out, sc)
	}
	return out
}
