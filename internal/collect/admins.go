package collect

import (
	"context"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"
)

// ListAdminEmails returns the mail addresses of the project's administrators
// group members, deduplicated and sorted. Members without a mail address
// (nested groups, service identities) are skipped.
func (s *Service) ListAdminEmails(ctx context.Context, project, org string) []string {
	kv := []any{"project", project}
	v, ok := s.query(ctx, "security groups", kv,
		"devops", "security", "group", "list", "--project", project, "--organization", org)
	if !ok {
		return []string{}
	}
	groups, err := listItems(v, "graphGroups")
	if err != nil {
		klog.FromContext(ctx).Error(err, "unexpected security group list", kv...)
		return []string{}
	}

	descriptor := ""
	for _, g := range groups {
		if stringField(g, "displayName") == s.adminGroup {
			descriptor = stringField(g, "descriptor")
			break
		}
	}
	if descriptor == "" {
		klog.FromContext(ctx).V(2).Info("administrators group not found", "project", project, "group", s.adminGroup)
		return []string{}
	}

	v, ok = s.query(ctx, "group membership", kv,
		"devops", "security", "group", "membership", "list", "--id", descriptor, "--organization", org)
	if !ok {
		return []string{}
	}
	return memberEmails(v)
}

// memberEmails reads membership output, an object keyed by member
// descriptor. A list of members is accepted too.
func memberEmails(v any) []string {
	var members []any
	switch t := v.(type) {
	case map[string]any:
		for _, m := range t {
			members = append(members, m)
		}
	case []any:
		members = t
	}

	emails := sets.New[string]()
	for _, m := range members {
		obj, ok := m.(map[string]any)
		if !ok {
			continue
		}
		mail, _, _ := unstructured.NestedString(obj, "mailAddress")
		if mail = strings.TrimSpace(mail); mail != "" {
			emails.Insert(mail)
		}
	}
	return sets.List(emails)
}
