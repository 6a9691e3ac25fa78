package collect

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/util/jsonpath"
)

// listItems accepts a bare JSON array or an object wrapping the array under
// envelope, the two shapes the CLI prints depending on command and version.
func listItems(v any, envelope string) ([]any, error) {
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		raw, found, err := unstructured.NestedFieldNoCopy(t, envelope)
		if err != nil {
			return nil, err
		}
		if !found || raw == nil {
			return nil, fmt.Errorf("object has no %q list", envelope)
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%q is %T, not a list", envelope, raw)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unexpected %T, want a list", v)
	}
}

// stringField reads a top-level string field, tolerating other shapes.
func stringField(item any, field string) string {
	obj, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	s, _, _ := unstructured.NestedString(obj, field)
	return strings.TrimSpace(s)
}

// projectStrings evaluates a JSONPath template against items and returns
// every non-empty string it selects, in order.
func projectStrings(items []any, template string) ([]string, error) {
	jp := jsonpath.New("collect").AllowMissingKeys(true)
	if err := jp.Parse(template); err != nil {
		return nil, fmt.Errorf("parse jsonpath %q: %w", template, err)
	}
	results, err := jp.FindResults(map[string]any{"items": items})
	if err != nil {
		return nil, err
	}

	var out []string
	for _, set := range results {
		for _, v := range set {
			if !v.IsValid() || !v.CanInterface() {
				continue
			}
			if s, ok := v.Interface().(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	}
	return out, nil
}
