// Package org resolves the Azure DevOps organization URL a scan runs against.
package org

import (
	"context"
	"errors"
	"strings"

	"gopkg.in/ini.v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/klog/v2"

	"ado-governance-audit/internal/azcli"
)

const (
	Scheme = "https://"
	Host   = "dev.azure.com"
)

// ErrUnresolved is returned by callers when neither an explicit value nor a
// configured default organization is available.
var ErrUnresolved = errors.New("organization could not be resolved; pass --organization or run 'az devops configure --defaults organization=<url>'")

// Normalize turns an organization value into its canonical URL:
//   - values starting with https:// are returned unchanged
//   - host-qualified values get the scheme and lose one trailing slash
//   - anything else is a bare name trimmed of one leading and one trailing slash
//
// Empty input stays empty.
func Normalize(value string) string {
	v := strings.TrimSpace(value)
	switch {
	case v == "":
		return ""
	case strings.HasPrefix(v, Scheme):
		return v
	case strings.Contains(v, Host):
		return Scheme + strings.TrimSuffix(v, "/")
	default:
		name := strings.TrimPrefix(v, "/")
		name = strings.TrimSuffix(name, "/")
		return Scheme + Host + "/" + name
	}
}

type Resolver struct {
	client *azcli.Client
}

func NewResolver(client *azcli.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve returns the normalized explicit organization, or the CLI's
// configured default when explicit is empty. The CLI is only consulted in
// the second case. ok is false when nothing could be determined.
func (r *Resolver) Resolve(ctx context.Context, explicit string) (string, bool) {
	if v := Normalize(explicit); v != "" {
		return v, true
	}

	logger := klog.FromContext(ctx)
	res := r.client.Run(ctx, "devops", "configure", "--list")
	if !res.OK() {
		logger.V(2).Info("reading default organization failed", "result", res.Describe())
		return "", false
	}
	raw := defaultOrganization(res.Stdout)
	if raw == "" {
		logger.V(2).Info("no default organization configured")
		return "", false
	}
	return Normalize(raw), true
}

// defaultOrganization reads the organization field from the defaults
// listing. Both the INI layout printed by "az devops configure --list" and a
// JSON object are accepted.
func defaultOrganization(out string) string {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "{") {
		v, err := azcli.Decode(trimmed)
		if err != nil {
			return ""
		}
		obj, ok := v.(map[string]any)
		if !ok {
			return ""
		}
		if s, found, _ := unstructured.NestedString(obj, "organization"); found {
			return strings.TrimSpace(s)
		}
		s, _, _ := unstructured.NestedString(obj, "defaults", "organization")
		return strings.TrimSpace(s)
	}

	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true, SkipUnrecognizableLines: true}, []byte(trimmed))
	if err != nil {
		return ""
	}
	if sec, err := f.GetSection("defaults"); err == nil && sec.HasKey("organization") {
		return strings.TrimSpace(sec.Key("organization").String())
	}
	return strings.TrimSpace(f.Section(ini.DefaultSection).Key("organization").String())
}
