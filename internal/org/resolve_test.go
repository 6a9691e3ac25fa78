package org

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"ado-governance-audit/internal/azcli"
	"ado-governance-audit/internal/azcli/azclitest"
)

const configureList = "devops configure --list"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"myorg", "https://dev.azure.com/myorg"},
		{"/myorg/", "https://dev.azure.com/myorg"},
		{"//myorg//", "https://dev.azure.com//myorg/"},
		{"dev.azure.com/myorg", "https://dev.azure.com/myorg"},
		{"dev.azure.com/myorg/", "https://dev.azure.com/myorg"},
		{"https://dev.azure.com/myorg", "https://dev.azure.com/myorg"},
		{"https://dev.azure.com/myorg/", "https://dev.azure.com/myorg/"},
		{"https://myorg.visualstudio.com", "https://myorg.visualstudio.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"myorg", "dev.azure.com/myorg/", "https://dev.azure.com/myorg/", "/x/"} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize twice on %q", in)
	}
}

func TestResolveExplicitSkipsCLI(t *testing.T) {
	fake := azclitest.New()
	r := NewResolver(fake.Client())

	got, ok := r.Resolve(context.Background(), "https://dev.azure.com/explicit/")

	assert.True(t, ok)
	assert.Equal(t, "https://dev.azure.com/explicit/", got)
	assert.Empty(t, fake.Calls())
}

func TestResolveDefaultFromINI(t *testing.T) {
	fake := azclitest.New().On(configureList, "[defaults]\norganization = dev.azure.com/mockorg\nproject = web\n")
	r := NewResolver(fake.Client())

	got, ok := r.Resolve(context.Background(), "")

	assert.True(t, ok)
	assert.Equal(t, "https://dev.azure.com/mockorg", got)
	assert.Equal(t, [][]string{{"devops", "configure", "--list"}}, fake.Calls())
}

func TestResolveDefaultFromJSON(t *testing.T) {
	fake := azclitest.New().On(configureList, `{"organization": "dev.azure.com/mockorg"}`)

	got, ok := NewResolver(fake.Client()).Resolve(context.Background(), "  ")

	assert.True(t, ok)
	assert.Equal(t, "https://dev.azure.com/mockorg", got)
}

func TestResolveFailures(t *testing.T) {
	tests := map[string]azcli.Result{
		"nonzero exit":    {ExitCode: 1, Stderr: "az: command not found"},
		"no organization": {Stdout: "[defaults]\nproject = web\n"},
		"empty output":    {Stdout: ""},
		"malformed json":  {Stdout: `{"organization": `},
		"non-object json": {Stdout: `{"organization": 5}`},
	}
	for name, res := range tests {
		t.Run(name, func(t *testing.T) {
			fake := azclitest.New().OnResult(configureList, res)

			got, ok := NewResolver(fake.Client()).Resolve(context.Background(), "")

			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}
}
