package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"k8s.io/klog/v2"

	"ado-governance-audit/internal/analyze"
	"ado-governance-audit/internal/azcli"
	"ado-governance-audit/internal/collect"
	"ado-governance-audit/internal/compare"
	"ado-governance-audit/internal/config"
	"ado-governance-audit/internal/history"
	"ado-governance-audit/internal/model"
	"ado-governance-audit/internal/org"
	"ado-governance-audit/internal/output"
	"ado-governance-audit/internal/remediation"
	"ado-governance-audit/internal/report"
	"ado-governance-audit/internal/scan"
)

type options struct {
	organization              string
	projects                  string
	includeRepos              bool
	includeServiceConnections bool
	configPath                string
	branch                    string
	branchSet                 bool
	outDir                    string
	redact                    bool
	compare                   string
	ci                        bool
	minCompliance             int
}

func (o *options) validate() error {
	if o.minCompliance < 0 || o.minCompliance > 100 {
		return fmt.Errorf("--min-compliance must be between 0 and 100, got %d", o.minCompliance)
	}
	// Compliance is graded on repository policies only.
	if o.minCompliance > 0 && !o.includeRepos {
		return errors.New("--min-compliance requires --include-repos")
	}
	return nil
}

func loadConfig(o *options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.branchSet {
		cfg.Branch = o.branch
	}
	if o.outDir != "" {
		cfg.OutDir = o.outDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, o *options, env runtimeEnv) error {
	if err := o.validate(); err != nil {
		return fail(exitUsage, err)
	}
	cfg, err := loadConfig(o)
	if err != nil {
		return fail(exitUsage, err)
	}
	if o.redact && cfg.OutDir == "" {
		return fail(exitUsage, errors.New("--redact requires an output directory"))
	}
	if _, err := env.lookPath(cfg.Program); err != nil {
		return fail(exitUsage, fmt.Errorf("%s not found on PATH; install the Azure CLI and the azure-devops extension: %w", cfg.Program, err))
	}

	exec := env.exec
	if exec == nil {
		exec = env.newRunner(cfg.CallsPerSecond)
	}
	client := azcli.NewClient(exec, cfg.Program, cfg.Timeout)
	logger := klog.FromContext(ctx)

	organization, ok := org.NewResolver(client).Resolve(ctx, o.organization)
	if !ok {
		return fail(exitScanFailed, org.ErrUnresolved)
	}
	logger.V(1).Info("organization resolved", "organization", organization)

	svc := collect.NewService(client, collect.WithBranch(cfg.Branch), collect.WithAdminGroup(cfg.AdminGroup))
	all, err := svc.ListProjects(ctx, organization)
	if err != nil {
		return fail(exitScanFailed, err)
	}
	if len(all) == 0 {
		return fail(exitScanFailed, fmt.Errorf("no projects found in %s", organization))
	}
	filter := collect.ParseNames(o.projects)
	projects, missing := collect.Filter(all, filter)

	tree := report.New(organization, env.out, env.errOut, report.WithLive(env.live && !o.ci))
	if len(missing) > 0 {
		tree.Warn("projects not found: " + strings.Join(missing, ", "))
	}
	if len(projects) == 0 {
		return fail(exitScanFailed, fmt.Errorf("none of the requested projects exist in %s", organization))
	}

	ctx = klog.NewContext(ctx, warnLogger(tree))
	audit := model.NewAudit(organization, env.now().UTC(), model.ScanOptions{
		IncludeRepos:              o.includeRepos,
		IncludeServiceConnections: o.includeServiceConnections,
		Branch:                    cfg.Branch,
		ProjectFilter:             filter,
	})

	orch := scan.New(svc, tree, scan.WithSpinnerInterval(cfg.SpinnerInterval))
	results, cancelled := orch.Run(ctx, projects, organization, scan.Options{
		IncludeRepos:              o.includeRepos,
		IncludeServiceConnections: o.includeServiceConnections,
	})
	tree.Flush()
	ctx = klog.NewContext(ctx, logger)

	audit.Projects = results
	audit.Finish(env.now().UTC(), cancelled)
	analyze.EvaluateAudit(audit)
	audit.RemediationSteps = remediation.Generate(audit)
	if cancelled {
		fmt.Fprintln(env.errOut, "Scan cancelled; results are partial.")
	}

	applyComparison(ctx, audit, o.compare)

	trendLabel, delta, err := write(ctx, audit, cfg, o, env)
	if err != nil {
		return fail(exitScanFailed, err)
	}

	if o.ci {
		if err := output.PrintCISummary(env.out, output.CISummary(audit, o.minCompliance, trendLabel, delta, env.now())); err != nil {
			return fail(exitScanFailed, err)
		}
	} else if o.includeRepos {
		fmt.Fprintf(env.out, "Compliance: %.1f%% (%s risk)\n", audit.Summary.Compliance, audit.Summary.Posture)
	}

	return gate(audit, o.minCompliance)
}

// gate enforces --min-compliance. Partial results of a cancelled scan are
// not graded.
func gate(a *model.Audit, minCompliance int) error {
	if minCompliance <= 0 || a.Scan.Cancelled {
		return nil
	}
	if a.Summary.Compliance < float64(minCompliance) {
		return fail(exitGate, fmt.Errorf("compliance %.1f%% is below the required %d%%", a.Summary.Compliance, minCompliance))
	}
	return nil
}

// applyComparison loads a previous audit and attaches the diff. A missing
// or unreadable file only produces a warning.
func applyComparison(ctx context.Context, a *model.Audit, path string) {
	if path == "" {
		return
	}
	prev, err := compare.Load(path)
	if err != nil {
		klog.FromContext(ctx).Error(err, "comparison skipped", "path", path)
		return
	}
	diff := compare.Diff(prev, a)
	a.Comparison = &diff
}

// write exports the audit and records it in the history index. It returns
// the trend against the previous scan of the same organization.
func write(ctx context.Context, a *model.Audit, cfg *config.Config, o *options, env runtimeEnv) (string, float64, error) {
	if cfg.OutDir == "" {
		return "", 0, nil
	}
	written, err := output.WriteAll(cfg.OutDir, a, cfg.Formats, o.redact)
	if err != nil {
		return "", 0, err
	}

	var label string
	var delta float64
	tr, err := history.Record(cfg.OutDir, a, env.now())
	if err != nil {
		klog.FromContext(ctx).Error(err, "history skipped", "dir", cfg.OutDir)
	} else {
		label, delta = tr.Label, tr.Delta
	}

	if !o.ci {
		for _, p := range written {
			fmt.Fprintln(env.out, "Wrote", p)
		}
		if label != "" {
			fmt.Fprintf(env.out, "Trend: %s (%+.1f)\n", label, delta)
		}
	}
	return label, delta, nil
}
