// Package scan drives the per-project collection stages and feeds the
// result tree while a status line animates.
package scan

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/klog/v2"

	"ado-governance-audit/internal/model"
	"ado-governance-audit/internal/report"
)

// Category labels, attached in this order.
const (
	CategoryAdmins             = "Admins"
	CategoryRepos              = "Repos"
	CategoryServiceConnections = "Service Connections"
)

const (
	NoAdmins             = "No admins found"
	NoRepos              = "No repositories found"
	NoServiceConnections = "No service connections found"
)

const DefaultSpinnerInterval = 100 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Collector is the data access the orchestrator needs. Implementations absorb
// their own failures and return empty results instead.
type Collector interface {
	ListAdminEmails(ctx context.Context, project, org string) []string
	ListRepositories(ctx context.Context, project, org string) []model.Repository
	ListServiceConnections(ctx context.Context, project, org string) []model.ServiceConnection
}

// Display receives tree updates. It must serialize its own state.
type Display interface {
	AddProject(name string) *report.Node
	Attach(project, category *report.Node)
	SetStatus(text string)
	ClearStatus()
	Redraw()
}

type Options struct {
	IncludeRepos              bool
	IncludeServiceConnections bool
}

type Orchestrator struct {
	collector Collector
	display   Display
	interval  time.Duration
	tracer    trace.Tracer
}

type Option func(*Orchestrator)

// WithSpinnerInterval sets the status line repaint period.
func WithSpinnerInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.interval = d
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

func New(collector Collector, display Display, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		collector: collector,
		display:   display,
		interval:  DefaultSpinnerInterval,
		tracer:    otel.Tracer("ado-governance-audit/scan"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run scans projects in order, one stage at a time. Cancellation of ctx is
// honoured before each project and between stages; a stage already running
// completes and is attached first. The returned results cover every project
// that was started, in scan order, and cancelled reports whether ctx stopped
// the scan early.
func (o *Orchestrator) Run(ctx context.Context, projects []string, org string, opts Options) (results []model.ProjectResult, cancelled bool) {
	logger := klog.FromContext(ctx)
	results = make([]model.ProjectResult, 0, len(projects))

	for i, name := range projects {
		if ctx.Err() != nil {
			logger.V(1).Info("scan cancelled", "remaining", len(projects)-i)
			return results, true
		}
		res, completed := o.project(ctx, name, org, opts)
		results = append(results, res)
		if !completed {
			return results, true
		}
	}
	return results, false
}

// project runs the stages of one project. completed is false when ctx was
// cancelled before every requested stage ran.
func (o *Orchestrator) project(ctx context.Context, name, org string, opts Options) (model.ProjectResult, bool) {
	ctx, span := o.tracer.Start(ctx, "scan.project", trace.WithAttributes(
		attribute.String("project", name),
		attribute.String("organization", org),
	))
	defer span.End()

	res := model.ProjectResult{Name: name, Admins: []string{}}
	node := o.display.AddProject(name)

	// Stages always run in this order.
	o.stage(ctx, node, fmt.Sprintf("Loading admins for project '%s'...", name), func(ctx context.Context) *report.Node {
		res.Admins = o.collector.ListAdminEmails(ctx, name, org)
		return adminsNode(res.Admins)
	})

	if opts.IncludeRepos {
		if ctx.Err() != nil {
			return o.interrupted(span, res)
		}
		o.stage(ctx, node, fmt.Sprintf("Loading repositories and branch policies for project '%s'...", name), func(ctx context.Context) *report.Node {
			res.Repositories = o.collector.ListRepositories(ctx, name, org)
			return reposNode(res.Repositories)
		})
	}

	if opts.IncludeServiceConnections {
		if ctx.Err() != nil {
			return o.interrupted(span, res)
		}
		o.stage(ctx, node, fmt.Sprintf("Loading service connections for project '%s'...", name), func(ctx context.Context) *report.Node {
			res.ServiceConnections = o.collector.ListServiceConnections(ctx, name, org)
			return serviceConnectionsNode(res.ServiceConnections)
		})
	}
	return res, true
}

func (o *Orchestrator) interrupted(span trace.Span, res model.ProjectResult) (model.ProjectResult, bool) {
	span.SetStatus(codes.Error, "cancelled")
	return res, false
}

// stage runs fetch while the status line animates, then attaches the
// category it built. The query gets a context that is not cancelled by an
// interrupt: external calls run to completion and are never killed halfway.
// The repaint task is always joined before stage returns.
func (o *Orchestrator) stage(ctx context.Context, project *report.Node, msg string, fetch func(context.Context) *report.Node) {
	ctx, span := o.tracer.Start(ctx, "scan.stage", trace.WithAttributes(attribute.String("stage", msg)))
	defer span.End()

	spinCtx, stopSpinner := context.WithCancel(context.WithoutCancel(ctx))
	var g errgroup.Group
	g.Go(func() error {
		frame := 0
		wait.UntilWithContext(spinCtx, func(context.Context) {
			o.display.SetStatus(spinnerFrames[frame%len(spinnerFrames)] + " " + msg)
			frame++
		}, o.interval)
		return nil
	})

	category := fetch(context.WithoutCancel(ctx))

	o.display.Attach(project, category)
	stopSpinner()
	_ = g.Wait()
	o.display.ClearStatus()
	o.display.Redraw()
}

func adminsNode(emails []string) *report.Node {
	n := report.NewCategory(CategoryAdmins)
	if len(emails) == 0 {
		return n.Add(report.Placeholder(NoAdmins))
	}
	for _, e := range emails {
		n.Add(report.Item(e))
	}
	return n
}

func reposNode(repos []model.Repository) *report.Node {
	n := report.NewCategory(CategoryRepos)
	if len(repos) == 0 {
		return n.Add(report.Placeholder(NoRepos))
	}
	for _, r := range repos {
		item := report.Item(r.Name)
		for _, f := range r.PolicyFindings {
			item.Add(report.Finding(f.Passed, f.Message))
		}
		n.Add(item)
	}
	return n
}

func serviceConnectionsNode(conns []model.ServiceConnection) *report.Node {
	n := report.NewCategory(CategoryServiceConnections)
	if len(conns) == 0 {
		return n.Add(report.Placeholder(NoServiceConnections))
	}
	for _, c := range conns {
		n.Add(report.Item(fmt.Sprintf("%s (%s) %s", c.Name, c.Type, c.ID)))
	}
	return n
}
