package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"ado-governance-audit/internal/azcli"
	"ado-governance-audit/internal/report"
)

// Exit codes.
const (
	exitOK         = 0
	exitScanFailed = 1
	exitGate       = 2
	exitUsage      = 3
)

// exitError carries the process exit code for a failed run.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func fail(code int, err error) error { return &exitError{code: code, err: err} }

// runtimeEnv holds what the command needs from the outside world.
type runtimeEnv struct {
	exec     azcli.Executor
	lookPath func(string) (string, error)
	out      io.Writer
	errOut   io.Writer
	live     bool
	now      func() time.Time
	// newRunner builds the executor once the rate limit is known. exec is
	// used as is when set.
	newRunner func(callsPerSecond float64) *azcli.Runner
}

func defaultEnv() runtimeEnv {
	return runtimeEnv{
		lookPath: azcli.NewRunner().LookPath,
		out:      os.Stdout,
		errOut:   os.Stderr,
		live:     report.IsTerminal(os.Stdout),
		now:      time.Now,
		newRunner: func(perSecond float64) *azcli.Runner {
			return azcli.NewRunner(azcli.WithRateLimit(perSecond))
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand(defaultEnv()).ExecuteContext(ctx)
	stop()
	klog.Flush()
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode reports err and maps it to the process exit code. Errors that do
// not carry a code come from flag parsing.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if !errors.As(err, &ee) {
		fmt.Fprintln(w, "error:", err)
		return exitUsage
	}
	if ee.err != nil {
		fmt.Fprintln(w, "error:", ee.err)
	}
	return ee.code
}

func newRootCommand(env runtimeEnv) *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "ado-audit",
		Short: "Audit Azure DevOps governance: project admins, branch policies and service connections",
		Long: `ado-audit scans every project of an Azure DevOps organization with the az CLI
and prints a tree of project administrators, repository branch-policy findings
and service connections.

The organization defaults to the one configured with
'az devops configure --defaults organization=<url>'.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o.branchSet = cmd.Flags().Changed("branch")
			return run(cmd.Context(), o, env)
		},
	}

	bindFlags(cmd.Flags(), o)

	gfs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(gfs)
	cmd.PersistentFlags().AddGoFlagSet(gfs)
	return cmd
}

func bindFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVarP(&o.organization, "organization", "o", "", "Organization name or URL (default: az devops configured default)")
	fs.StringVarP(&o.projects, "projects", "p", "", "Comma-separated project names to scan (default: all projects)")
	fs.BoolVar(&o.includeRepos, "include-repos", false, "Evaluate default-branch policies of every repository")
	fs.BoolVar(&o.includeServiceConnections, "include-service-connections", false, "List service connections of every project")
	fs.StringVar(&o.configPath, "config", "", "Config file (default: .ado-audit.yaml in the working directory or $HOME)")
	fs.StringVar(&o.branch, "branch", "", "Branch whose policies are evaluated (default from config: main)")
	fs.StringVar(&o.outDir, "out", "", "Write the audit to this directory")
	fs.BoolVar(&o.redact, "redact", false, "Also write ado-audit-redacted.json with admin emails masked")
	fs.StringVar(&o.compare, "compare", "", "Path to a previous ado-audit.json to diff against")
	fs.BoolVar(&o.ci, "ci", false, "CI mode: print a one-line JSON summary after the tree")
	fs.IntVar(&o.minCompliance, "min-compliance", 0, "Exit 2 when compliance is below this percentage (0 disables)")
}
