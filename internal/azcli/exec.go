// Package azcli runs the Azure CLI as an opaque command executor.
package azcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	utilexec "k8s.io/utils/exec"
)

// Exit codes reported when the program could not produce one itself.
const (
	ExitNotFound = 127
	ExitTimeout  = 124
	ExitFailure  = 1
)

// Result is the outcome of one external command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// OK reports a zero exit code.
func (r Result) OK() bool { return r.ExitCode == 0 }

// Executor runs a program and never fails: every problem is reported through
// a non-zero Result.ExitCode and an explanatory Stderr.
type Executor interface {
	Execute(ctx context.Context, program string, timeout time.Duration, args ...string) Result
}

// Runner is the Executor backed by real processes.
type Runner struct {
	exec    utilexec.Interface
	limiter *rate.Limiter
}

type Option func(*Runner)

// WithExec swaps the process layer, mainly for tests.
func WithExec(e utilexec.Interface) Option {
	return func(r *Runner) { r.exec = e }
}

// WithRateLimit allows at most perSecond invocations per second.
// Values <= 0 leave the runner unthrottled.
func WithRateLimit(perSecond float64) Option {
	return func(r *Runner) {
		if perSecond > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{exec: utilexec.New()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// LookPath reports whether program can be found on PATH.
func (r *Runner) LookPath(program string) (string, error) {
	return r.exec.LookPath(program)
}

func (r *Runner) Execute(ctx context.Context, program string, timeout time.Duration, args ...string) Result {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return Result{ExitCode: ExitFailure, Stderr: fmt.Sprintf("%s: waiting for rate limiter: %v", program, err)}
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := r.exec.CommandContext(ctx, program, args...)
	cmd.SetStdout(&stdout)
	cmd.SetStderr(&stderr)

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.ExitCode = ExitTimeout
		res.Stderr = appendLine(res.Stderr, fmt.Sprintf("%s: timed out after %s", program, timeout))
		return res
	}

	var exitErr utilexec.ExitError
	switch {
	case errors.Is(err, utilexec.ErrExecutableNotFound):
		res.ExitCode = ExitNotFound
		res.Stderr = appendLine(res.Stderr, fmt.Sprintf("%s: executable not found in PATH", program))
	case errors.As(err, &exitErr) && exitErr.Exited():
		res.ExitCode = exitErr.ExitStatus()
	default:
		res.ExitCode = ExitFailure
		res.Stderr = appendLine(res.Stderr, fmt.Sprintf("%s: %v", program, err))
	}
	if res.ExitCode == 0 {
		res.ExitCode = ExitFailure
	}
	return res
}

func appendLine(s, line string) string {
	if s == "" {
		return line
	}
	if s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s + line
}
