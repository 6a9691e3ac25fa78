// Package azclitest provides a scripted azcli.Executor for tests.
package azclitest

import (
	"context"
	"strings"
	"sync"
	"time"

	"ado-governance-audit/internal/azcli"
)

// Executor answers commands from a table keyed by the space-joined
// argument list (program excluded). Unknown commands fail with exit code 1.
type Executor struct {
	mu        sync.Mutex
	responses map[string]azcli.Result
	calls     [][]string
}

func New() *Executor {
	return &Executor{responses: map[string]azcli.Result{}}
}

// On registers stdout for a successful call.
func (e *Executor) On(args string, stdout string) *Executor {
	return e.OnResult(args, azcli.Result{Stdout: stdout})
}

// OnResult registers a full result.
func (e *Executor) OnResult(args string, res azcli.Result) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.responses[args] = res
	return e
}

func (e *Executor) Execute(_ context.Context, _ string, _ time.Duration, args ...string) azcli.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, append([]string(nil), args...))
	if res, ok := e.responses[strings.Join(args, " ")]; ok {
		return res
	}
	return azcli.Result{ExitCode: 1, Stderr: "unexpected command: " + strings.Join(args, " ")}
}

// Calls returns every argument list seen so far.
func (e *Executor) Calls() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]string, len(e.calls))
	copy(out, e.calls)
	return out
}

// Client wraps the fake in an azcli.Client.
func (e *Executor) Client() *azcli.Client {
	return azcli.NewClient(e, "az", time.Minute)
}
