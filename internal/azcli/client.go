package azcli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Client binds an Executor to the configured program and per-call timeout.
type Client struct {
	Exec    Executor
	Program string
	Timeout time.Duration
}

func NewClient(exec Executor, program string, timeout time.Duration) *Client {
	return &Client{Exec: exec, Program: program, Timeout: timeout}
}

// Run executes the program with args as given.
func (c *Client) Run(ctx context.Context, args ...string) Result {
	return c.Exec.Execute(ctx, c.Program, c.Timeout, args...)
}

// Query runs a query with "--output json" appended.
func (c *Client) Query(ctx context.Context, args ...string) Result {
	full := make([]string, 0, len(args)+2)
	full = append(full, args...)
	full = append(full, "--output", "json")
	return c.Run(ctx, full...)
}

// Decode unmarshals JSON stdout into a loosely typed value. Numbers decode
// as float64.
func Decode(stdout string) (any, error) {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return nil, fmt.Errorf("empty output")
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}
	return v, nil
}

// Describe renders a failed Result for logs.
func (r Result) Describe() string {
	msg := strings.TrimSpace(r.Stderr)
	if msg == "" {
		msg = "no error output"
	}
	return fmt.Sprintf("exit code %d: %s", r.ExitCode, msg)
}
