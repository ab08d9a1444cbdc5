// Package probetest provides a scripted probe.Runner for tests.
package probetest

import (
	"context"
	"fmt"
	"sync"

	"mauicli/internal/probe"
)

// Response is the scripted outcome for one command line
type Response struct {
	Result probe.Result
	Err    error
}

// Runner answers commands from a script keyed by probe.CommandLine.
// Unscripted commands fail with probe.ErrNotFound.
type Runner struct {
	mu     sync.Mutex
	script map[string]Response
	calls  []string
}

// New creates an empty scripted runner
func New() *Runner {
	return &Runner{script: make(map[string]Response)}
}

// Stdout scripts a successful command printing out
func (r *Runner) Stdout(commandLine, out string) *Runner {
	return r.Set(commandLine, Response{Result: probe.Result{Stdout: out}})
}

// Stderr scripts a successful command printing to stderr
func (r *Runner) Stderr(commandLine, out string) *Runner {
	return r.Set(commandLine, Response{Result: probe.Result{Stderr: out}})
}

// Exit scripts a command that exits with code and stderr
func (r *Runner) Exit(commandLine string, code int, stderr string) *Runner {
	return r.Set(commandLine, Response{Result: probe.Result{ExitCode: code, Stderr: stderr}})
}

// Fail scripts a command that cannot start
func (r *Runner) Fail(commandLine string, err error) *Runner {
	return r.Set(commandLine, Response{Err: err})
}

// Set scripts an arbitrary response
func (r *Runner) Set(commandLine string, resp Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.script[commandLine] = resp
	return r
}

// Calls returns the command lines executed so far, in order
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Run implements probe.Runner
func (r *Runner) Run(ctx context.Context, executable string, args ...string) (probe.Result, error) {
	return r.RunIn(ctx, "", executable, args...)
}

// RunIn implements probe.Runner; dir is ignored
func (r *Runner) RunIn(_ context.Context, _ string, executable string, args ...string) (probe.Result, error) {
	line := probe.CommandLine(executable, args...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, line)

	resp, ok := r.script[line]
	if !ok {
		return probe.Result{}, fmt.Errorf("%s: %w", executable, probe.ErrNotFound)
	}
	return resp.Result, resp.Err
}
