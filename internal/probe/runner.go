package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"mauicli/internal/logging"
)

// ErrNotFound is returned when the executable cannot be located
var ErrNotFound = errors.New("executable not found")

// ErrTimeout is returned when a probe exceeds the configured timeout
var ErrTimeout = errors.New("probe timed out")

// waitGrace bounds how long a killed probe may keep its output pipes open
// through processes it left behind.
const waitGrace = 500 * time.Millisecond

// Result is the observed outcome of one external command.
// A non-zero ExitCode is a normal result, not an error.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// OK reports a zero exit code
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Runner executes external diagnostic commands
type Runner interface {
	Run(ctx context.Context, executable string, args ...string) (Result, error)
	RunIn(ctx context.Context, dir, executable string, args ...string) (Result, error)
}

// ExecRunner runs commands through os/exec
type ExecRunner struct {
	timeout time.Duration
	logger  *logging.Logger
}

// NewExecRunner creates a runner. A zero timeout leaves probes unbounded.
func NewExecRunner(timeout time.Duration, logger *logging.Logger) *ExecRunner {
	return &ExecRunner{
		timeout: timeout,
		logger:  logger,
	}
}

// Run executes the command in the current working directory
func (r *ExecRunner) Run(ctx context.Context, executable string, args ...string) (Result, error) {
	return r.RunIn(ctx, "", executable, args...)
}

// RunIn executes the command in dir, capturing both streams fully
func (r *ExecRunner) RunIn(ctx context.Context, dir, executable string, args ...string) (Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	commandLine := CommandLine(executable, args...)
	r.logger.Debug("probe.run.start", "Running probe", map[string]interface{}{
		"command": commandLine,
		"dir":     dir,
	})

	cmd := exec.CommandContext(ctx, executable, args...) // #nosec G204 -- executables are fixed toolchain names or JAVA_HOME-derived paths
	cmd.Dir = dir
	if r.timeout > 0 {
		cmd.WaitDelay = waitGrace
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			r.logger.Warn("probe.run.timeout", "Probe did not finish", map[string]interface{}{
				"command": commandLine,
				"elapsed": elapsed.String(),
			})
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return Result{}, fmt.Errorf("%s: %w", commandLine, ErrTimeout)
			}
			return Result{}, fmt.Errorf("%s: %w", commandLine, ctxErr)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result := Result{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}
			r.logger.Debug("probe.run.complete", "Probe exited non-zero", map[string]interface{}{
				"command":   commandLine,
				"exit_code": result.ExitCode,
				"elapsed":   elapsed.String(),
			})
			return result, nil
		}

		r.logger.Debug("probe.run.failed", "Probe could not start", map[string]interface{}{
			"command": commandLine,
			"error":   err.Error(),
		})
		if errors.Is(err, exec.ErrNotFound) {
			return Result{}, fmt.Errorf("%s: %w", executable, ErrNotFound)
		}
		return Result{}, fmt.Errorf("failed to run %s: %w", commandLine, err)
	}

	r.logger.Debug("probe.run.complete", "Probe finished", map[string]interface{}{
		"command":   commandLine,
		"exit_code": 0,
		"elapsed":   elapsed.String(),
	})

	return Result{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// CommandLine joins an executable and its arguments with single spaces
func CommandLine(executable string, args ...string) string {
	if len(args) == 0 {
		return executable
	}
	return executable + " " + strings.Join(args, " ")
}
