package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestHelperProcess is re-executed as a child by the tests below.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("MAUI_PROBE_HELPER") != "1" {
		return
	}
	defer os.Exit(0)

	switch os.Getenv("MAUI_PROBE_MODE") {
	case "version":
		fmt.Fprintln(os.Stdout, "9.0.100")
	case "stderr":
		fmt.Fprintln(os.Stderr, `openjdk version "17.0.9" 2023-10-17`)
	case "fail":
		fmt.Fprintln(os.Stdout, "partial")
		fmt.Fprintln(os.Stderr, "workload list failed")
		os.Exit(3)
	case "sleep":
		time.Sleep(10 * time.Second)
	case "orphan":
		// Leave a sleeping child that inherits stdout, then hang.
		child := exec.Command(os.Args[0], helperArgs()...) // #nosec G204 -- re-executes the test binary
		child.Env = append(os.Environ(), "MAUI_PROBE_MODE=sleep")
		child.Stdout = os.Stdout
		if err := child.Start(); err != nil {
			os.Exit(2)
		}
		time.Sleep(10 * time.Second)
	case "pwd":
		wd, _ := os.Getwd()
		fmt.Fprint(os.Stdout, wd)
	}
}

func helper(t *testing.T, mode string) {
	t.Helper()
	t.Setenv("MAUI_PROBE_HELPER", "1")
	t.Setenv("MAUI_PROBE_MODE", mode)
}

func helperArgs() []string {
	return []string{"-test.run=TestHelperProcess", "--"}
}

func TestExecRunner_CapturesStdout(t *testing.T) {
	helper(t, "version")
	runner := NewExecRunner(0, nil)

	result, err := runner.Run(context.Background(), os.Args[0], helperArgs()...)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.OK() {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if strings.TrimSpace(result.Stdout) != "9.0.100" {
		t.Errorf("Stdout = %q", result.Stdout)
	}
}

func TestExecRunner_CapturesStderr(t *testing.T) {
	helper(t, "stderr")
	runner := NewExecRunner(0, nil)

	result, err := runner.Run(context.Background(), os.Args[0], helperArgs()...)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(result.Stderr, `version "17.0.9"`) {
		t.Errorf("Stderr = %q", result.Stderr)
	}
}

func TestExecRunner_NonZeroExitIsNotError(t *testing.T) {
	helper(t, "fail")
	runner := NewExecRunner(0, nil)

	result, err := runner.Run(context.Background(), os.Args[0], helperArgs()...)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil for non-zero exit", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if !strings.Contains(result.Stdout, "partial") || !strings.Contains(result.Stderr, "failed") {
		t.Errorf("streams not captured: stdout=%q stderr=%q", result.Stdout, result.Stderr)
	}
}

func TestExecRunner_MissingExecutable(t *testing.T) {
	runner := NewExecRunner(0, nil)

	_, err := runner.Run(context.Background(), "maui-definitely-not-installed-tool", "--version")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Run() error = %v, want ErrNotFound", err)
	}
}

func TestExecRunner_Timeout(t *testing.T) {
	helper(t, "sleep")
	runner := NewExecRunner(200*time.Millisecond, nil)

	start := time.Now()
	_, err := runner.Run(context.Background(), os.Args[0], helperArgs()...)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Run() error = %v, want ErrTimeout", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout was not enforced")
	}
}

func TestExecRunner_TimeoutWithChildHoldingStdout(t *testing.T) {
	helper(t, "orphan")
	runner := NewExecRunner(200*time.Millisecond, nil)

	start := time.Now()
	_, err := runner.Run(context.Background(), os.Args[0], helperArgs()...)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Run() error = %v, want ErrTimeout", err)
	}
	if elapsed > 3*time.Second {
		t.Errorf("Run() took %s with a child holding stdout, want the timeout enforced", elapsed)
	}
}

func TestExecRunner_RunIn(t *testing.T) {
	helper(t, "pwd")
	dir := t.TempDir()
	runner := NewExecRunner(0, nil)

	result, err := runner.RunIn(context.Background(), dir, os.Args[0], helperArgs()...)
	if err != nil {
		t.Fatalf("RunIn() error = %v", err)
	}

	want, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(strings.TrimSpace(result.Stdout))
	if got != want {
		t.Errorf("working dir = %s, want %s", got, want)
	}
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		exe  string
		args []string
		want string
	}{
		{"dotnet", nil, "dotnet"},
		{"dotnet", []string{"--version"}, "dotnet --version"},
		{"dotnet", []string{"workload", "list", "--format", "json"}, "dotnet workload list --format json"},
	}

	for _, tt := range tests {
		if got := CommandLine(tt.exe, tt.args...); got != tt.want {
			t.Errorf("CommandLine() = %q, want %q", got, tt.want)
		}
	}
}
