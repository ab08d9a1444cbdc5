package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mauicli/internal/config"
	"mauicli/internal/diag"
	"mauicli/internal/host"
	"mauicli/internal/probe"
)

var version = "0.1.0-dev"

// exitError carries a process exit code. A nil err exits silently.
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

func (e *exitError) Unwrap() error {
	return e.err
}

func exitWith(code int, format string, args ...interface{}) error {
	return &exitError{code: code, err: fmt.Errorf(format, args...)}
}

// deps are the process-level collaborators; zero values select the real ones
type deps struct {
	stdout     io.Writer
	stderr     io.Writer
	runner     probe.Runner
	host       *host.Info
	env        *config.Env
	fetcher    fetcher
	httpClient *http.Client
	workDir    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], deps{stdout: os.Stdout, stderr: os.Stderr})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, d deps) int {
	root := newRootCmd(d)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return diag.ExitSuccess
	}
	if ctx.Err() != nil {
		fmt.Fprintln(d.stderr, "Cancelled.")
		return diag.ExitCancelled
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(d.stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(d.stderr, "Error: %v\n", err)
	return diag.ExitGeneralError
}

func newRootCmd(d deps) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "maui",
		Short:         "Check and maintain a .NET MAUI development environment",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(d.stdout)
	root.SetErr(d.stderr)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to an additional config file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "write debug events to stderr")

	root.AddCommand(
		newCheckCmd(d, opts),
		newUpgradeCmd(d, opts),
		newApplyPRCmd(d, opts),
		newTokenCmd(d, opts),
		newVersionCmd(d),
	)
	return root
}
