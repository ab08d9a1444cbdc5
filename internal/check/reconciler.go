package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"mauicli/internal/host"
	"mauicli/internal/logging"
	"mauicli/internal/manifest"
	"mauicli/internal/probe"
	"mauicli/internal/workload"
)

// Component names
const (
	NameDotNetSDK  = ".NET SDK"
	NameWorkloads  = "MAUI Workloads"
	NameJavaJDK    = "Java JDK"
	NameAndroidSDK = "Android SDK"
	NameXcode      = "Xcode"
	NameWindowsSDK = "Windows SDK"
)

// Platform filter values accepted by CheckAll
const (
	FilterAndroid     = "android"
	FilterIOS         = "ios"
	FilterMacCatalyst = "maccatalyst"
	FilterWindows     = "windows"
)

// Env resolves environment variables
type Env interface {
	Get(key string) string
}

// Reconciler compares the installed toolchain against a manifest
type Reconciler struct {
	runner probe.Runner
	host   host.Info
	env    Env
	deps   *workload.DependencyResolver
	runID  string
	logger *logging.Logger
}

// NewReconciler creates a reconciler for the given host
func NewReconciler(runner probe.Runner, h host.Info, env Env, logger *logging.Logger) *Reconciler {
	return &Reconciler{
		runner: runner,
		host:   h,
		env:    env,
		logger: logger,
	}
}

// WithDependencies enables workload-declared JDK and Xcode recommendations in verbose output
func (r *Reconciler) WithDependencies(deps *workload.DependencyResolver) *Reconciler {
	r.deps = deps
	return r
}

// WithRunID tags the run's log events with id instead of a fresh ULID
func (r *Reconciler) WithRunID(id string) *Reconciler {
	r.runID = id
	return r
}

// NewRunID returns a new sortable run identifier
func NewRunID() string {
	return ulid.Make().String()
}

// run carries per-invocation state between checks
type run struct {
	ctx        context.Context
	platform   string
	verbose    bool
	manifest   *manifest.Manifest
	sdkVersion string
}

// CheckAll runs every check applicable to the host and platform filter and
// returns one record per component, in a fixed order: .NET SDK, workloads,
// Java JDK, Android SDK, Xcode, Windows SDK. An empty platform means all.
func (r *Reconciler) CheckAll(ctx context.Context, platform string, verbose bool, m *manifest.Manifest) []Result {
	state := &run{
		ctx:      ctx,
		platform: strings.ToLower(strings.TrimSpace(platform)),
		verbose:  verbose,
		manifest: m,
	}

	runID := r.runID
	if runID == "" {
		runID = NewRunID()
	}
	r.logger.Info("check.run.start", "Environment check started", map[string]interface{}{
		"run_id":   runID,
		"platform": state.platform,
		"host":     r.host.Platform.String(),
		"verbose":  verbose,
	})

	var results []Result
	results = append(results, r.guard(state, NameDotNetSDK, func() []Result { return []Result{r.checkDotNetSDK(state)} })...)
	results = append(results, r.guard(state, NameWorkloads, func() []Result { return r.checkWorkloads(state) })...)

	if r.wantsAndroid(state.platform) {
		results = append(results, r.guard(state, NameJavaJDK, func() []Result { return []Result{r.checkJavaJDK(state)} })...)
		results = append(results, r.guard(state, NameAndroidSDK, func() []Result { return []Result{r.checkAndroidSDK(state)} })...)
	}
	if r.wantsApple(state.platform) {
		results = append(results, r.guard(state, NameXcode, func() []Result { return []Result{r.checkXcode(state)} })...)
	}
	if r.wantsWindows(state.platform) {
		results = append(results, r.guard(state, NameWindowsSDK, func() []Result { return []Result{r.checkWindowsSDK(state)} })...)
	}

	r.logger.Info("check.run.complete", "Environment check finished", map[string]interface{}{
		"run_id":   runID,
		"records":  len(results),
		"errors":   Count(results, StatusError),
		"warnings": Count(results, StatusWarning),
	})
	return results
}

// guard runs one check behind a recover boundary and enforces the record
// contract on its output.
func (r *Reconciler) guard(state *run, name string, fn func() []Result) (out []Result) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("check.component.panic", "Check failed unexpectedly", map[string]interface{}{
				"component": name,
				"panic":     fmt.Sprint(p),
			})
			out = []Result{{
				Name:           name,
				Status:         StatusError,
				Message:        fmt.Sprintf("Could not check %s", name),
				Recommendation: fmt.Sprintf("Error: %v", p),
			}}
		}
		out = normalize(out, state.verbose)
		for _, res := range out {
			r.logger.Debug("check.component.complete", "Check finished", map[string]interface{}{
				"component": res.Name,
				"status":    string(res.Status),
			})
		}
	}()
	return fn()
}

// normalize backfills missing messages and recommendations and strips
// details outside verbose mode.
func normalize(results []Result, verbose bool) []Result {
	for i := range results {
		res := &results[i]
		if strings.TrimSpace(res.Message) == "" {
			res.Message = string(res.Status)
		}
		if (res.Status == StatusError || res.Status == StatusWarning) && strings.TrimSpace(res.Recommendation) == "" {
			res.Recommendation = fmt.Sprintf("Review the %s installation", res.Name)
		}
		if !verbose || len(res.Details) == 0 {
			res.Details = nil
		}
	}
	return results
}

func (r *Reconciler) wantsAndroid(platform string) bool {
	return platform == "" || platform == FilterAndroid
}

func (r *Reconciler) wantsApple(platform string) bool {
	switch r.host.Platform {
	case host.MacOS:
		return platform == "" || platform == FilterIOS || platform == FilterMacCatalyst
	case host.Windows, host.Linux, host.Other:
		return false
	default:
		return false
	}
}

func (r *Reconciler) wantsWindows(platform string) bool {
	switch r.host.Platform {
	case host.Windows:
		return platform == "" || platform == FilterWindows
	case host.MacOS, host.Linux, host.Other:
		return false
	default:
		return false
	}
}

func (r *Reconciler) runProbe(state *run, exe string, args ...string) (probe.Result, error) {
	return r.runner.Run(state.ctx, exe, args...)
}

func (r *Reconciler) getenv(key string) string {
	if r.env == nil {
		return ""
	}
	return strings.TrimSpace(r.env.Get(key))
}
