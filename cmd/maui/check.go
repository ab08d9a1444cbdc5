package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mauicli/internal/check"
	"mauicli/internal/diag"
	"mauicli/internal/host"
	"mauicli/internal/manifest"
	"mauicli/internal/workload"
)

var platformFilters = []string{check.FilterAndroid, check.FilterIOS, check.FilterMacCatalyst, check.FilterWindows}

type checkOptions struct {
	platform     string
	verbose      bool
	manifestPath string
	json         bool
	bundle       string
}

func newCheckCmd(d deps, root *rootOptions) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the installed toolchain against the MAUI requirements manifest",
		Long: `Verify the .NET SDK, MAUI workloads and the platform toolchains
(Java JDK, Android SDK, Xcode, Windows SDK) applicable to this host.

Exits 1 when any component is in error. Warnings never fail the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(d, root)
			if err != nil {
				return err
			}
			defer a.close()
			return runCheck(cmd, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.platform, "platform", "p", "", "limit checks to one platform ("+strings.Join(platformFilters, ", ")+")")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "include details and target-level warnings")
	cmd.Flags().StringVarP(&opts.manifestPath, "manifest", "m", "", "manifest URL or file (default from config)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print records as JSON")
	cmd.Flags().StringVar(&opts.bundle, "bundle", "", "also write a diagnostic zip bundle to this path")
	return cmd
}

func runCheck(cmd *cobra.Command, a *app, opts *checkOptions) error {
	platform := strings.ToLower(strings.TrimSpace(opts.platform))
	if platform != "" && !contains(platformFilters, platform) {
		return exitWith(diag.ExitGeneralError, "unknown platform %q (available: %s)", opts.platform, strings.Join(platformFilters, ", "))
	}

	ctx := cmd.Context()
	cacheDir := ""
	if a.cfg.CacheEnabled() {
		cacheDir = a.cfg.ResolvedCacheDir()
	}
	m, source := manifest.NewLoader(a.fetcher, a.cfg.Manifest.URL, cacheDir, a.logger).
		WithBundled(manifest.Bundled()).
		LoadWithSource(ctx, opts.manifestPath)

	dotnetRoot := a.env.Get("DOTNET_ROOT")
	if dotnetRoot == "" {
		dotnetRoot = workload.DefaultDotnetRoot(a.host.Platform == host.Windows)
	}

	runID := check.NewRunID()
	results := check.NewReconciler(a.runner, a.host, a.env, a.logger).
		WithDependencies(workload.NewDependencyResolver(dotnetRoot, a.host.RID(), a.logger)).
		WithRunID(runID).
		CheckAll(ctx, platform, opts.verbose, m)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if opts.json {
		if err := diag.RenderJSON(a.stdout, results); err != nil {
			return err
		}
	} else {
		if opts.verbose {
			fmt.Fprintf(a.stdout, "Manifest: %s (%s)\n\n", manifestLabel(opts.manifestPath, a.cfg.Manifest.URL), source)
		}
		if err := diag.Render(a.stdout, results); err != nil {
			return err
		}
	}

	if opts.bundle != "" {
		bundleCfg := diag.NewConfig(version, a.cfgPath)
		bundleCfg.OutputPath = opts.bundle
		out, err := diag.NewPackager(bundleCfg, a.logger).CreateBundle(diag.Snapshot{
			RunID:    runID,
			Host:     a.host,
			Manifest: m,
			Source:   source,
			Results:  results,
		})
		if err != nil {
			return exitWith(diag.ExitGeneralError, "failed to write bundle: %w", err)
		}
		fmt.Fprintf(a.stderr, "Diagnostic bundle written to %s\n", out)
	}

	if code := diag.ExitCode(results); code != diag.ExitSuccess {
		return &exitError{code: code}
	}
	return nil
}

func manifestLabel(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}

func contains(items []string, item string) bool {
	for _, i := range items {
		if i == item {
			return true
		}
	}
	return false
}
