package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mauicli/internal/diag"
	"mauicli/internal/fsutil"
	"mauicli/internal/github"
	"mauicli/internal/nuget"
	"mauicli/internal/project"
)

type applyPROptions struct {
	project  string
	artifact string
}

func newApplyPRCmd(d deps, root *rootOptions) *cobra.Command {
	opts := &applyPROptions{}
	cmd := &cobra.Command{
		Use:   "apply-pr <number>",
		Short: "Point a project at the NuGet packages built for a dotnet/maui pull request",
		Long: `Find the package artifacts of the pull request's successful CI runs and
show where to download them. Once the artifact is extracted into its hive
directory, register that directory in the project's NuGet.config as
maui-pr-<number> and list the package versions it offers.

Set GITHUB_TOKEN or run 'maui token set' to authenticate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pr, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(args[0]), "#"))
			if err != nil || pr <= 0 {
				return exitWith(diag.ExitInvalidPR, "invalid pull request number %q", args[0])
			}
			a, err := newApp(d, root)
			if err != nil {
				return err
			}
			defer a.close()
			return runApplyPR(cmd, a, pr, opts)
		},
	}

	cmd.Flags().StringVar(&opts.project, "project", "", "path to the .csproj (default: locate in the current directory)")
	cmd.Flags().StringVar(&opts.artifact, "artifact", "", "artifact name when the PR has several")
	return cmd
}

func runApplyPR(cmd *cobra.Command, a *app, pr int, opts *applyPROptions) error {
	p, err := loadProject(a, opts.project)
	if err != nil {
		return exitWith(diag.ExitProjectNotFound, "%w", err)
	}

	token := a.githubToken()
	client := github.NewClient(a.cfg.GitHub.APIBase, a.cfg.GitHub.Owner, a.cfg.GitHub.Repo, token, a.httpClient, a.logger)
	artifacts, err := client.PRArtifacts(cmd.Context(), pr)
	switch {
	case errors.Is(err, github.ErrUnauthorized):
		return exitWith(diag.ExitDownloadFailed,
			"%w; set GITHUB_TOKEN or run 'maui token set' with a token from https://github.com/settings/tokens", err)
	case errors.Is(err, github.ErrNotFound):
		return exitWith(diag.ExitInvalidPR, "pull request #%d not found in %s/%s", pr, a.cfg.GitHub.Owner, a.cfg.GitHub.Repo)
	case err != nil:
		return exitWith(diag.ExitDownloadFailed, "%w", err)
	case len(artifacts) == 0:
		return exitWith(diag.ExitDownloadFailed, "no package artifacts found for PR #%d; the build may still be running or may have failed", pr)
	}

	artifact, err := pickArtifact(artifacts, opts.artifact)
	if err != nil {
		return exitWith(diag.ExitGeneralError, "%w", err)
	}

	w := a.stdout
	hive := filepath.Join(a.cfg.ResolvedHivesDir(), fmt.Sprintf("pr-%d", pr), artifact.Name)
	fmt.Fprintf(w, "PR #%d artifact %s (build %s, %s)\n", pr, artifact.Name, artifact.BuildID, github.FormatBytes(artifact.SizeBytes))
	fmt.Fprintf(w, "Download: %s\n", artifact.DownloadURL)
	fmt.Fprintf(w, "Hive:     %s\n", hive)

	var pkgs []nuget.Package
	if fsutil.DirExists(hive) {
		pkgs, err = nuget.ScanPackages(hive)
		if err != nil {
			return exitWith(diag.ExitApplyFailed, "%w", err)
		}
	}
	if len(pkgs) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Extract the artifact's .nupkg files into the hive directory, then run this command again.")
		return nil
	}

	sourceKey := fmt.Sprintf("maui-pr-%d", pr)
	configPath, err := nuget.NewEditor(a.logger).AddLocalSource(filepath.Dir(p.Path), sourceKey, hive)
	if err != nil {
		return exitWith(diag.ExitApplyFailed, "failed to register package source: %w", err)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Registered %s in %s\n", sourceKey, configPath)

	printAvailable(a, p, pkgs)
	return nil
}

func (a *app) githubToken() string {
	var getter github.TokenGetter
	if store, err := a.secretStore(); err != nil {
		a.logger.Warn("github.token.store_unavailable", "Secret store unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		getter = store
	}

	token, source, err := github.ResolveToken(a.env.Get, getter)
	if err != nil {
		a.logger.Warn("github.token.unreadable", "Stored GitHub token could not be read", map[string]interface{}{
			"error": err.Error(),
		})
	}
	a.logger.Debug("github.token.resolved", "GitHub token resolved", map[string]interface{}{
		"source": string(source),
	})
	return token
}

// pickArtifact selects by name, or the only artifact when there is one
func pickArtifact(artifacts []github.Artifact, name string) (github.Artifact, error) {
	if name != "" {
		for _, art := range artifacts {
			if strings.EqualFold(art.Name, name) {
				return art, nil
			}
		}
		return github.Artifact{}, fmt.Errorf("artifact %q not found (available: %s)", name, artifactNames(artifacts))
	}
	if len(artifacts) == 1 {
		return artifacts[0], nil
	}
	return github.Artifact{}, fmt.Errorf("several artifacts found, choose one with --artifact: %s", artifactNames(artifacts))
}

func artifactNames(artifacts []github.Artifact) string {
	names := make([]string, len(artifacts))
	for i, art := range artifacts {
		names[i] = art.Name
	}
	return strings.Join(names, ", ")
}

func printAvailable(a *app, p *project.Project, pkgs []nuget.Package) {
	w := a.stdout
	latest := nuget.Latest(pkgs)

	refs := p.MauiReferences()
	if len(refs) == 0 {
		fmt.Fprintln(w, "The project has no Microsoft.Maui* package references.")
		return
	}

	fmt.Fprintln(w, "Versions available from the PR build:")
	for _, ref := range refs {
		pkg, ok := latest[strings.ToLower(ref.ID)]
		if !ok {
			fmt.Fprintf(w, "  %s: %s (not in artifact)\n", ref.ID, ref.Version)
			continue
		}
		fmt.Fprintf(w, "  %s: %s -> %s\n", ref.ID, ref.Version, pkg.Version)
	}
}
