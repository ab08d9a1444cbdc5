package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mauicli/internal/channel"
	"mauicli/internal/diag"
	"mauicli/internal/project"
)

type upgradeOptions struct {
	project string
	channel string
	json    bool
}

func newUpgradeCmd(d deps, root *rootOptions) *cobra.Command {
	opts := &upgradeOptions{}
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Show the package upgrades a MAUI channel offers for a project",
		Long: `Resolve the latest Microsoft.Maui* package versions on a channel and
report which references and target framework would change.

Channels: ` + strings.Join(channel.Names(), ", ") + `. Without --channel the configured default is used,
else the stable channel matching the project's target framework.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(d, root)
			if err != nil {
				return err
			}
			defer a.close()
			return runUpgrade(cmd, a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.project, "project", "", "path to the .csproj (default: locate in the current directory)")
	cmd.Flags().StringVarP(&opts.channel, "channel", "c", "", "channel name")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the plan as JSON")
	return cmd
}

func runUpgrade(cmd *cobra.Command, a *app, opts *upgradeOptions) error {
	p, err := loadProject(a, opts.project)
	if err != nil {
		return exitWith(diag.ExitFailedToFindProject, "%w", err)
	}

	ch, err := pickChannel(opts.channel, a.cfg.Upgrade.DefaultChannel, p.TargetFramework)
	if err != nil {
		return exitWith(diag.ExitGeneralError, "%w", err)
	}

	feed := channel.NewFeedClient(a.fetcher, a.logger)
	plan, err := channel.BuildPlan(cmd.Context(), feed, p, ch)
	if err != nil {
		return exitWith(diag.ExitGeneralError, "%w", err)
	}

	if opts.json {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}
	printPlan(a, plan)
	return nil
}

func loadProject(a *app, explicit string) (*project.Project, error) {
	dir, err := a.workingDir()
	if err != nil {
		return nil, err
	}
	path, err := project.Resolve(explicit, dir)
	if err != nil {
		return nil, err
	}
	return project.Load(path)
}

// pickChannel prefers the flag, then the configured default, then the
// recommendation for the project's framework
func pickChannel(flag, configured, tfm string) (channel.Channel, error) {
	switch {
	case flag != "":
		return channel.ByName(flag)
	case configured != "":
		return channel.ByName(configured)
	default:
		return channel.Recommended(tfm), nil
	}
}

func printPlan(a *app, plan *channel.Plan) {
	w := a.stdout
	fmt.Fprintf(w, "Project:  %s\n", filepath.Base(plan.Project))
	fmt.Fprintf(w, "Channel:  %s (%s)\n", plan.Channel.DisplayName, plan.Channel.Name)
	fmt.Fprintf(w, "Feed:     %s\n", plan.Channel.FeedURL)

	current := plan.CurrentTFM
	if current == "" {
		current = "unknown"
	}
	if plan.NeedsTFMChange {
		fmt.Fprintf(w, "Target:   %s -> %s\n", current, plan.Channel.TargetFramework)
	} else {
		fmt.Fprintf(w, "Target:   %s\n", current)
	}
	fmt.Fprintln(w)

	if len(plan.Updates) == 0 {
		fmt.Fprintln(w, "All MAUI package references are current for this channel.")
	} else {
		fmt.Fprintln(w, "Package updates:")
		for _, u := range plan.Updates {
			fmt.Fprintf(w, "  %s: %s -> %s\n", u.ID, u.Current, u.Latest)
		}
	}
	for _, id := range plan.Unresolved {
		fmt.Fprintf(w, "  %s: no version available on this channel\n", id)
	}

	if !plan.UpToDate() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Apply these changes to the project file to upgrade.")
	}
}
