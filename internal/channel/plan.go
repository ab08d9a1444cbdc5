package channel

import (
	"context"
	"fmt"

	"mauicli/internal/project"
)

// Update is one package reference that the channel would move
type Update struct {
	ID      string `json:"id"`
	Current string `json:"current"`
	Latest  string `json:"latest"`
}

// Plan describes what switching a project to a channel involves
type Plan struct {
	Project        string   `json:"project"`
	CurrentTFM     string   `json:"current_tfm"`
	Channel        Channel  `json:"channel"`
	NeedsTFMChange bool     `json:"needs_tfm_change"`
	Updates        []Update `json:"updates"`
	// Unresolved lists references the feed had no suitable version for
	Unresolved     []string `json:"unresolved,omitempty"`
}

// BuildPlan resolves the latest channel version of every MAUI reference in p.
// Feed errors abort the plan; references without a candidate are reported as
// unresolved.
func BuildPlan(ctx context.Context, feed *FeedClient, p *project.Project, ch Channel) (*Plan, error) {
	plan := &Plan{
		Project:    p.Path,
		CurrentTFM: p.TargetFramework,
		Channel:    ch,
		NeedsTFMChange: p.TargetFramework != "" && ch.TargetFramework != "" &&
			p.TargetFramework != ch.TargetFramework,
	}

	for _, ref := range p.MauiReferences() {
		latest, err := feed.LatestVersion(ctx, ch, ref.ID, ch.TargetFramework)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s on %s: %w", ref.ID, ch.Name, err)
		}
		if latest == "" {
			plan.Unresolved = append(plan.Unresolved, ref.ID)
			continue
		}
		if latest != ref.Version {
			plan.Updates = append(plan.Updates, Update{ID: ref.ID, Current: ref.Version, Latest: latest})
		}
	}

	feed.logger.Info("channel.plan.built", "Upgrade plan built", map[string]interface{}{
		"project":          p.Path,
		"channel":          ch.Name,
		"updates":          len(plan.Updates),
		"needs_tfm_change": plan.NeedsTFMChange,
	})
	return plan, nil
}

// UpToDate reports whether the plan changes nothing
func (p *Plan) UpToDate() bool {
	return !p.NeedsTFMChange && len(p.Updates) == 0
}
