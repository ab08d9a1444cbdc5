// Package channel describes MAUI distribution channels and resolves the
// latest package versions each one offers.
package channel

import (
	"fmt"
	"strings"
)

// Type distinguishes release feeds from CI feeds
type Type string

const (
	// Stable channels publish release builds only
	Stable Type = "stable"
	// Nightly channels publish CI builds, prereleases included
	Nightly Type = "nightly"
)

const (
	// NuGetOrgFeed is the public NuGet v3 service index
	NuGetOrgFeed = "https://api.nuget.org/v3/index.json"

	dotnet9NightlyFeed  = "https://pkgs.dev.azure.com/dnceng/public/_packaging/dotnet9/nuget/v3/index.json"
	dotnet10NightlyFeed = "https://pkgs.dev.azure.com/dnceng/public/_packaging/dotnet10/nuget/v3/index.json"
)

// Channel is a named package source paired with the target framework it ships for
type Channel struct {
	Name            string `json:"name"`
	DisplayName     string `json:"display_name"`
	FeedURL         string `json:"feed_url"`
	TargetFramework string `json:"target_framework"`
	Type            Type   `json:"type"`
}

var channels = []Channel{
	{Name: "net9-stable", DisplayName: ".NET 9 (stable)", FeedURL: NuGetOrgFeed, TargetFramework: "net9.0", Type: Stable},
	{Name: "net10-stable", DisplayName: ".NET 10 (stable)", FeedURL: NuGetOrgFeed, TargetFramework: "net10.0", Type: Stable},
	{Name: "net9-nightly", DisplayName: ".NET 9 (nightly)", FeedURL: dotnet9NightlyFeed, TargetFramework: "net9.0", Type: Nightly},
	{Name: "net10-nightly", DisplayName: ".NET 10 (nightly)", FeedURL: dotnet10NightlyFeed, TargetFramework: "net10.0", Type: Nightly},
}

// All returns the known channels in display order
func All() []Channel {
	out := make([]Channel, len(channels))
	copy(out, channels)
	return out
}

// Names returns the known channel names
func Names() []string {
	names := make([]string, len(channels))
	for i, c := range channels {
		names[i] = c.Name
	}
	return names
}

// ByName looks a channel up case-insensitively
func ByName(name string) (Channel, error) {
	for _, c := range channels {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, nil
		}
	}
	return Channel{}, fmt.Errorf("unknown channel %q (available: %s)", name, strings.Join(Names(), ", "))
}

// Recommended picks the stable channel matching the project's framework:
// net10-stable for net10 projects, net9-stable otherwise.
func Recommended(tfm string) Channel {
	if strings.HasPrefix(strings.ToLower(tfm), "net10") {
		return channels[1]
	}
	return channels[0]
}
