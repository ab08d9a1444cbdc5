package workload

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mauicli/internal/probe"
)

// Format identifies which listing format produced a Set
type Format string

const (
	// FormatJSON is `dotnet workload list --format json`
	FormatJSON Format = "json"
	// FormatText is the plain `dotnet workload list` table
	FormatText Format = "text"
)

// ErrQueryFailed is returned when neither listing could be obtained
var ErrQueryFailed = errors.New("could not query workloads")

// Listing is the outcome of a workload query
type Listing struct {
	Workloads Set
	Format    Format
}

// Summary describes the listing for verbose diagnostics
func (l Listing) Summary() string {
	return fmt.Sprintf("Found %d workloads via %s: %s", len(l.Workloads), l.Format, strings.Join(l.Workloads.IDs(), ", "))
}

// Query lists installed workloads. The JSON form is preferred; the text form
// is used when the JSON probe fails, exits non-zero, prints nothing or parses
// to an empty set. A well-formed but empty JSON listing stands when the text
// form cannot be obtained.
func Query(ctx context.Context, runner probe.Runner) (Listing, error) {
	var emptyJSON *Listing
	res, err := runner.Run(ctx, "dotnet", "workload", "list", "--format", "json")
	if err == nil && res.OK() && strings.TrimSpace(res.Stdout) != "" {
		set, valid := decodeJSON(res.Stdout)
		if len(set) > 0 {
			return Listing{Workloads: set, Format: FormatJSON}, nil
		}
		if valid {
			emptyJSON = &Listing{Workloads: set, Format: FormatJSON}
		}
	}

	res, err = runner.Run(ctx, "dotnet", "workload", "list")
	if (err != nil || !res.OK()) && emptyJSON != nil {
		return *emptyJSON, nil
	}
	if err != nil {
		return Listing{}, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	if !res.OK() {
		detail := strings.TrimSpace(res.Stderr)
		if detail == "" {
			detail = "Unknown error"
		}
		return Listing{}, fmt.Errorf("%w: exit code %d: %s", ErrQueryFailed, res.ExitCode, detail)
	}

	return Listing{Workloads: ParseText(res.Stdout), Format: FormatText}, nil
}
