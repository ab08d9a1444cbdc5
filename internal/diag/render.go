package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mauicli/internal/check"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00d7ff")).MarginBottom(1)
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#87d75f")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd700")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true)
	naStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd700")).MarginTop(1)
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")).PaddingLeft(4)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff")).MarginTop(1)
)

func statusStyle(s check.Status) lipgloss.Style {
	switch s {
	case check.StatusOK:
		return okStyle
	case check.StatusWarning:
		return warnStyle
	case check.StatusError:
		return errorStyle
	case check.StatusNotApplicable:
		return naStyle
	default:
		return nameStyle
	}
}

func statusLabel(s check.Status) string {
	switch s {
	case check.StatusOK:
		return "OK"
	case check.StatusWarning:
		return "WARN"
	case check.StatusError:
		return "FAIL"
	case check.StatusNotApplicable:
		return "N/A"
	default:
		return string(s)
	}
}

// Render writes the human-readable report: one line per record, details when
// present, then the recommendations of every WARNING and ERROR record.
func Render(w io.Writer, results []check.Result) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render(".NET MAUI Environment Check"))
	b.WriteString("\n")

	width := 0
	for _, r := range results {
		if len(r.Name) > width {
			width = len(r.Name)
		}
	}

	for _, r := range results {
		label := statusStyle(r.Status).Render(fmt.Sprintf("%-4s", statusLabel(r.Status)))
		name := nameStyle.Render(fmt.Sprintf("%-*s", width, r.Name))
		fmt.Fprintf(&b, "[%s] %s  %s\n", label, name, r.Message)

		keys := make([]string, 0, len(r.Details))
		for k := range r.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(detailStyle.Render(fmt.Sprintf("%s: %s", k, r.Details[k])))
			b.WriteString("\n")
		}
	}

	var recs []check.Result
	for _, r := range results {
		if (r.Status == check.StatusError || r.Status == check.StatusWarning) && r.Recommendation != "" {
			recs = append(recs, r)
		}
	}
	if len(recs) > 0 {
		b.WriteString(sectionStyle.Render("Recommendations"))
		b.WriteString("\n")
		for _, r := range recs {
			fmt.Fprintf(&b, "  • %s: %s\n", r.Name, r.Recommendation)
		}
	}

	b.WriteString(hintStyle.Render(summary(results)))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func summary(results []check.Result) string {
	errs := check.Count(results, check.StatusError)
	warns := check.Count(results, check.StatusWarning)
	if errs == 0 && warns == 0 {
		return "All checks passed."
	}
	return fmt.Sprintf("%d error(s), %d warning(s).", errs, warns)
}

// RenderJSON writes the records as an indented JSON array
func RenderJSON(w io.Writer, results []check.Result) error {
	if results == nil {
		results = []check.Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}
