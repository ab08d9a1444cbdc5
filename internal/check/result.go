package check

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the outcome of one component check
type Status string

const (
	// StatusOK means the component meets requirements
	StatusOK Status = "OK"
	// StatusWarning means the component works but is not recommended
	StatusWarning Status = "WARNING"
	// StatusError means the component is missing or unusable
	StatusError Status = "ERROR"
	// StatusNotApplicable means the check does not apply to this host
	StatusNotApplicable Status = "NOT_APPLICABLE"
)

// Valid reports whether s is one of the four statuses
func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusWarning, StatusError, StatusNotApplicable:
		return true
	default:
		return false
	}
}

// Result is one diagnostic record
type Result struct {
	Name           string            `json:"name"`
	Status         Status            `json:"status"`
	Message        string            `json:"message"`
	Recommendation string            `json:"recommendation,omitempty"`
	Details        map[string]string `json:"details,omitempty"`
}

// Validate reports a record that breaks the record contract: blank name or
// message, unknown status, or a WARNING/ERROR without a recommendation.
func (r Result) Validate() error {
	var problems []string
	if strings.TrimSpace(r.Name) == "" {
		problems = append(problems, "name is blank")
	}
	if strings.TrimSpace(r.Message) == "" {
		problems = append(problems, "message is blank")
	}
	if !r.Status.Valid() {
		problems = append(problems, fmt.Sprintf("unknown status %q", r.Status))
	}
	if (r.Status == StatusError || r.Status == StatusWarning) && strings.TrimSpace(r.Recommendation) == "" {
		problems = append(problems, "recommendation required for "+string(r.Status))
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.New(r.Name + ": " + strings.Join(problems, "; "))
}

// HasErrors reports whether any record has status ERROR
func HasErrors(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusError {
			return true
		}
	}
	return false
}

// Count returns how many records have the given status
func Count(results []Result, status Status) int {
	n := 0
	for _, r := range results {
		if r.Status == status {
			n++
		}
	}
	return n
}
