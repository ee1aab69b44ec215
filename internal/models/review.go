package models

import "fmt"

// Verdict is the reviewer's overall decision on a pull request.
type Verdict string

const (
	VerdictApprove        Verdict = "APPROVE"
	VerdictRequestChanges Verdict = "REQUEST_CHANGES"
)

// Valid reports whether v is one of the known verdicts.
func (v Verdict) Valid() bool {
	return v == VerdictApprove || v == VerdictRequestChanges
}

// Severity classifies a single review finding. Only CRITICAL blocks merge.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return s == SeverityCritical || s == SeverityWarning || s == SeverityInfo
}

// Finding is one reported problem from the review service.
type Finding struct {
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	File        string   `json:"file,omitempty"`
	Line        int      `json:"line,omitempty"`
	Description string   `json:"description"`
	Suggestion  string   `json:"suggestion"`
}

// ReviewStats holds aggregate finding counts by severity.
type ReviewStats struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}

// Review is the review service's structured verdict for a diff.
type Review struct {
	Verdict  Verdict     `json:"verdict"`
	Summary  string      `json:"summary"`
	Stats    ReviewStats `json:"stats"`
	Findings []Finding   `json:"findings"`
}

// Validate checks that the verdict and every finding severity belong to the
// closed enumerations. An unrecognized value from the service is a schema
// violation, not a silently-ignored finding.
func (r *Review) Validate() error {
	if !r.Verdict.Valid() {
		return fmt.Errorf("unknown verdict %q", r.Verdict)
	}
	for i, f := range r.Findings {
		if !f.Severity.Valid() {
			return fmt.Errorf("finding %d (%q): unknown severity %q", i, f.Title, f.Severity)
		}
	}
	return nil
}

// Blocking reports whether the review must block merge. Only CRITICAL
// findings block; WARNING and INFO never do.
func (r *Review) Blocking() bool {
	return r.Stats.Critical > 0
}
