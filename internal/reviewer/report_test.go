package reviewer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joescharf/autodev/internal/models"
)

func TestFormatReport_Approved(t *testing.T) {
	review := &models.Review{
		Verdict: models.VerdictApprove,
		Summary: "Looks good overall.",
		Stats:   models.ReviewStats{Warning: 1},
		Findings: []models.Finding{
			{Severity: models.SeverityWarning, Title: "Unused variable", File: "main.go", Line: 12, Description: "x is never read."},
		},
	}

	out := FormatReport(review)
	assert.Contains(t, out, "## ✅ Code Review: Approved")
	assert.Contains(t, out, "**0 Critical**")
	assert.Contains(t, out, "**1 Warning**")
	assert.Contains(t, out, "Looks good overall.")
	assert.Contains(t, out, "Unused variable")
	assert.Contains(t, out, "`main.go` line 12")
	assert.Contains(t, out, "approved for merge")
}

func TestFormatReport_ChangesRequested(t *testing.T) {
	review := &models.Review{
		Verdict: models.VerdictRequestChanges,
		Summary: "SQL injection risk.",
		Stats:   models.ReviewStats{Critical: 1},
		Findings: []models.Finding{
			{
				Severity:    models.SeverityCritical,
				Title:       "Unsanitized query",
				File:        "db.go",
				Line:        40,
				Description: "User input is concatenated into SQL.",
				Suggestion:  "db.Query(\"SELECT * FROM t WHERE id = ?\", id)",
			},
		},
	}

	out := FormatReport(review)
	assert.Contains(t, out, "## ❌ Code Review: Changes Requested")
	assert.Contains(t, out, "**1 Critical**")
	assert.Contains(t, out, "Unsanitized query")
	assert.Contains(t, out, "**Suggestion:**")
	assert.Contains(t, out, "db.Query(")
	assert.Contains(t, out, "re-review happens automatically")
}

func TestFormatReport_NoFindings(t *testing.T) {
	review := &models.Review{
		Verdict: models.VerdictApprove,
		Summary: "Clean change.",
	}

	out := FormatReport(review)
	assert.Contains(t, out, "_No issues found._")
	assert.NotContains(t, out, "## Findings")
}
