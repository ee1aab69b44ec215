package reviewer

import (
	"fmt"
	"strings"

	"github.com/joescharf/autodev/internal/models"
)

// severityIcons map findings to the markers used in the rendered report.
var severityIcons = map[models.Severity]string{
	models.SeverityCritical: "🔴",
	models.SeverityWarning:  "🟡",
	models.SeverityInfo:     "🟢",
}

// FormatReport renders a review as the markdown report posted to the pull
// request: verdict banner, severity counts, per-finding blocks, footer.
func FormatReport(review *models.Review) string {
	var sb strings.Builder

	if review.Verdict == models.VerdictApprove {
		sb.WriteString("## ✅ Code Review: Approved\n\n")
	} else {
		sb.WriteString("## ❌ Code Review: Changes Requested\n\n")
	}

	fmt.Fprintf(&sb, "🔴 **%d Critical** &nbsp;|&nbsp; 🟡 **%d Warning** &nbsp;|&nbsp; 🟢 **%d Info**\n\n",
		review.Stats.Critical, review.Stats.Warning, review.Stats.Info)
	sb.WriteString(review.Summary)

	if len(review.Findings) > 0 {
		sb.WriteString("\n\n---\n## Findings\n")
		for _, f := range review.Findings {
			writeFinding(&sb, f)
		}
	} else {
		sb.WriteString("\n\n_No issues found._")
	}

	sb.WriteString("\n\n---\n")
	if review.Verdict == models.VerdictApprove {
		sb.WriteString("_Reviewed by the Diff Reviewer. No critical issues found; this PR is approved for merge._")
	} else {
		sb.WriteString("_Reviewed by the Diff Reviewer. Fix the 🔴 CRITICAL issues above and push; re-review happens automatically._")
	}
	return sb.String()
}

func writeFinding(sb *strings.Builder, f models.Finding) {
	icon, ok := severityIcons[f.Severity]
	if !ok {
		icon = "⚪"
	}
	fmt.Fprintf(sb, "\n### %s [%s] %s\n", icon, f.Severity, f.Title)

	if f.File != "" {
		fmt.Fprintf(sb, "**Location:** `%s`", f.File)
		if f.Line > 0 {
			fmt.Fprintf(sb, " line %d", f.Line)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(sb, "\n%s\n", f.Description)
	if f.Suggestion != "" {
		fmt.Fprintf(sb, "\n**Suggestion:**\n```\n%s\n```\n", f.Suggestion)
	}
}

// selfReviewNote is appended when the reviewer identity authored the pull
// request and the platform refuses a formal review.
const selfReviewNote = "\n\n> _Could not post a formal review because the PR author and reviewer " +
	"are the same account. In production, agents open PRs so this does not happen._"
