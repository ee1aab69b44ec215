package models

import "time"

// RunKind identifies which pipeline component a ledger record belongs to.
type RunKind string

const (
	RunKindGenerate RunKind = "generate"
	RunKindReview   RunKind = "review"
	RunKindFix      RunKind = "fix"
)

// RunOutcome is the terminal state of a single pipeline run.
type RunOutcome string

const (
	RunOutcomeSuccess   RunOutcome = "success"    // handled, approved, or fix applied
	RunOutcomeNoChanges RunOutcome = "no_changes" // nothing to commit or no findings
	RunOutcomeBlocked   RunOutcome = "blocked"    // review requested changes
	RunOutcomeCapped    RunOutcome = "capped"     // fix-attempt bound reached, escalated
	RunOutcomeFailed    RunOutcome = "failed"     // error surfaced as issue/PR comment
)

// PipelineRun is one append-only run ledger record. The ledger is strictly
// observational: pipeline control flow reads platform state and commit
// history, never this table.
type PipelineRun struct {
	ID          string
	Kind        RunKind
	Repo        string
	IssueNumber int // 0 when the run was PR-triggered
	PRNumber    int // 0 when the run was issue-triggered
	Branch      string
	Outcome     RunOutcome
	Detail      string // verdict, escalation note, or error text
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Duration returns the wall time the run took.
func (r *PipelineRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
