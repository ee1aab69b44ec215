// Package reviewer implements the Diff Reviewer: acquire and filter the pull
// request diff, obtain a structured verdict from the review service, post it,
// and on approval squash-merge and delete the branch.
package reviewer

import (
	"context"
	"errors"
	"fmt"

	"github.com/joescharf/autodev/internal/config"
	"github.com/joescharf/autodev/internal/git"
	"github.com/joescharf/autodev/internal/hosting"
	"github.com/joescharf/autodev/internal/models"
	"github.com/joescharf/autodev/internal/output"
)

// ErrChangesRequested signals a REQUEST_CHANGES verdict. The review itself
// succeeded; the non-zero exit it produces is the CI gating signal.
var ErrChangesRequested = errors.New("review requested changes")

// ReviewService is the slice of the review service the reviewer uses.
type ReviewService interface {
	ReviewDiff(ctx context.Context, diff, prTitle, prBody string) (*models.Review, error)
}

// Outcome describes a completed review run.
type Outcome struct {
	Verdict        models.Verdict
	ShortCircuited bool // empty filtered diff, approved without a service call
	Merged         bool
	MergeFailed    bool // approved but the merge call failed; needs manual merge
}

// Reviewer orchestrates one review run.
type Reviewer struct {
	cfg  *config.Review
	llm  ReviewService
	git  git.Client
	host hosting.Client
	ui   *output.UI
}

// New creates a Reviewer with its collaborators.
func New(cfg *config.Review, llm ReviewService, gc git.Client, host hosting.Client, ui *output.UI) *Reviewer {
	return &Reviewer{cfg: cfg, llm: llm, git: gc, host: host, ui: ui}
}

// Run executes one review. It returns ErrChangesRequested alongside the
// outcome when the verdict blocks, so the process exit status reflects it.
func (r *Reviewer) Run(ctx context.Context) (*Outcome, error) {
	pr, err := r.host.GetPullRequest(ctx, r.cfg.PRNumber)
	if err != nil {
		return nil, err
	}
	r.ui.Info("Reviewing PR #%d: %s (%s -> %s)", pr.Number, pr.Title, pr.HeadRef, pr.BaseRef)

	botUser, err := r.host.AuthenticatedUser(ctx)
	if err != nil {
		return nil, err
	}

	// Drop superseded rejections first so the platform's merge gating
	// reflects only the verdict this run produces.
	r.dismissStaleReviews(ctx, botUser)

	rawDiff, err := r.git.Diff(r.cfg.WorkDir, r.cfg.BaseSHA, r.cfg.HeadSHA)
	if err != nil {
		return nil, fmt.Errorf("diff %s...%s: %w", r.cfg.BaseSHA, r.cfg.HeadSHA, err)
	}
	diff := FilterDiff(rawDiff)

	if IsEmptyDiff(diff) {
		r.ui.Info("No reviewable changes after filtering; approving without a service call")
		comment := "## ✅ Code Review: Approved\n\n_No reviewable code changes detected._"
		if err := r.host.CommentOnPullRequest(ctx, pr.Number, comment); err != nil {
			return nil, err
		}
		return &Outcome{Verdict: models.VerdictApprove, ShortCircuited: true}, nil
	}
	r.ui.VerboseLog("Filtered diff: %d chars", len(diff))

	review, err := r.llm.ReviewDiff(ctx, diff, pr.Title, pr.Body)
	if err != nil {
		return nil, fmt.Errorf("request verdict: %w", err)
	}

	// The gating threshold is fixed: only CRITICAL findings block, whatever
	// verdict string the service chose.
	if review.Blocking() {
		review.Verdict = models.VerdictRequestChanges
	} else {
		review.Verdict = models.VerdictApprove
	}

	if err := r.post(ctx, pr, botUser, review); err != nil {
		return nil, err
	}

	outcome := &Outcome{Verdict: review.Verdict}
	if review.Verdict == models.VerdictRequestChanges {
		r.ui.Warning("Review completed: changes requested (%d critical)", review.Stats.Critical)
		return outcome, ErrChangesRequested
	}

	r.ui.Success("Review completed: approved")
	r.autoMerge(ctx, pr, outcome)
	return outcome, nil
}

// dismissStaleReviews dismisses every prior REQUEST_CHANGES review left by
// the reviewer identity. Best-effort: a dismissal failure is logged, not
// fatal, since the fresh review supersedes it either way.
func (r *Reviewer) dismissStaleReviews(ctx context.Context, botUser string) {
	reviews, err := r.host.ListReviews(ctx, r.cfg.PRNumber)
	if err != nil {
		r.ui.Warning("Could not list prior reviews: %v", err)
		return
	}
	for _, rev := range reviews {
		if rev.Author != botUser || rev.State != hosting.ReviewStateChangesRequested {
			continue
		}
		if err := r.host.DismissReview(ctx, r.cfg.PRNumber, rev.ID, "Re-reviewing after new commits."); err != nil {
			r.ui.Warning("Could not dismiss review %d: %v", rev.ID, err)
			continue
		}
		r.ui.VerboseLog("Dismissed stale review %d", rev.ID)
	}
}

// post publishes the verdict as a formal review event, or as a plain comment
// when the platform would reject a self-review.
func (r *Reviewer) post(ctx context.Context, pr *hosting.PullRequest, botUser string, review *models.Review) error {
	report := FormatReport(review)

	if pr.Author == botUser {
		r.ui.Warning("PR author is the reviewer account; falling back to a plain comment")
		return r.host.CommentOnPullRequest(ctx, pr.Number, report+selfReviewNote)
	}

	event := hosting.ReviewEventApprove
	if review.Verdict == models.VerdictRequestChanges {
		event = hosting.ReviewEventRequestChanges
	}
	if err := r.host.CreateReview(ctx, pr.Number, report, event); err != nil {
		return fmt.Errorf("post review: %w", err)
	}
	r.ui.VerboseLog("Review posted: %s", event)
	return nil
}

// autoMerge squash-merges the approved pull request and deletes its branch.
// A merge failure is reported, not escalated: the verdict already succeeded
// and a human can merge by hand.
func (r *Reviewer) autoMerge(ctx context.Context, pr *hosting.PullRequest, outcome *Outcome) {
	title := fmt.Sprintf("feat: merge %s into %s (auto-approved)", pr.HeadRef, pr.BaseRef)
	message := fmt.Sprintf("Auto-merged by the Diff Reviewer after approval.\n\nPR #%d: %s", pr.Number, pr.Title)

	if err := r.host.SquashMerge(ctx, pr.Number, title, message); err != nil {
		outcome.MergeFailed = true
		r.ui.Warning("Auto-merge failed: %v", err)
		comment := fmt.Sprintf(
			"**Diff Reviewer**: this PR is approved but auto-merge failed, please merge manually.\n\n```\n%v\n```", err)
		if cerr := r.host.CommentOnPullRequest(ctx, pr.Number, comment); cerr != nil {
			r.ui.Error("Could not post merge-failure comment: %v", cerr)
		}
		return
	}

	outcome.Merged = true
	r.ui.Success("PR #%d merged", pr.Number)

	if err := r.host.DeleteBranch(ctx, pr.HeadRef); err != nil {
		r.ui.Warning("Could not delete branch %s: %v", pr.HeadRef, err)
		return
	}
	r.ui.VerboseLog("Branch %s deleted", pr.HeadRef)
}

// ReportFailure posts the run's failure on the pull request, best-effort.
func (r *Reviewer) ReportFailure(ctx context.Context, runErr error) {
	body := fmt.Sprintf(
		"**Diff Reviewer** encountered an error while reviewing this pull request:\n\n"+
			"```\n%v\n```\n\n"+
			"Please check the automation logs for more details.", runErr)
	if err := r.host.CommentOnPullRequest(ctx, r.cfg.PRNumber, body); err != nil {
		r.ui.Error("Could not post error comment: %v", err)
	}
}
