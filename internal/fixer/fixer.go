package fixer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joescharf/autodev/internal/config"
	"github.com/joescharf/autodev/internal/git"
	"github.com/joescharf/autodev/internal/hosting"
	"github.com/joescharf/autodev/internal/models"
	"github.com/joescharf/autodev/internal/output"
)

// FixMarker is the commit-message marker that identifies fix commits. The
// retry guard counts commits matching it, so every fix commit must carry it.
const FixMarker = "fix: address code review"

const defaultFixCommitMessage = "fix: address code review findings"

// FixService produces a set of file replacements addressing review findings.
type FixService interface {
	GenerateFix(ctx context.Context, prTitle, findings, files string) (*models.FixSet, error)
}

// Result describes what a fix run did.
type Result struct {
	Attempts   int
	Capped     bool
	NoFindings bool
	Applied    bool
}

// Fixer reads review findings from a blocked pull request, asks the fix
// service for corrected files, and pushes a marker commit to the PR branch.
type Fixer struct {
	cfg  *config.Fix
	llm  FixService
	git  git.Client
	host hosting.Client
	ui   *output.UI
}

func New(cfg *config.Fix, llm FixService, gitClient git.Client, host hosting.Client, ui *output.UI) *Fixer {
	return &Fixer{cfg: cfg, llm: llm, git: gitClient, host: host, ui: ui}
}

// Run executes one fix attempt for the configured pull request.
func (f *Fixer) Run(ctx context.Context) (*Result, error) {
	// Count prior attempts from branch history, not cached state. The
	// commit log is the single source of truth for the retry guard.
	attempts, err := f.git.CountCommitsMatching(f.cfg.WorkDir, "origin/"+f.cfg.BaseBranch, FixMarker)
	if err != nil {
		return nil, fmt.Errorf("count fix attempts: %w", err)
	}
	res := &Result{Attempts: attempts}

	if attempts >= f.cfg.MaxAttempts {
		f.ui.Warning("Fix attempt cap reached (%d/%d), escalating", attempts, f.cfg.MaxAttempts)
		msg := fmt.Sprintf("**Self-Healing Fixer**\n\nMaximum automated fix attempts (%d) reached. A human needs to take over this pull request.", f.cfg.MaxAttempts)
		if err := f.host.CommentOnPullRequest(ctx, f.cfg.PRNumber, msg); err != nil {
			return nil, fmt.Errorf("post escalation comment: %w", err)
		}
		res.Capped = true
		return res, nil
	}

	pr, err := f.host.GetPullRequest(ctx, f.cfg.PRNumber)
	if err != nil {
		return nil, fmt.Errorf("get pull request #%d: %w", f.cfg.PRNumber, err)
	}

	findings, err := f.collectFindings(ctx)
	if err != nil {
		return nil, err
	}
	if findings == "" {
		f.ui.Info("No actionable review findings, nothing to fix")
		res.NoFindings = true
		return res, nil
	}

	files, err := BuildContext(f.cfg.WorkDir)
	if err != nil {
		return nil, err
	}

	f.ui.Info("Requesting fix for PR #%d (attempt %d/%d)", f.cfg.PRNumber, attempts+1, f.cfg.MaxAttempts)
	fixSet, err := f.llm.GenerateFix(ctx, pr.Title, findings, files)
	if err != nil {
		return nil, fmt.Errorf("generate fix: %w", err)
	}

	applied, err := f.apply(fixSet)
	if err != nil {
		return nil, err
	}
	if !applied {
		f.ui.Info("Fix produced no net change to the working tree")
		return res, nil
	}

	if err := f.git.PushWithToken(f.cfg.WorkDir, f.cfg.Repo, f.cfg.AgentToken, f.cfg.PRBranch); err != nil {
		return nil, fmt.Errorf("push fix commit: %w", err)
	}

	comment := fixComment(fixSet.PRComment)
	if err := f.host.CommentOnPullRequest(ctx, f.cfg.PRNumber, comment); err != nil {
		f.ui.Warning("Could not post fix comment: %v", err)
	}

	f.ui.Success("Pushed fix commit to %s", f.cfg.PRBranch)
	res.Applied = true
	return res, nil
}

// collectFindings aggregates blocking review bodies and every inline comment
// in the order the platform returns them. Nothing is deduplicated; the fix
// service sees exactly what a human contributor would read on the PR.
func (f *Fixer) collectFindings(ctx context.Context) (string, error) {
	reviews, err := f.host.ListReviews(ctx, f.cfg.PRNumber)
	if err != nil {
		return "", fmt.Errorf("list reviews: %w", err)
	}
	comments, err := f.host.ListReviewComments(ctx, f.cfg.PRNumber)
	if err != nil {
		return "", fmt.Errorf("list review comments: %w", err)
	}

	var sb strings.Builder
	for _, r := range reviews {
		if r.State != hosting.ReviewStateChangesRequested || strings.TrimSpace(r.Body) == "" {
			continue
		}
		fmt.Fprintf(&sb, "**Review by %s:**\n%s\n\n", r.Author, r.Body)
	}
	for _, c := range comments {
		if strings.TrimSpace(c.Body) == "" {
			continue
		}
		fmt.Fprintf(&sb, "**Inline comment on %s line %d:**\n%s\n\n", c.File, c.Line, c.Body)
	}
	return strings.TrimSpace(sb.String()), nil
}

// apply writes the fix set's files and commits them with the marker message.
// Returns false when the fix produces no net change, in which case nothing is
// committed or pushed.
func (f *Fixer) apply(fixSet *models.FixSet) (bool, error) {
	for _, fc := range fixSet.Files {
		target := filepath.Join(f.cfg.WorkDir, fc.Path)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return false, fmt.Errorf("create directory for %s: %w", fc.Path, err)
		}
		if err := os.WriteFile(target, []byte(fc.Content), 0o644); err != nil {
			return false, fmt.Errorf("write %s: %w", fc.Path, err)
		}
	}

	if err := f.git.AddAll(f.cfg.WorkDir); err != nil {
		return false, fmt.Errorf("stage fix: %w", err)
	}
	dirty, err := f.git.HasChanges(f.cfg.WorkDir)
	if err != nil {
		return false, fmt.Errorf("check working tree: %w", err)
	}
	if !dirty {
		return false, nil
	}

	msg := fixSet.CommitMessage
	if !strings.Contains(msg, FixMarker) {
		msg = defaultFixCommitMessage
	}
	ident := git.Identity{Name: f.cfg.AgentName, Email: f.cfg.AgentEmail}
	if err := f.git.Commit(f.cfg.WorkDir, msg, ident); err != nil {
		return false, fmt.Errorf("commit fix: %w", err)
	}
	return true, nil
}

func fixComment(body string) string {
	msg := strings.TrimSpace(body)
	if msg == "" {
		msg = "Pushed a commit addressing the review findings."
	}
	return fmt.Sprintf("**Self-Healing Fixer**\n\n%s\n\n_The Diff Reviewer will re-review automatically._", msg)
}

// ReportFailure posts the error to the pull request so a run failure is
// visible without digging through CI logs.
func (f *Fixer) ReportFailure(ctx context.Context, runErr error) {
	msg := fmt.Sprintf("**Self-Healing Fixer failed**\n\n```\n%v\n```", runErr)
	if err := f.host.CommentOnPullRequest(ctx, f.cfg.PRNumber, msg); err != nil {
		f.ui.Error("Could not post error comment: %v", err)
	}
}
