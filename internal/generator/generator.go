// Package generator implements the Change Generator: given an issue, obtain
// a structured change set from the generation service, materialize it on a
// feature branch, and publish it as a pull request linked to the issue.
package generator

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

// ChangeService is the slice of the generation service the generator uses.
type ChangeService interface {
	GenerateChangeSet(ctx context.Context, issueNumber int, title, body string) (*models.ChangeSet, error)
}

// Result describes a completed generator run.
type Result struct {
	Branch    string
	NoChanges bool
	PR        *hosting.PullRequest
}

// Generator orchestrates one generate run.
type Generator struct {
	cfg  *config.Generate
	llm  ChangeService
	git  git.Client
	host hosting.Client
	ui   *output.UI
}

// New creates a Generator with its collaborators.
func New(cfg *config.Generate, llm ChangeService, gc git.Client, host hosting.Client, ui *output.UI) *Generator {
	return &Generator{cfg: cfg, llm: llm, git: gc, host: host, ui: ui}
}

// Run executes generate -> materialize -> publish. Any error is terminal for
// this run; the caller reports it on the issue via ReportFailure.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	g.ui.Info("Generating change set for issue #%d: %s", g.cfg.IssueNumber, g.cfg.IssueTitle)

	cs, err := g.llm.GenerateChangeSet(ctx, g.cfg.IssueNumber, g.cfg.IssueTitle, g.cfg.IssueBody)
	if err != nil {
		return nil, fmt.Errorf("generate change set: %w", err)
	}
	g.ui.VerboseLog("Service returned %d file(s)", len(cs.Files))

	branch := BranchName(g.cfg.AgentKind, g.cfg.IssueNumber, cs.BranchSuffix)

	res, err := g.materialize(cs, branch)
	if err != nil || res.NoChanges {
		return res, err
	}

	pr, err := g.publish(ctx, cs, branch)
	if err != nil {
		return nil, err
	}
	res.PR = pr
	return res, nil
}

// materialize syncs the integration branch, creates the feature branch,
// writes the change set, and commits and pushes it under the agent identity.
func (g *Generator) materialize(cs *models.ChangeSet, branch string) (*Result, error) {
	g.ui.Info("Creating branch %s from %s", branch, g.cfg.BaseBranch)

	// Start from current base state so the branch cannot carry a stale base
	// into a merge conflict later.
	if err := g.git.SyncBranch(g.cfg.WorkDir, g.cfg.BaseBranch); err != nil {
		return nil, fmt.Errorf("sync %s: %w", g.cfg.BaseBranch, err)
	}
	if err := g.git.CreateBranch(g.cfg.WorkDir, branch); err != nil {
		return nil, fmt.Errorf("create branch %s: %w", branch, err)
	}

	for _, f := range cs.Files {
		if err := writeFile(g.cfg.WorkDir, f); err != nil {
			return nil, err
		}
		g.ui.VerboseLog("Wrote %s", f.Path)
	}

	if err := g.git.AddAll(g.cfg.WorkDir); err != nil {
		return nil, fmt.Errorf("stage changes: %w", err)
	}
	changed, err := g.git.HasChanges(g.cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("check working tree: %w", err)
	}
	if !changed {
		// Generation echoed existing content; nothing to commit, no PR.
		g.ui.Warning("No changes after writing %d file(s), stopping", len(cs.Files))
		return &Result{Branch: branch, NoChanges: true}, nil
	}

	msg := cs.CommitMessage
	if msg == "" {
		msg = fmt.Sprintf("feat: resolve issue #%d", g.cfg.IssueNumber)
	}
	ident := git.Identity{Name: g.cfg.AgentName, Email: g.cfg.AgentEmail}
	if err := g.git.Commit(g.cfg.WorkDir, msg, ident); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	if err := g.git.PushWithToken(g.cfg.WorkDir, g.cfg.Repo, g.cfg.AgentToken, branch); err != nil {
		return nil, fmt.Errorf("push %s: %w", branch, err)
	}

	g.ui.Success("Branch pushed: %s", branch)
	return &Result{Branch: branch}, nil
}

// publish opens the pull request and links it back to the issue.
func (g *Generator) publish(ctx context.Context, cs *models.ChangeSet, branch string) (*hosting.PullRequest, error) {
	title := cs.PRTitle
	if title == "" {
		title = fmt.Sprintf("feat: resolve issue #%d - %s", g.cfg.IssueNumber, g.cfg.IssueTitle)
	}
	body := cs.PRBody
	if body == "" {
		body = fmt.Sprintf("Resolves #%d", g.cfg.IssueNumber)
	}
	// The back-reference makes the platform auto-close the issue on merge.
	ref := fmt.Sprintf("#%d", g.cfg.IssueNumber)
	if !strings.Contains(body, ref) {
		body += fmt.Sprintf("\n\nCloses #%d", g.cfg.IssueNumber)
	}

	g.ui.Info("Opening pull request: %s", title)
	pr, err := g.host.CreatePullRequest(ctx, title, body, branch, g.cfg.BaseBranch)
	if err != nil {
		return nil, fmt.Errorf("open pull request: %w", err)
	}
	g.ui.Success("Pull request opened: %s", pr.URL)

	comment := fmt.Sprintf(
		"**Change Generator** has started working on this issue.\n\n"+
			"Pull request opened: %s\n\n"+
			"The Diff Reviewer will review the code automatically.", pr.URL)
	if err := g.host.CommentOnIssue(ctx, g.cfg.IssueNumber, comment); err != nil {
		return nil, fmt.Errorf("comment on issue: %w", err)
	}
	return pr, nil
}

// ReportFailure posts the run's failure on the originating issue so a human
// sees it in the conversation thread, not only in automation logs. Reporting
// is best-effort: if the comment itself fails, the error is logged locally.
func (g *Generator) ReportFailure(ctx context.Context, runErr error) {
	body := fmt.Sprintf(
		"**Change Generator** encountered an error while working on this issue:\n\n"+
			"```\n%v\n```\n\n"+
			"Please check the automation logs for more details.", runErr)
	if err := g.host.CommentOnIssue(ctx, g.cfg.IssueNumber, body); err != nil {
		g.ui.Error("Could not post error comment: %v", err)
	}
}

func writeFile(workDir string, f models.FileChange) error {
	full := filepath.Join(workDir, f.Path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", f.Path, err)
	}
	if err := os.WriteFile(full, []byte(f.Content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	return nil
}
