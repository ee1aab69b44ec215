package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/autodev/internal/config"
	"github.com/joescharf/autodev/internal/git"
	"github.com/joescharf/autodev/internal/hosting"
	"github.com/joescharf/autodev/internal/llm"
	"github.com/joescharf/autodev/internal/models"
	"github.com/joescharf/autodev/internal/reviewer"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a pull request diff and merge or block it",
	Long: `Review the configured pull request's diff. An approving verdict posts
an APPROVE review and squash-merges the PR; a blocking verdict posts a
REQUEST_CHANGES review and exits non-zero so CI reflects the block.

Intended to run from CI on pull-request events. The PR number and the
base/head SHAs of the diff come from configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewRun(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func reviewRun(cmd *cobra.Command) error {
	cfg, err := config.LoadReview()
	if err != nil {
		return err
	}

	host, err := hosting.NewGitHubClient(cfg.Repo, cfg.ReviewerToken)
	if err != nil {
		return err
	}
	svc := llm.NewClient(cfg.AnthropicAPIKey, cfg.Model)
	rev := reviewer.New(cfg, svc, git.NewClient(), host, ui)

	run := &models.PipelineRun{
		Kind:      models.RunKindReview,
		Repo:      cfg.Repo,
		PRNumber:  cfg.PRNumber,
		StartedAt: time.Now().UTC(),
	}
	defer recordRun(cmd, run)

	outcome, err := rev.Run(cmd.Context())
	if err != nil && !errors.Is(err, reviewer.ErrChangesRequested) {
		run.Outcome = models.RunOutcomeFailed
		run.Detail = err.Error()
		rev.ReportFailure(cmd.Context(), err)
		return err
	}

	run.Detail = string(outcome.Verdict)
	if errors.Is(err, reviewer.ErrChangesRequested) {
		run.Outcome = models.RunOutcomeBlocked
		// Non-zero exit is the CI gating signal for a blocking verdict.
		return err
	}

	run.Outcome = models.RunOutcomeSuccess
	if outcome.MergeFailed {
		run.Detail += " (auto-merge failed)"
	}
	return nil
}
