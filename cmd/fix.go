package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/autodev/internal/config"
	"github.com/joescharf/autodev/internal/fixer"
	"github.com/joescharf/autodev/internal/git"
	"github.com/joescharf/autodev/internal/hosting"
	"github.com/joescharf/autodev/internal/llm"
	"github.com/joescharf/autodev/internal/models"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Push a fix commit addressing review findings on a blocked PR",
	Long: `Read the review findings on the configured pull request, generate
corrected files, and push a fix commit to the PR branch. Attempts are
bounded: once the branch carries the maximum number of fix commits the
command posts an escalation comment and exits zero without acting, so
a human takes over instead of the loop running forever.

Intended to run from CI after a review requests changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fixRun(cmd)
	},
}

func init() {
	rootCmd.AddCommand(fixCmd)
}

func fixRun(cmd *cobra.Command) error {
	cfg, err := config.LoadFix()
	if err != nil {
		return err
	}

	host, err := hosting.NewGitHubClient(cfg.Repo, cfg.AgentToken)
	if err != nil {
		return err
	}
	svc := llm.NewClient(cfg.AnthropicAPIKey, cfg.Model)
	fx := fixer.New(cfg, svc, git.NewClient(), host, ui)

	run := &models.PipelineRun{
		Kind:      models.RunKindFix,
		Repo:      cfg.Repo,
		PRNumber:  cfg.PRNumber,
		Branch:    cfg.PRBranch,
		StartedAt: time.Now().UTC(),
	}
	defer recordRun(cmd, run)

	res, err := fx.Run(cmd.Context())
	if err != nil {
		run.Outcome = models.RunOutcomeFailed
		run.Detail = err.Error()
		fx.ReportFailure(cmd.Context(), err)
		return err
	}

	switch {
	case res.Capped:
		run.Outcome = models.RunOutcomeCapped
		run.Detail = "fix attempt cap reached, escalated to a human"
	case res.NoFindings, !res.Applied:
		run.Outcome = models.RunOutcomeNoChanges
	default:
		run.Outcome = models.RunOutcomeSuccess
	}
	return nil
}
