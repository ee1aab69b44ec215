package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/autodev/internal/config"
	"github.com/joescharf/autodev/internal/generator"
	"github.com/joescharf/autodev/internal/git"
	"github.com/joescharf/autodev/internal/hosting"
	"github.com/joescharf/autodev/internal/llm"
	"github.com/joescharf/autodev/internal/models"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a change set for an issue and open a pull request",
	Long: `Generate a change set for the configured issue, push it on a fresh
feature branch, and open a pull request against the base branch.

Intended to run from CI on a labeled-issue event. The issue number,
title, and body come from configuration (typically AUTODEV_ISSUE_*
environment variables set by the workflow).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return generateRun(cmd)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command) error {
	cfg, err := config.LoadGenerate()
	if err != nil {
		return err
	}

	host, err := hosting.NewGitHubClient(cfg.Repo, cfg.AgentToken)
	if err != nil {
		return err
	}
	svc := llm.NewClient(cfg.AnthropicAPIKey, cfg.Model)
	gen := generator.New(cfg, svc, git.NewClient(), host, ui)

	run := &models.PipelineRun{
		Kind:        models.RunKindGenerate,
		Repo:        cfg.Repo,
		IssueNumber: cfg.IssueNumber,
		StartedAt:   time.Now().UTC(),
	}
	defer recordRun(cmd, run)

	res, err := gen.Run(cmd.Context())
	if err != nil {
		run.Outcome = models.RunOutcomeFailed
		run.Detail = err.Error()
		gen.ReportFailure(cmd.Context(), err)
		return err
	}

	run.Branch = res.Branch
	if res.NoChanges {
		run.Outcome = models.RunOutcomeNoChanges
		return nil
	}
	run.Outcome = models.RunOutcomeSuccess
	if res.PR != nil {
		run.PRNumber = res.PR.Number
		run.Detail = res.PR.URL
	}
	return nil
}
