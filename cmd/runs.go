package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/autodev/internal/models"
	"github.com/joescharf/autodev/internal/output"
	"github.com/joescharf/autodev/internal/store"
)

var (
	runsKind    string
	runsOutcome string
	runsLimit   int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent pipeline runs from the run ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runsRun(cmd)
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsKind, "kind", "", "Filter by run kind (generate, review, fix)")
	runsCmd.Flags().StringVar(&runsOutcome, "outcome", "", "Filter by outcome (success, no_changes, blocked, capped, failed)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(runsCmd)
}

func runsRun(cmd *cobra.Command) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	runs, err := s.ListRuns(cmd.Context(), store.RunListFilter{
		Kind:    models.RunKind(runsKind),
		Outcome: models.RunOutcome(runsOutcome),
		Limit:   runsLimit,
	})
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		ui.Info("No runs recorded yet")
		return nil
	}

	table := ui.Table([]string{"WHEN", "KIND", "TARGET", "BRANCH", "OUTCOME", "DURATION", "DETAIL"})
	for _, r := range runs {
		target := ""
		if r.IssueNumber > 0 {
			target = fmt.Sprintf("issue #%d", r.IssueNumber)
		}
		if r.PRNumber > 0 {
			target = fmt.Sprintf("PR #%d", r.PRNumber)
		}
		detail := r.Detail
		if len(detail) > 60 {
			detail = detail[:57] + "..."
		}
		table.Append([]string{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			string(r.Kind),
			target,
			r.Branch,
			output.OutcomeColor(string(r.Outcome)),
			r.Duration().Round(10 * time.Millisecond).String(),
			detail,
		})
	}
	return table.Render()
}
