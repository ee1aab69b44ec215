package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/autodev/internal/git"
	"github.com/joescharf/autodev/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server exposing the run ledger",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets MCP clients inspect pipeline history natively. Configure
with:

  {
    "mcpServers": {
      "autodev": { "command": "autodev", "args": ["mcp"] }
    }
  }

Available tools: autodev_recent_runs, autodev_run_status,
autodev_fix_attempts. All tools are read-only; pipeline stages only
run via the CLI where CI supplies credentials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun(cmd)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun(cmd *cobra.Command) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	srv := mcp.NewServer(s, git.NewClient())
	return srv.ServeStdio(cmd.Context())
}
