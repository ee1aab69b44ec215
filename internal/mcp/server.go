package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/autodev/internal/fixer"
	"github.com/joescharf/autodev/internal/git"
	"github.com/joescharf/autodev/internal/models"
	"github.com/joescharf/autodev/internal/store"
)

// Server wraps the run ledger and exposes it as read-only MCP tools. Tools
// never trigger pipeline runs; those stay behind the CLI where the CI
// environment supplies credentials.
type Server struct {
	store store.Store
	git   git.Client
}

// NewServer creates the MCP server wrapper.
func NewServer(s store.Store, gc git.Client) *Server {
	return &Server{store: s, git: gc}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("autodev", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.recentRunsTool())
	srv.AddTool(s.runStatusTool())
	srv.AddTool(s.fixAttemptsTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

type runOut struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Repo        string `json:"repo"`
	IssueNumber int    `json:"issue_number,omitempty"`
	PRNumber    int    `json:"pr_number,omitempty"`
	Branch      string `json:"branch,omitempty"`
	Outcome     string `json:"outcome"`
	Detail      string `json:"detail,omitempty"`
	StartedAt   string `json:"started_at"`
	Duration    string `json:"duration"`
}

func toRunOut(r *models.PipelineRun) runOut {
	return runOut{
		ID:          r.ID,
		Kind:        string(r.Kind),
		Repo:        r.Repo,
		IssueNumber: r.IssueNumber,
		PRNumber:    r.PRNumber,
		Branch:      r.Branch,
		Outcome:     string(r.Outcome),
		Detail:      r.Detail,
		StartedAt:   r.StartedAt.UTC().Format(time.RFC3339),
		Duration:    r.Duration().String(),
	}
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// autodev_recent_runs
func (s *Server) recentRunsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("autodev_recent_runs",
		mcp.WithDescription("List recent pipeline runs from the run ledger. Returns a JSON array with kind, outcome, issue/PR numbers, and timing."),
		mcp.WithString("kind", mcp.Description("Filter by run kind: generate, review, or fix")),
		mcp.WithString("outcome", mcp.Description("Filter by outcome: success, no_changes, blocked, capped, or failed")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs to return (default 20)")),
	)
	return tool, s.handleRecentRuns
}

func (s *Server) handleRecentRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := store.RunListFilter{
		Kind:    models.RunKind(request.GetString("kind", "")),
		Outcome: models.RunOutcome(request.GetString("outcome", "")),
		Limit:   request.GetInt("limit", 20),
	}

	runs, err := s.store.ListRuns(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}

	out := make([]runOut, len(runs))
	for i, r := range runs {
		out[i] = toRunOut(r)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal runs: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// autodev_run_status
func (s *Server) runStatusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("autodev_run_status",
		mcp.WithDescription("Get a single pipeline run by its ledger id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Run ledger id (ULID)")),
	)
	return tool, s.handleRunStatus
}

func (s *Server) handleRunStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get run: %v", err)), nil
	}

	data, err := json.Marshal(toRunOut(run))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal run: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// autodev_fix_attempts
func (s *Server) fixAttemptsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("autodev_fix_attempts",
		mcp.WithDescription("Count fix commits on a local branch by counting commits whose message carries the fix marker. Authoritative source is the commit log, not the ledger."),
		mcp.WithString("workdir", mcp.Required(), mcp.Description("Path to the local repository checkout")),
		mcp.WithString("base_branch", mcp.Description("Base branch the PR targets (default develop)")),
	)
	return tool, s.handleFixAttempts
}

func (s *Server) handleFixAttempts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workdir, err := request.RequireString("workdir")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	base := request.GetString("base_branch", "develop")

	count, err := s.git.CountCommitsMatching(workdir, "origin/"+base, fixer.FixMarker)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to count fix commits: %v", err)), nil
	}

	out := map[string]any{
		"workdir":      workdir,
		"base_branch":  base,
		"fix_attempts": count,
	}
	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
