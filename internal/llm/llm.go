package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joescharf/autodev/internal/models"
)

// Client wraps the Anthropic API for the pipeline's three structured calls.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an LLM client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// complete sends one system+user exchange and returns the response text.
func (c *Client) complete(ctx context.Context, system, user string, maxTokens int64) (string, error) {
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in API response")
}

// GenerateChangeSet asks the generation service to implement an issue.
// The response must parse as a ChangeSet with a non-empty file list.
func (c *Client) GenerateChangeSet(ctx context.Context, issueNumber int, title, body string) (*models.ChangeSet, error) {
	if body == "" {
		body = "No description provided."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Issue #%d\n\n", issueNumber)
	fmt.Fprintf(&sb, "**Title:** %s\n\n", title)
	fmt.Fprintf(&sb, "**Description:**\n%s\n\n", body)
	sb.WriteString("Please implement this issue and respond with the JSON output as specified.")

	raw, err := c.complete(ctx, generateSystemPrompt, sb.String(), 8096)
	if err != nil {
		return nil, err
	}

	var cs models.ChangeSet
	if err := decodeResponse(raw, &cs); err != nil {
		return nil, err
	}
	if len(cs.Files) == 0 {
		return nil, &ErrSchema{Cause: fmt.Errorf("change set has no files"), Raw: raw}
	}
	return &cs, nil
}

// ReviewDiff asks the review service for a structured verdict on a filtered
// diff. The verdict and finding severities are validated against the closed
// enumerations before the review is returned.
func (c *Client) ReviewDiff(ctx context.Context, diff, prTitle, prBody string) (*models.Review, error) {
	if prBody == "" {
		prBody = "No description provided."
	}

	var sb strings.Builder
	sb.WriteString("## Pull Request\n")
	fmt.Fprintf(&sb, "**Title:** %s\n", prTitle)
	fmt.Fprintf(&sb, "**Description:** %s\n\n", prBody)
	sb.WriteString("## Diff\n```diff\n")
	sb.WriteString(diff)
	sb.WriteString("\n```\n\n")
	sb.WriteString("Please review this diff and respond with the JSON review object.")

	raw, err := c.complete(ctx, reviewSystemPrompt, sb.String(), 4096)
	if err != nil {
		return nil, err
	}

	var review models.Review
	if err := decodeResponse(raw, &review); err != nil {
		return nil, err
	}
	if err := review.Validate(); err != nil {
		return nil, &ErrSchema{Cause: err, Raw: raw}
	}
	return &review, nil
}

// GenerateFix asks the generation service for corrections given review
// findings and current file contents, both pre-formatted by the caller.
func (c *Client) GenerateFix(ctx context.Context, prTitle, findings, files string) (*models.FixSet, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Pull Request: %s\n\n", prTitle)
	sb.WriteString("## Code Review Findings (Changes Requested)\n")
	sb.WriteString(findings)
	sb.WriteString("\n\n## Current File Contents\n")
	sb.WriteString(files)
	sb.WriteString("\n\nPlease fix ALL the issues found in the review and respond with the JSON fix object.")

	raw, err := c.complete(ctx, fixSystemPrompt, sb.String(), 8096)
	if err != nil {
		return nil, err
	}

	var fs models.FixSet
	if err := decodeResponse(raw, &fs); err != nil {
		return nil, err
	}
	return &fs, nil
}
