package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCommon(t *testing.T) {
	t.Helper()
	viper.Set("repo", "acme/widgets")
	viper.Set("workdir", t.TempDir())
	viper.Set("base_branch", "develop")
	viper.Set("anthropic.api_key", "sk-test")
	viper.Set("anthropic.model", "claude-sonnet-4-5-20250929")
	t.Cleanup(viper.Reset)
}

func TestLoadGenerate_Valid(t *testing.T) {
	setCommon(t)
	viper.Set("agent.token", "ghp-agent")
	viper.Set("agent.kind", "backend")
	viper.Set("issue.number", 42)
	viper.Set("issue.title", "Add logging")
	viper.Set("issue.body", "details")

	cfg, err := LoadGenerate()
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", cfg.Repo)
	assert.Equal(t, "develop", cfg.BaseBranch)
	assert.Equal(t, 42, cfg.IssueNumber)
	assert.Equal(t, "Add logging", cfg.IssueTitle)
}

func TestLoadGenerate_MissingKeysListedTogether(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("repo", "acme/widgets")

	_, err := LoadGenerate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing required configuration")
	assert.ErrorContains(t, err, "anthropic.api_key")
	assert.ErrorContains(t, err, "agent.token")
	assert.ErrorContains(t, err, "issue.number")
	assert.ErrorContains(t, err, "issue.title")
	assert.NotContains(t, err.Error(), "issue.body", "issue body is optional")
}

func TestLoadReview_Valid(t *testing.T) {
	setCommon(t)
	viper.Set("reviewer.token", "ghp-reviewer")
	viper.Set("pr.number", 101)
	viper.Set("review.base_sha", "abc")
	viper.Set("review.head_sha", "def")

	cfg, err := LoadReview()
	require.NoError(t, err)
	assert.Equal(t, 101, cfg.PRNumber)
	assert.Equal(t, "abc", cfg.BaseSHA)
	assert.Equal(t, "def", cfg.HeadSHA)
}

func TestLoadReview_MissingSHAs(t *testing.T) {
	setCommon(t)
	viper.Set("reviewer.token", "ghp-reviewer")
	viper.Set("pr.number", 101)

	_, err := LoadReview()
	require.Error(t, err)
	assert.ErrorContains(t, err, "review.base_sha")
	assert.ErrorContains(t, err, "review.head_sha")
}

func TestLoadFix_Valid(t *testing.T) {
	setCommon(t)
	viper.Set("agent.token", "ghp-agent")
	viper.Set("pr.number", 101)
	viper.Set("pr.branch", "feature/backend/42-x")
	viper.Set("fix.max_attempts", 5)

	cfg, err := LoadFix()
	require.NoError(t, err)
	assert.Equal(t, "feature/backend/42-x", cfg.PRBranch)
	assert.Equal(t, 5, cfg.MaxAttempts)
}

func TestLoadFix_MaxAttemptsDefault(t *testing.T) {
	setCommon(t)
	viper.Set("agent.token", "ghp-agent")
	viper.Set("pr.number", 101)
	viper.Set("pr.branch", "feature/backend/42-x")

	cfg, err := LoadFix()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxAttempts)
}
