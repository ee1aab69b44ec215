// Package config builds the explicit, validated configuration each pipeline
// component receives. Required values are checked eagerly at load time and
// missing keys fail fast with one descriptive error, before any side effect.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Common holds settings shared by every pipeline component.
type Common struct {
	Repo            string // "owner/repo"
	WorkDir         string // the working tree the triggering automation checked out
	BaseBranch      string // the fixed integration branch
	AnthropicAPIKey string
	Model           string
	DBPath          string // run ledger database
}

// Generate configures the Change Generator.
type Generate struct {
	Common
	AgentToken  string
	AgentKind   string // branch namespace: feature/<kind>/...
	AgentName   string // commit identity
	AgentEmail  string
	IssueNumber int
	IssueTitle  string
	IssueBody   string
}

// Review configures the Diff Reviewer.
type Review struct {
	Common
	ReviewerToken string
	PRNumber      int
	BaseSHA       string
	HeadSHA       string
}

// Fix configures the Self-Healing Fixer.
type Fix struct {
	Common
	AgentToken  string
	AgentName   string
	AgentEmail  string
	PRNumber    int
	PRBranch    string
	MaxAttempts int
}

// missing accumulates absent required keys so one error names them all.
type missing []string

func (m *missing) require(key, val string) string {
	if val == "" {
		*m = append(*m, key)
	}
	return val
}

func (m *missing) requireInt(key string, val int) int {
	if val <= 0 {
		*m = append(*m, key)
	}
	return val
}

func (m missing) err() error {
	if len(m) == 0 {
		return nil
	}
	return fmt.Errorf("missing required configuration: %s (set via config file, flags, or AUTODEV_* env)",
		strings.Join(m, ", "))
}

func loadCommon(m *missing) Common {
	return Common{
		Repo:            m.require("repo", viper.GetString("repo")),
		WorkDir:         viper.GetString("workdir"),
		BaseBranch:      viper.GetString("base_branch"),
		AnthropicAPIKey: m.require("anthropic.api_key", viper.GetString("anthropic.api_key")),
		Model:           viper.GetString("anthropic.model"),
		DBPath:          viper.GetString("db_path"),
	}
}

// LoadGenerate reads and validates the Change Generator configuration.
func LoadGenerate() (*Generate, error) {
	var m missing
	cfg := &Generate{
		Common:      loadCommon(&m),
		AgentToken:  m.require("agent.token", viper.GetString("agent.token")),
		AgentKind:   viper.GetString("agent.kind"),
		AgentName:   viper.GetString("agent.name"),
		AgentEmail:  viper.GetString("agent.email"),
		IssueNumber: m.requireInt("issue.number", viper.GetInt("issue.number")),
		IssueTitle:  m.require("issue.title", viper.GetString("issue.title")),
		IssueBody:   viper.GetString("issue.body"),
	}
	if err := m.err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadReview reads and validates the Diff Reviewer configuration.
func LoadReview() (*Review, error) {
	var m missing
	cfg := &Review{
		Common:        loadCommon(&m),
		ReviewerToken: m.require("reviewer.token", viper.GetString("reviewer.token")),
		PRNumber:      m.requireInt("pr.number", viper.GetInt("pr.number")),
		BaseSHA:       m.require("review.base_sha", viper.GetString("review.base_sha")),
		HeadSHA:       m.require("review.head_sha", viper.GetString("review.head_sha")),
	}
	if err := m.err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFix reads and validates the Self-Healing Fixer configuration.
func LoadFix() (*Fix, error) {
	var m missing
	cfg := &Fix{
		Common:      loadCommon(&m),
		AgentToken:  m.require("agent.token", viper.GetString("agent.token")),
		AgentName:   viper.GetString("agent.name"),
		AgentEmail:  viper.GetString("agent.email"),
		PRNumber:    m.requireInt("pr.number", viper.GetInt("pr.number")),
		PRBranch:    m.require("pr.branch", viper.GetString("pr.branch")),
		MaxAttempts: viper.GetInt("fix.max_attempts"),
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if err := m.err(); err != nil {
		return nil, err
	}
	return cfg, nil
}
