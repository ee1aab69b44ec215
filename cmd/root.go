package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/autodev/internal/models"
	"github.com/joescharf/autodev/internal/output"
	"github.com/joescharf/autodev/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	runLedger store.Store

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "autodev",
	Short: "Autonomous change pipeline - generate, review, and fix pull requests",
	Long: `autodev runs an autonomous software-change pipeline against a GitHub
repository. It turns labeled issues into pull requests, reviews the
resulting diffs, and pushes bounded follow-up fixes when a review
requests changes. Each subcommand is one pipeline stage, designed to
run inside CI on issue and pull-request events.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/autodev/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "autodev")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("AUTODEV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "autodev")

	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "autodev.db"))
	viper.SetDefault("workdir", ".")
	viper.SetDefault("base_branch", "develop")
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("agent.kind", "backend")
	viper.SetDefault("agent.name", "autodev-bot")
	viper.SetDefault("agent.email", "autodev-bot@users.noreply.github.com")
	viper.SetDefault("fix.max_attempts", 3)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose

	// The ledger is opened lazily so config/version commands run without a db.
}

// getStore returns the shared run ledger, initializing it on first call.
func getStore() (store.Store, error) {
	if runLedger != nil {
		return runLedger, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	runLedger = s
	return runLedger, nil
}

// recordRun appends a ledger record. Recording is strictly observational, so
// any failure is a warning and never fails the pipeline stage itself.
func recordRun(cmd *cobra.Command, run *models.PipelineRun) {
	run.FinishedAt = time.Now().UTC()
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt
	}

	s, err := getStore()
	if err != nil {
		ui.Warning("Run ledger unavailable: %v", err)
		return
	}
	if err := s.CreateRun(cmd.Context(), run); err != nil {
		ui.Warning("Could not record run: %v", err)
	}
}
