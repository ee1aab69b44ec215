package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "autodev"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage autodev configuration.

Running bare 'autodev config' is the same as 'autodev config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
// Secrets (tokens, API keys) are intentionally absent; they come from env.
const configTemplate = `# autodev configuration
# See: autodev config show (for effective values and sources)

# Repository to operate on, "owner/repo"
# repo: "acme/widgets"

# Local checkout the pipeline operates in (default: current directory)
# workdir: {{ .WorkDir }}

# Integration branch PRs target (default: develop)
base_branch: "{{ .BaseBranch }}"

# SQLite run ledger path (default: ~/.config/autodev/autodev.db)
# db_path: {{ .DBPath }}

anthropic:
  # Model used for generation, review, and fixes
  model: "{{ .Model }}"
  # api_key comes from AUTODEV_ANTHROPIC_API_KEY, never this file

# Agent identity for branches and commits
agent:
  kind: "{{ .AgentKind }}"
  name: "{{ .AgentName }}"
  email: "{{ .AgentEmail }}"

fix:
  # Maximum automated fix commits per PR branch before escalating
  max_attempts: {{ .FixMaxAttempts }}
`

type configTemplateData struct {
	WorkDir        string
	BaseBranch     string
	DBPath         string
	Model          string
	AgentKind      string
	AgentName      string
	AgentEmail     string
	FixMaxAttempts int
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	data := configTemplateData{
		WorkDir:        viper.GetString("workdir"),
		BaseBranch:     viper.GetString("base_branch"),
		DBPath:         viper.GetString("db_path"),
		Model:          viper.GetString("anthropic.model"),
		AgentKind:      viper.GetString("agent.kind"),
		AgentName:      viper.GetString("agent.name"),
		AgentEmail:     viper.GetString("agent.email"),
		FixMaxAttempts: viper.GetInt("fix.max_attempts"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
	Secret bool
}

var configKeys = []configKeyInfo{
	{Key: "repo", EnvVar: "AUTODEV_REPO"},
	{Key: "workdir", EnvVar: "AUTODEV_WORKDIR"},
	{Key: "base_branch", EnvVar: "AUTODEV_BASE_BRANCH"},
	{Key: "db_path", EnvVar: "AUTODEV_DB_PATH"},
	{Key: "anthropic.api_key", EnvVar: "AUTODEV_ANTHROPIC_API_KEY", Secret: true},
	{Key: "anthropic.model", EnvVar: "AUTODEV_ANTHROPIC_MODEL"},
	{Key: "agent.token", EnvVar: "AUTODEV_AGENT_TOKEN", Secret: true},
	{Key: "agent.kind", EnvVar: "AUTODEV_AGENT_KIND"},
	{Key: "agent.name", EnvVar: "AUTODEV_AGENT_NAME"},
	{Key: "agent.email", EnvVar: "AUTODEV_AGENT_EMAIL"},
	{Key: "reviewer.token", EnvVar: "AUTODEV_REVIEWER_TOKEN", Secret: true},
	{Key: "fix.max_attempts", EnvVar: "AUTODEV_FIX_MAX_ATTEMPTS"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		if k.Secret && viper.GetString(k.Key) != "" {
			val = "(set)"
		}
		source := detectSource(k.Key, k.EnvVar, fileValues)
		fmt.Fprintf(ui.Out, "  %-22s %v  %s\n", k.Key, val, source)
	}

	return nil
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set, set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'autodev config init' first)", cfgPath)
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
