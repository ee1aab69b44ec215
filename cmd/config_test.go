package cmd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/autodev/internal/output"
)

// testEnv sets up isolated config dir, viper, and output for testing.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	origFunc := configDirFunc
	configDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { configDirFunc = origFunc })

	viper.Reset()
	viper.SetDefault("workdir", ".")
	viper.SetDefault("base_branch", "develop")
	viper.SetDefault("db_path", filepath.Join(dir, "autodev.db"))
	viper.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("agent.kind", "backend")
	viper.SetDefault("agent.name", "autodev-bot")
	viper.SetDefault("agent.email", "autodev-bot@users.noreply.github.com")
	viper.SetDefault("fix.max_attempts", 3)

	ui = &output.UI{Out: io.Discard, ErrOut: io.Discard}

	return dir
}

func TestConfigInit_CreatesFile(t *testing.T) {
	dir := testEnv(t)

	configForce = false
	err := configInitRun()
	require.NoError(t, err)

	cfgPath := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "autodev configuration")
	assert.Contains(t, string(data), "base_branch: \"develop\"")
	assert.Contains(t, string(data), "max_attempts: 3")
	assert.NotContains(t, string(data), "api_key:", "secrets never land in the config file")
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	dir := testEnv(t)

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("existing"), 0644))

	configForce = false
	err := configInitRun()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestConfigInit_ForceOverwrite(t *testing.T) {
	dir := testEnv(t)

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("existing"), 0644))

	configForce = true
	err := configInitRun()
	require.NoError(t, err)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "autodev configuration")
}

func TestConfigShow_NoFile(t *testing.T) {
	testEnv(t)
	assert.NoError(t, configShowRun())
}

func TestConfigShow_WithFile(t *testing.T) {
	testEnv(t)
	configForce = false
	require.NoError(t, configInitRun())
	assert.NoError(t, configShowRun())
}

func TestConfigEdit_NoEditor(t *testing.T) {
	testEnv(t)

	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")
	_ = os.Unsetenv("EDITOR")
	_ = os.Unsetenv("VISUAL")

	err := configEditRun()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "$EDITOR is not set")
}

func TestDetectSource(t *testing.T) {
	fileValues := map[string]bool{"base_branch": true}

	assert.Equal(t, "(file)", detectSource("base_branch", "AUTODEV_BASE_BRANCH", fileValues))
	assert.Equal(t, "(default)", detectSource("workdir", "AUTODEV_WORKDIR", fileValues))

	t.Setenv("AUTODEV_REPO", "acme/widgets")
	assert.Equal(t, "(env: AUTODEV_REPO)", detectSource("repo", "AUTODEV_REPO", fileValues))
}

func TestFlattenKeys(t *testing.T) {
	parsed := map[string]any{
		"base_branch": "develop",
		"agent": map[string]any{
			"kind": "backend",
		},
	}
	result := make(map[string]bool)
	flattenKeys("", parsed, result)

	assert.True(t, result["base_branch"])
	assert.True(t, result["agent.kind"])
	assert.False(t, result["agent"])
}
