package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "service:\n  name: test-gate\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-gate", cfg.Service.Name)
	assert.Equal(t, "info", cfg.Service.LogLevel)
	assert.Equal(t, "json", cfg.Service.LogFormat)
	assert.Equal(t, "./resources/definition.md", cfg.Definition.Path)
	assert.False(t, cfg.API.Enabled)
	assert.Empty(t, cfg.Tasks.AllowedCommands)
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "service:\n  log_level: debug\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Service.LogLevel)
}

func TestLoad_AllowedCommands(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
tasks:
  allowed_commands: [python, git]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "git"}, cfg.Tasks.AllowedCommands)
}

func TestLoad_EnvInterpolation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKGATE_TEST_KEY", "sekrit")
	path := writeConfig(t, dir, `
api:
  enabled: true
  listen: "127.0.0.1:9999"
  auth:
    api_key: ${TASKGATE_TEST_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sekrit", cfg.API.Auth.APIKey)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "bad log level",
			content: "service:\n  log_level: loud\n",
			wantMsg: "log_level",
		},
		{
			name:    "bad log format",
			content: "service:\n  log_format: xml\n",
			wantMsg: "log_format",
		},
		{
			name:    "allow-list entry is a path",
			content: "tasks:\n  allowed_commands: [/usr/bin/git]\n",
			wantMsg: "bare command name",
		},
		{
			name:    "unresolved api key env var",
			content: "api:\n  enabled: true\n  listen: \"127.0.0.1:1\"\n  auth:\n    api_key: ${TASKGATE_UNSET_VAR}\n",
			wantMsg: "TASKGATE_UNSET_VAR",
		},
		{
			name:    "token without scopes",
			content: "api:\n  enabled: true\n  listen: \"127.0.0.1:1\"\n  auth:\n    tokens:\n      - token: abc\n",
			wantMsg: "scopes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeConfig(t, dir, tt.content)

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
