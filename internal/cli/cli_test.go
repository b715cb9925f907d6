// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/voxtable/internal/config"
	"github.com/jeranaias/voxtable/internal/storage"
)

// =============================================================================
// HELPERS
// =============================================================================

type workspace struct {
	dir     string
	outDir  string
	config  string
	journal string
}

// newWorkspace isolates HOME and the environment and writes a config file
// that keeps every output under a temp directory.
func newWorkspace(t *testing.T) *workspace {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("NO_COLOR", "1")
	for _, key := range []string{
		"VOXTABLE_LANG", "VOXTABLE_INPUT", "VOXTABLE_SCRIPT", "VOXTABLE_VOSK_URL",
		"VOXTABLE_EXPORT_DIR", "VOXTABLE_EXPORT_FORMAT", "VOXTABLE_LOG_LEVEL", "VOXTABLE_NO_JOURNAL",
	} {
		t.Setenv(key, "")
	}

	ws := &workspace{
		dir:     dir,
		outDir:  filepath.Join(dir, "out"),
		config:  filepath.Join(dir, "config.toml"),
		journal: filepath.Join(dir, "journal.db"),
	}
	require.NoError(t, os.MkdirAll(ws.outDir, 0755))

	content := fmt.Sprintf(`
[export]
dir = '%s'

[journal]
enabled = true
path = '%s'

[logging]
dir = '%s'

[session]
draft_path = '%s'
`, ws.outDir, ws.journal, filepath.Join(dir, "logs"), filepath.Join(dir, "draft.csv"))
	require.NoError(t, os.WriteFile(ws.config, []byte(content), 0600))
	return ws
}

func (ws *workspace) script(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(ws.dir, "script.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600))
	return path
}

// execute runs the command line and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

var scoresScript = []string{
	"# two players",
	"create table scores columns name score",
	"alice",
	"twenty eight",
	"bob",
	"thirty",
	"save",
	"exit",
}

// =============================================================================
// VERSION
// =============================================================================

func TestVersion(t *testing.T) {
	newWorkspace(t)

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "voxtable "+Version)

	out, _, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var resp struct {
		Success bool        `json:"success"`
		Data    VersionData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, Version, resp.Data.Version)
}

// =============================================================================
// RUN
// =============================================================================

func TestRun_Script(t *testing.T) {
	ws := newWorkspace(t)
	script := ws.script(t, scoresScript...)

	out, _, err := execute(t, "--config", ws.config, "run", "--script", script)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(ws.outDir, "scores.csv"))
	require.NoError(t, err)
	assert.Equal(t, "name,score\nalice,28\nbob,30\n", string(data))

	assert.Contains(t, out, "> create table scores columns name score")
	assert.Contains(t, out, "Created table scores")
	assert.Contains(t, out, "Saved "+filepath.Join(ws.outDir, "scores.csv"))

	entries, err := os.ReadDir(filepath.Join(ws.dir, "logs"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "one log file per run")
}

func TestRun_RootDefaultsToRun(t *testing.T) {
	ws := newWorkspace(t)
	script := ws.script(t, scoresScript...)

	_, _, err := execute(t, "--config", ws.config, "--script", script, "--format", "markdown")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(ws.outDir, "scores.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "| alice | 28 |")
}

func TestRun_FlagsAreValidated(t *testing.T) {
	ws := newWorkspace(t)
	script := ws.script(t, "exit")

	_, _, err := execute(t, "--config", ws.config, "run", "--script", script, "--format", "xlsx")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	_, _, err = execute(t, "--config", ws.config, "run", "--input", "script")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input.script_path")
}

func TestRun_MissingConfigFile(t *testing.T) {
	newWorkspace(t)
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "run")
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

// =============================================================================
// HISTORY
// =============================================================================

func TestHistory(t *testing.T) {
	ws := newWorkspace(t)
	script := ws.script(t, scoresScript...)
	_, _, err := execute(t, "--config", ws.config, "run", "--script", script)
	require.NoError(t, err)

	out, _, err := execute(t, "--config", ws.config, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Sessions:")
	assert.Contains(t, out, "script")

	out, _, err = execute(t, "--config", ws.config, "history", "--json")
	require.NoError(t, err)
	var list struct {
		Data []SessionData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Data, 1)
	s := list.Data[0]
	assert.Equal(t, 7, s.Utterances)
	assert.Equal(t, 7, s.Applied)
	assert.Equal(t, 1, s.Saved)
	assert.NotNil(t, s.EndedAt)

	out, _, err = execute(t, "--config", ws.config, "history", s.ID[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "Session "+s.ID)
	assert.Contains(t, out, "create table scores columns name score")
	assert.Contains(t, out, "Saved tables")
	assert.Contains(t, out, "columns: name, score")

	_, _, err = execute(t, "--config", ws.config, "history", "zzzz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrSessionNotFound))
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestHistory_JournalDisabled(t *testing.T) {
	ws := newWorkspace(t)
	t.Setenv("VOXTABLE_NO_JOURNAL", "1")

	_, _, err := execute(t, "--config", ws.config, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal is disabled")
}

// =============================================================================
// TEMPLATES
// =============================================================================

func TestTemplates(t *testing.T) {
	ws := newWorkspace(t)

	out, _, err := execute(t, "--config", ws.config, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "tournament")
	assert.Contains(t, out, "surname, name, team, score")

	out, _, err = execute(t, "--config", ws.config, "templates", "--lang", "ru")
	require.NoError(t, err)
	assert.Contains(t, out, "турнир")

	out, _, err = execute(t, "--config", ws.config, "templates", "--json")
	require.NoError(t, err)
	var resp struct {
		Data []TemplateData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Data)
	assert.Equal(t, 1, resp.Data[0].ID)
}

func TestTemplates_FromFile(t *testing.T) {
	ws := newWorkspace(t)
	file := filepath.Join(ws.dir, "templates.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`templates:
  - id: 7
    name: laps
    headers: [driver, lap, time]
`), 0600))
	_, _, err := execute(t, "--config", ws.config, "config", "set", "templates.file", file)
	require.NoError(t, err)

	out, _, err := execute(t, "--config", ws.config, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "laps")
	assert.NotContains(t, out, "tournament")
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfig_SetGet(t *testing.T) {
	ws := newWorkspace(t)

	out, _, err := execute(t, "--config", ws.config, "config", "set", "export.format", "md")
	require.NoError(t, err)
	assert.Contains(t, out, "export.format = markdown")

	out, _, err = execute(t, "--config", ws.config, "config", "get", "export.format")
	require.NoError(t, err)
	assert.Equal(t, "markdown\n", out)

	cfg, err := config.LoadFromPath(ws.config)
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.Export.Format)
	assert.Equal(t, ws.outDir, cfg.Export.Dir, "other keys survive a set")

	out, _, err = execute(t, "--config", ws.config, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, ws.config+"\n", out)

	out, _, err = execute(t, "--config", ws.config, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[export]")
	assert.Contains(t, out, "markdown")
}

func TestConfig_SetErrors(t *testing.T) {
	ws := newWorkspace(t)

	_, _, err := execute(t, "--config", ws.config, "config", "set", "export.colour", "red")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	_, _, err = execute(t, "--config", ws.config, "config", "set", "export.format", "xlsx")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	cfg, err := config.LoadFromPath(ws.config)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Export.Format, "a rejected value is not written")

	_, _, err = execute(t, "--config", ws.config, "config", "get")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// ERRORS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"cancelled", fmt.Errorf("listen: %w", context.Canceled), ExitInterrupted},
		{"validation", &ValidationError{Field: "key", Reason: "unknown"}, ExitUsageError},
		{"config", &ConfigError{Path: "x.toml", Err: errors.New("bad")}, ExitConfigError},
		{"not found", fmt.Errorf("session ab: %w", storage.ErrSessionNotFound), ExitNotFoundError},
		{"unknown command", errors.New(`unknown command "frobnicate" for "voxtable"`), ExitUsageError},
		{"vosk", errors.New("connect to vosk server ws://x: dial tcp: connection refused"), ExitNetworkError},
		{"other", errors.New("disk full"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, &ValidationError{Field: "key", Value: "x", Reason: "unknown key"}, false)
	assert.Contains(t, buf.String(), "[ERROR] invalid key: unknown key (got: x)")

	buf.Reset()
	DisplayError(&buf, &ConfigError{Path: "c.toml", Err: config.ValidateErrors{{Field: "language", Message: "bad"}}}, true)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "config_error", out["error_type"])
	assert.Equal(t, []interface{}{"language"}, out["fields"])
}

func TestUnknownCommand(t *testing.T) {
	newWorkspace(t)
	_, _, err := execute(t, "frobnicate")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}
