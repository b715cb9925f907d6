// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 1, 14, 5, 9, 0, time.UTC)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "voxtable_20250301_140509.log", FileName(fixedNow()))
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_TeeWritesFileAndConsole(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	l, err := New(Options{Dir: dir, Level: "info", Console: &console, Now: fixedNow})
	require.NoError(t, err)

	l.Info("table created", zap.String("table", "scores"))
	l.Warn("column not found", zap.String("column", "age"))
	require.NoError(t, l.Close())

	assert.Equal(t, filepath.Join(dir, "voxtable_20250301_140509.log"), l.Path())
	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "table created", first["msg"])
	assert.Equal(t, "scores", first["table"])

	// Console only carries warnings unless verbose.
	assert.NotContains(t, console.String(), "table created")
	assert.Contains(t, console.String(), "column not found")
}

func TestNew_VerboseConsole(t *testing.T) {
	var console bytes.Buffer
	l, err := New(Options{Verbose: true, Console: &console})
	require.NoError(t, err)

	l.Info("listening")
	require.NoError(t, l.Close())

	assert.Empty(t, l.Path())
	assert.Contains(t, console.String(), "listening")
}

func TestNew_RejectsBadLevel(t *testing.T) {
	_, err := New(Options{Dir: t.TempDir(), Level: "loud", Console: &bytes.Buffer{}})
	assert.Error(t, err)
}
