// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoresDoc() *Document {
	return &Document{
		Name: "scores",
		Records: [][]string{
			{"name", "score"},
			{"alice", "28"},
			{"bob, jr", "31,5"},
		},
		SessionID: "3f2b7c1e-0000-4000-8000-000000000001",
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestDelimitedExporters(t *testing.T) {
	csvOut, err := NewCSVExporter(nil).Export(scoresDoc())
	require.NoError(t, err)
	assert.Equal(t, "name,score\nalice,28\n\"bob, jr\",\"31,5\"\n", string(csvOut))

	tsvOut, err := NewTSVExporter(nil).Export(scoresDoc())
	require.NoError(t, err)
	assert.Equal(t, "name\tscore\nalice\t28\nbob, jr\t31,5\n", string(tsvOut))
}

func TestExport_HeaderOnly(t *testing.T) {
	doc := &Document{Name: "empty", Records: [][]string{{"a", "b"}}}
	for _, format := range Formats() {
		exp, err := ForFormat(format, nil)
		require.NoError(t, err)
		_, err = exp.Export(doc)
		assert.NoError(t, err, format)
	}
}

func TestExport_RejectsMissingHeader(t *testing.T) {
	for _, format := range Formats() {
		exp, err := ForFormat(format, nil)
		require.NoError(t, err)
		_, err = exp.Export(&Document{Name: "x"})
		assert.Error(t, err, format)
		_, err = exp.Export(nil)
		assert.Error(t, err, format)
	}
}

func TestJSONExporter(t *testing.T) {
	doc := scoresDoc()
	doc.Records[0] = []string{"name", "name"}

	out, err := NewJSONExporter(nil).Export(doc)
	require.NoError(t, err)

	var decoded struct {
		Table   string              `json:"table"`
		Columns []string            `json:"columns"`
		Rows    []map[string]string `json:"rows"`
		Session string              `json:"session"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "scores", decoded.Table)
	assert.Equal(t, []string{"name", "name_2"}, decoded.Columns)
	require.Len(t, decoded.Rows, 2)
	assert.Equal(t, "28", decoded.Rows[0]["name_2"])
	assert.Equal(t, doc.SessionID, decoded.Session)
}

func TestMarkdownExporter(t *testing.T) {
	doc := scoresDoc()
	doc.Records = append(doc.Records, []string{"pipe|name", "line\nbreak"})

	out, err := NewMarkdownExporter(nil).Export(doc)
	require.NoError(t, err)
	result := string(out)

	assert.True(t, strings.HasPrefix(result, "---\n"))
	assert.Contains(t, result, "title: scores\n")
	assert.Contains(t, result, "rows: 3\n")
	assert.Contains(t, result, "| name | score |\n| --- | --- |\n| alice | 28 |\n")
	assert.Contains(t, result, `| pipe\|name | line<br>break |`)

	plain := DefaultOptions()
	plain.IncludeMetadata = false
	out, err = NewMarkdownExporter(plain).Export(scoresDoc())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "# scores\n"))
}

// TestYAMLNewlineInjection checks that a table name cannot break out of the
// frontmatter block.
func TestYAMLNewlineInjection(t *testing.T) {
	doc := scoresDoc()
	doc.Name = "scores\n---\nevil: true"

	out, err := NewMarkdownExporter(nil).Export(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "\nevil: true\n")
}

func TestHTMLExporter_EscapesCells(t *testing.T) {
	doc := scoresDoc()
	doc.Records = append(doc.Records, []string{"<script>alert('xss')</script>", "1"})

	out, err := NewHTMLExporter(nil).Export(doc)
	require.NoError(t, err)
	result := string(out)

	assert.NotContains(t, result, "<script>alert")
	assert.Contains(t, result, "&lt;script&gt;")
	assert.Contains(t, result, `<body class="dark-theme">`)
	assert.Contains(t, result, "<th>score</th>")
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format string
		ext    string
	}{
		{"csv", ".csv"},
		{"CSV", ".csv"},
		{"tsv", ".tsv"},
		{"json", ".json"},
		{"md", ".md"},
		{"markdown", ".md"},
		{"html", ".html"},
	}
	for _, tc := range tests {
		exp, err := ForFormat(tc.format, nil)
		require.NoError(t, err, tc.format)
		assert.Equal(t, tc.ext, exp.FileExtension(), tc.format)
		assert.NotEmpty(t, exp.MimeType())
	}

	_, err := ForFormat("xlsx", nil)
	assert.Error(t, err)
}

func TestExportToFile(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputDir = filepath.Join(t.TempDir(), "out")

	path, err := ExportToFile(scoresDoc(), NewCSVExporter(opts), "", opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(opts.OutputDir, "scores.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "name,score\n"))

	// Caller-supplied names are sanitized and keep one extension.
	path, err = ExportToFile(scoresDoc(), NewCSVExporter(opts), "weekly/report.csv", opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(opts.OutputDir, "weekly-report.csv"), path)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"scores", "scores"},
		{"team scores", "team_scores"},
		{"a/b\\c:d", "a-b-c-d"},
		{"турнир", "турнир"},
		{"", "table"},
		{"..", "table"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, sanitizeFilename(tc.input), tc.input)
	}
}
