// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes finished tables to flat files.
// Supports CSV, TSV, JSON, Markdown and HTML.
package export

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/voxtable/internal/util"
)

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is a table ready for export: the header row followed by the data
// rows, plus the metadata some formats embed.
type Document struct {
	Name      string
	Records   [][]string
	SessionID string
	CreatedAt time.Time
}

// Headers returns the header row, or nil.
func (d *Document) Headers() []string {
	if len(d.Records) == 0 {
		return nil
	}
	return d.Records[0]
}

// Rows returns the data rows.
func (d *Document) Rows() [][]string {
	if len(d.Records) < 2 {
		return nil
	}
	return d.Records[1:]
}

func (d *Document) validate() error {
	if d == nil {
		return fmt.Errorf("document is nil")
	}
	if len(d.Headers()) == 0 {
		return fmt.Errorf("table %q has no header row", d.Name)
	}
	return nil
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for table exporters.
type Exporter interface {
	// Export converts a document to the target format and returns the content.
	Export(doc *Document) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".csv").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	// Default: current working directory
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeMetadata adds a metadata header (Markdown, HTML, JSON).
	IncludeMetadata bool

	// Theme for HTML export ("light" or "dark").
	// Default: "dark"
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		OpenAfterExport: false,
		IncludeMetadata: true,
		Theme:           "dark",
	}
}

// =============================================================================
// FORMATS
// =============================================================================

var formats = map[string]func(*Options) Exporter{
	"csv":      func(o *Options) Exporter { return NewCSVExporter(o) },
	"tsv":      func(o *Options) Exporter { return NewTSVExporter(o) },
	"json":     func(o *Options) Exporter { return NewJSONExporter(o) },
	"markdown": func(o *Options) Exporter { return NewMarkdownExporter(o) },
	"html":     func(o *Options) Exporter { return NewHTMLExporter(o) },
}

var formatAliases = map[string]string{
	"md":  "markdown",
	"htm": "html",
}

// Formats lists the supported format names.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForFormat returns the exporter for a format name.
func ForFormat(format string, opts *Options) (Exporter, error) {
	name := strings.ToLower(strings.TrimSpace(format))
	if alias, ok := formatAliases[name]; ok {
		name = alias
	}
	newExporter, ok := formats[name]
	if !ok {
		return nil, fmt.Errorf("unsupported export format: %s (supported: %s)", format, strings.Join(Formats(), ", "))
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	return newExporter(opts), nil
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports a document using the given exporter and writes it
// atomically to <OutputDir>/<fileName><ext>. An empty fileName falls back to
// the table name. Returns the output path.
func ExportToFile(doc *Document, exporter Exporter, fileName string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(doc)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if fileName == "" {
		fileName = doc.Name
	}
	fileName = strings.TrimSuffix(fileName, exporter.FileExtension())
	outputPath := filepath.Join(opts.OutputDir, sanitizeFilename(fileName)+exporter.FileExtension())

	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		if err := openFile(outputPath); err != nil {
			// Non-fatal - file was still created successfully
			return outputPath, fmt.Errorf("open %s: %w", outputPath, err)
		}
	}

	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	// Limit length
	maxLen := 50
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}

	// Replace problematic characters (Windows and Unix)
	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			// Replace control characters
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 || string(result) == "." || string(result) == ".." {
		return "table"
	}

	return string(result)
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
