// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// =============================================================================
// DELIMITED EXPORTER
// =============================================================================

// DelimitedExporter writes one record per line with a field separator.
// Quoting follows RFC 4180.
type DelimitedExporter struct {
	options   *Options
	comma     rune
	extension string
	mimeType  string
}

// NewCSVExporter creates a comma-separated exporter.
func NewCSVExporter(opts *Options) *DelimitedExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &DelimitedExporter{options: opts, comma: ',', extension: ".csv", mimeType: "text/csv"}
}

// NewTSVExporter creates a tab-separated exporter.
func NewTSVExporter(opts *Options) *DelimitedExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &DelimitedExporter{options: opts, comma: '\t', extension: ".tsv", mimeType: "text/tab-separated-values"}
}

// Export writes the header row followed by the data rows.
func (e *DelimitedExporter) Export(doc *Document) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = e.comma
	if err := w.WriteAll(doc.Records); err != nil {
		return nil, fmt.Errorf("write %s: %w", e.extension, err)
	}
	return buf.Bytes(), nil
}

// FileExtension returns the file extension.
func (e *DelimitedExporter) FileExtension() string {
	return e.extension
}

// MimeType returns the MIME type.
func (e *DelimitedExporter) MimeType() string {
	return e.mimeType
}
