// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/voxtable/internal/util"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports tables as an array of row objects keyed by header.
// Repeated headers get a numeric suffix so no cell is lost.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonDocument struct {
	Table     string              `json:"table"`
	Columns   []string            `json:"columns"`
	Rows      []map[string]string `json:"rows"`
	Session   string              `json:"session,omitempty"`
	CreatedAt *time.Time          `json:"created_at,omitempty"`
}

// Export converts a document to JSON.
func (e *JSONExporter) Export(doc *Document) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}

	keys := uniqueKeys(doc.Headers())
	out := jsonDocument{
		Table:   doc.Name,
		Columns: keys,
		Rows:    make([]map[string]string, 0, len(doc.Rows())),
	}
	for _, row := range doc.Rows() {
		obj := make(map[string]string, len(keys))
		for i, key := range keys {
			if i < len(row) {
				obj[key] = row[i]
			}
		}
		out.Rows = append(out.Rows, obj)
	}
	if e.options.IncludeMetadata {
		out.Session = doc.SessionID
		if !doc.CreatedAt.IsZero() {
			created := doc.CreatedAt
			out.CreatedAt = &created
		}
	}

	return json.MarshalIndent(out, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}

// uniqueKeys suffixes repeated headers: [a a b] -> [a a_2 b].
func uniqueKeys(headers []string) []string {
	keys := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		seen[h]++
		if n := seen[h]; n > 1 {
			keys[i] = h + "_" + util.IntToString(n)
			continue
		}
		keys[i] = h
	}
	return keys
}
