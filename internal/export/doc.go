// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes finished tables to flat files.
//
// # Supported Formats
//
//   - CSV: comma-separated, RFC 4180 quoting (default)
//   - TSV: tab-separated
//   - JSON: array of row objects keyed by column
//   - Markdown: pipe table with YAML frontmatter
//   - HTML: standalone page with embedded CSS, light/dark theme
//
// # Usage
//
//	exp, err := export.ForFormat("csv", opts)
//	path, err := export.ExportToFile(doc, exp, "", opts)
//
// Files are written atomically and named after the table unless a file name
// is given.
package export
