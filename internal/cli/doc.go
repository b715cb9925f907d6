// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the voxtable command line.
//
// # Commands
//
//   - run: Start a dictation session (the default)
//   - templates: List table templates
//   - history: Browse the session journal
//   - config: Show, get and set configuration values
//   - version: Print version information
//
// # Global Flags
//
//   - --config, -c: Configuration file
//   - --verbose, -v: Log progress to stderr
//   - --json: Machine-readable output
//
// # Exit Codes
//
// Errors are mapped to exit codes by GetExitCode: 2 for usage errors, 3 for
// configuration errors, 5 when the speech server is unreachable, 7 when a
// session is not found and 130 when interrupted.
package cli
