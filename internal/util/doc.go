// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across voxtable.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth, StringWidth, PadRight: display-width aware helpers
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	cell := util.TruncateWidth(value, 24)
//	err := util.AtomicWriteFile(path, data, 0644)
package util
