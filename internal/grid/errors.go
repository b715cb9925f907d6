// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package grid

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR KINDS
// =============================================================================
//
// Every kind is non-fatal. An operation that returns one of these leaves the
// table (and the undo stack) exactly as it was.

// ErrRowFull is returned by SetCurrentValue when the cursor already sits past
// the last column. The caller must advance the row first.
var ErrRowFull = errors.New("row is full")

// UsageError reports a malformed command: missing or misordered markers,
// missing arguments.
type UsageError struct {
	Command string // Command being interpreted (e.g., "create table")
	Reason  string // Human-readable reason
	Example string // Example of a valid utterance (optional)
}

func (e *UsageError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Command, e.Reason)
	if e.Example != "" {
		msg += fmt.Sprintf(" (example: %s)", e.Example)
	}
	return msg
}

// RangeError reports a row or column index outside the table.
type RangeError struct {
	Axis  string // "row" or "column"
	Index int    // 0-based index that was requested
	Limit int    // number of valid positions on that axis
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d is out of range (table has %d)", e.Axis, e.Index+1, e.Limit)
}

// LookupError reports an unknown template id, column name or similar key.
type LookupError struct {
	Resource string // Type of resource (e.g., "column", "template")
	Key      string // Identifier that was not found
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// EmptyHistoryError is returned by undo when there is nothing to undo.
type EmptyHistoryError struct{}

func (e *EmptyHistoryError) Error() string {
	return "nothing to undo"
}

// NoActiveTableError is returned by any table-mutating command issued before
// a table exists.
type NoActiveTableError struct {
	Action string
}

func (e *NoActiveTableError) Error() string {
	if e.Action == "" {
		return "no active table; create a table first"
	}
	return fmt.Sprintf("cannot %s: no active table; create a table first", e.Action)
}

// =============================================================================
// HELPERS
// =============================================================================

// IsUsage reports whether err is (or wraps) a UsageError.
func IsUsage(err error) bool {
	var target *UsageError
	return errors.As(err, &target)
}

// IsRange reports whether err is (or wraps) a RangeError.
func IsRange(err error) bool {
	var target *RangeError
	return errors.As(err, &target)
}

// IsLookup reports whether err is (or wraps) a LookupError.
func IsLookup(err error) bool {
	var target *LookupError
	return errors.As(err, &target)
}

// IsEmptyHistory reports whether err is (or wraps) an EmptyHistoryError.
func IsEmptyHistory(err error) bool {
	var target *EmptyHistoryError
	return errors.As(err, &target)
}

// IsNoActiveTable reports whether err is (or wraps) a NoActiveTableError.
func IsNoActiveTable(err error) bool {
	var target *NoActiveTableError
	return errors.As(err, &target)
}
