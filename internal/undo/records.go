// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package undo records the inverse of every grid mutation and replays it.
package undo

import (
	"fmt"

	"github.com/jeranaias/voxtable/internal/grid"
)

// =============================================================================
// OPERATION RECORDS
// =============================================================================

// Record is the stored inverse of one committed mutation. The set of
// implementations is closed: Create, SetCell, AdvanceRow, DeleteRow and
// InsertRow.
type Record interface {
	// Kind names the record for logs and the journal.
	Kind() string
	record()
}

// Create replaced the active table. Previous is nil when no table existed.
type Create struct {
	Previous *grid.Table
}

// SetCell overwrote one cell.
type SetCell struct {
	Row      int
	Col      int
	Previous string
}

// AdvanceRow moved the cursor to the next row.
type AdvanceRow struct {
	grid.Advance
}

// DeleteRow removed a row.
type DeleteRow struct {
	grid.Deletion
}

// InsertRow inserted a placeholder row.
type InsertRow struct {
	Row int
}

func (Create) Kind() string     { return "create" }
func (SetCell) Kind() string    { return "set_cell" }
func (AdvanceRow) Kind() string { return "advance_row" }
func (DeleteRow) Kind() string  { return "delete_row" }
func (InsertRow) Kind() string  { return "insert_row" }

func (Create) record()     {}
func (SetCell) record()    {}
func (AdvanceRow) record() {}
func (DeleteRow) record()  {}
func (InsertRow) record()  {}

// String implements fmt.Stringer for log output.
func (r SetCell) String() string {
	return fmt.Sprintf("set_cell(row=%d col=%d prev=%q)", r.Row+1, r.Col+1, r.Previous)
}

// =============================================================================
// STACK
// =============================================================================

// Stack is a LIFO of records.
type Stack struct {
	records []Record
}

// Push adds a record on top.
func (s *Stack) Push(r Record) {
	s.records = append(s.records, r)
}

// Pop removes and returns the top record.
func (s *Stack) Pop() (Record, bool) {
	if len(s.records) == 0 {
		return nil, false
	}
	last := len(s.records) - 1
	r := s.records[last]
	s.records[last] = nil
	s.records = s.records[:last]
	return r, true
}

// Peek returns the top record without removing it.
func (s *Stack) Peek() (Record, bool) {
	if len(s.records) == 0 {
		return nil, false
	}
	return s.records[len(s.records)-1], true
}

// Len returns the number of records.
func (s *Stack) Len() int { return len(s.records) }

// Clear drops every record.
func (s *Stack) Clear() {
	clear(s.records)
	s.records = s.records[:0]
}
