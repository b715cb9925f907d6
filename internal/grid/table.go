// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package grid provides the cursor-addressed table edited by voice commands.
package grid

import (
	"fmt"
	"slices"
)

// Placeholder marks a cell nobody has written yet.
const Placeholder = "_"

// =============================================================================
// POSITION TYPES
// =============================================================================

// Position is a (row, col) pair. Both are 0-based.
type Position struct {
	Row int
	Col int
}

// Advance describes a row advance that already happened.
// Row and Col hold the cursor as it was before the advance.
type Advance struct {
	Row      int
	Col      int
	Appended bool // a new open row was appended by this advance
}

// Deletion describes a removed row so it can be put back.
type Deletion struct {
	Row         int
	Snapshot    []string
	Cursor      Position // cursor before the deletion
	Synthesized bool     // a fresh open row was created to keep the grid non-empty
	RowsAfter   int      // row count right after the deletion
}

// =============================================================================
// TABLE
// =============================================================================

// Table owns headers, rows and the write cursor.
//
// Invariants:
//   - rows is never empty; the trailing row is the open row
//   - every row has exactly len(headers) cells
//   - 0 <= cursor.Row < len(rows), 0 <= cursor.Col <= len(headers)
//
// Table is not safe for concurrent use; the session loop is its only user.
type Table struct {
	name     string
	headers  []string
	rows     [][]string
	cursor   Position
	previous *Position

	// pruned counts blank trailing rows removed by PruneTrailing. Inverse
	// operations recorded before a prune put them back on demand.
	pruned int
}

// New creates a table with one open row and the cursor at (0, 0).
func New(name string, headers []string) (*Table, error) {
	if name == "" {
		return nil, &UsageError{Command: "create table", Reason: "table name is empty"}
	}
	if len(headers) == 0 {
		return nil, &UsageError{Command: "create table", Reason: "at least one column is required"}
	}
	t := &Table{
		name:    name,
		headers: slices.Clone(headers),
	}
	t.rows = [][]string{t.blankRow()}
	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Headers returns a copy of the column headers.
func (t *Table) Headers() []string { return slices.Clone(t.headers) }

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.headers) }

// RowCount returns the number of rows, including the open row.
func (t *Table) RowCount() int { return len(t.rows) }

// Cursor returns the current write position.
func (t *Table) Cursor() Position { return t.cursor }

// PreviousPosition returns the cursor saved by the last explicit reposition.
func (t *Table) PreviousPosition() (Position, bool) {
	if t.previous == nil {
		return Position{}, false
	}
	return *t.previous, true
}

// Row returns a copy of the given row.
func (t *Table) Row(row int) ([]string, error) {
	if row < 0 || row >= len(t.rows) {
		return nil, &RangeError{Axis: "row", Index: row, Limit: len(t.rows)}
	}
	return slices.Clone(t.rows[row]), nil
}

// Cell returns the value stored at (row, col).
func (t *Table) Cell(row, col int) (string, error) {
	if err := t.checkCell(row, col); err != nil {
		return "", err
	}
	return t.rows[row][col], nil
}

// ColumnIndex returns the index of the first header equal to name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i := slices.Index(t.headers, name)
	return i, i >= 0
}

// RowFull reports whether the cursor sits past the last column.
func (t *Table) RowFull() bool { return t.cursor.Col >= len(t.headers) }

// =============================================================================
// CURSOR-RELATIVE MUTATION
// =============================================================================

// SetCurrentValue writes value at the cursor and moves one column right.
// When the write fills the row an automatic advance fires; it is returned so
// the caller can record it as a separate step. Returns ErrRowFull when the
// cursor is already past the last column.
func (t *Table) SetCurrentValue(value string) (*Advance, error) {
	if t.RowFull() {
		return nil, ErrRowFull
	}
	t.rows[t.cursor.Row][t.cursor.Col] = value
	t.cursor.Col++
	if t.cursor.Col < len(t.headers) {
		return nil, nil
	}
	adv := t.AdvanceRow()
	return &adv, nil
}

// AdvanceRow moves the cursor to column 0 of the next row, appending a new
// open row when the cursor was on the last row. It always succeeds.
func (t *Table) AdvanceRow() Advance {
	adv := Advance{Row: t.cursor.Row, Col: t.cursor.Col}
	if t.cursor.Row+1 == len(t.rows) {
		t.rows = append(t.rows, t.blankRow())
		adv.Appended = true
	}
	t.cursor = Position{Row: t.cursor.Row + 1, Col: 0}
	return adv
}

// =============================================================================
// RANDOM-ACCESS MUTATION
// =============================================================================

// SetPosition moves the cursor to (row, col), remembering where it was.
func (t *Table) SetPosition(row, col int) error {
	if err := t.checkCell(row, col); err != nil {
		return err
	}
	prev := t.cursor
	t.previous = &prev
	t.cursor = Position{Row: row, Col: col}
	return nil
}

// ReturnToPrevious swaps the cursor with the previously saved position, so
// asking twice goes back and forth.
func (t *Table) ReturnToPrevious() error {
	if t.previous == nil {
		return &LookupError{Resource: "previous position", Key: "none saved"}
	}
	target := *t.previous
	if target.Row >= len(t.rows) {
		return &RangeError{Axis: "row", Index: target.Row, Limit: len(t.rows)}
	}
	prev := t.cursor
	t.previous = &prev
	t.cursor = target
	return nil
}

// DeleteRow removes a row. When the cursor would fall off the grid a fresh
// open row is synthesized and the cursor moves to its first column.
func (t *Table) DeleteRow(row int) (Deletion, error) {
	if row < 0 || row >= len(t.rows) {
		return Deletion{}, &RangeError{Axis: "row", Index: row, Limit: len(t.rows)}
	}
	d := Deletion{
		Row:      row,
		Snapshot: slices.Clone(t.rows[row]),
		Cursor:   t.cursor,
	}
	t.rows = slices.Delete(t.rows, row, row+1)
	if row < t.cursor.Row {
		t.cursor.Row--
	}
	if t.cursor.Row >= len(t.rows) {
		t.rows = append(t.rows, t.blankRow())
		t.cursor = Position{Row: len(t.rows) - 1, Col: 0}
		d.Synthesized = true
	}
	d.RowsAfter = len(t.rows)
	return d, nil
}

// InsertRow inserts a placeholder row before index row (row == RowCount
// appends). The cursor shifts down when the insertion is at or before it.
func (t *Table) InsertRow(row int) error {
	if row < 0 || row > len(t.rows) {
		return &RangeError{Axis: "row", Index: row, Limit: len(t.rows) + 1}
	}
	t.insertAt(row, t.blankRow())
	return nil
}

// =============================================================================
// INVERSE OPERATIONS
// =============================================================================

// RestoreCell writes a previous value back and puts the cursor on it.
func (t *Table) RestoreCell(row, col int, value string) error {
	if row >= 0 && col >= 0 && col < len(t.headers) && t.canRegrow(row+1) {
		t.regrow(row + 1)
	}
	if err := t.checkCell(row, col); err != nil {
		return err
	}
	t.rows[row][col] = value
	t.cursor = Position{Row: row, Col: col}
	return nil
}

// RevertAdvance undoes an advance: the cursor goes back, and the row the
// advance appended is dropped if nothing was written into it.
func (t *Table) RevertAdvance(a Advance) error {
	// A non-appending advance moved onto a row that already existed.
	need := a.Row + 1
	if !a.Appended {
		need++
	}
	if a.Row < 0 || a.Col < 0 || a.Col > len(t.headers) || !t.canRegrow(need) {
		return fmt.Errorf("revert advance to (%d, %d): %w", a.Row, a.Col,
			&RangeError{Axis: "row", Index: a.Row, Limit: len(t.rows)})
	}
	t.regrow(need)
	t.cursor = Position{Row: a.Row, Col: a.Col}
	last := len(t.rows) - 1
	if a.Appended && last > a.Row && isBlank(t.rows[last]) {
		t.rows = t.rows[:last]
	}
	return nil
}

// RestoreRow puts a deleted row back and restores the cursor it had.
func (t *Table) RestoreRow(d Deletion) error {
	if len(d.Snapshot) != len(t.headers) {
		return fmt.Errorf("restore row %d: snapshot has %d cells, table has %d columns",
			d.Row+1, len(d.Snapshot), len(t.headers))
	}
	n := max(len(t.rows), d.RowsAfter)
	if !t.canRegrow(n) {
		n = len(t.rows)
	}
	if d.Synthesized && n > 0 {
		n--
	}
	if d.Row < 0 || d.Row > n {
		return &RangeError{Axis: "row", Index: d.Row, Limit: n + 1}
	}
	if t.canRegrow(d.RowsAfter) {
		t.regrow(d.RowsAfter)
	}
	rows := t.rows
	if d.Synthesized && len(rows) > 0 {
		rows = rows[:len(rows)-1]
	}
	t.rows = slices.Insert(rows, d.Row, slices.Clone(d.Snapshot))
	t.cursor = d.Cursor
	if t.cursor.Row >= len(t.rows) {
		t.cursor = Position{Row: len(t.rows) - 1, Col: 0}
	}
	return nil
}

// RemoveInserted removes a row added by InsertRow, shifting the cursor back
// when the removal precedes it.
func (t *Table) RemoveInserted(row int) error {
	// The table had at least two rows right after the insertion.
	if need := max(row+1, 2); row >= 0 && t.canRegrow(need) {
		t.regrow(need)
	}
	if row < 0 || row >= len(t.rows) || len(t.rows) == 1 {
		return &RangeError{Axis: "row", Index: row, Limit: len(t.rows)}
	}
	t.rows = slices.Delete(t.rows, row, row+1)
	if row < t.cursor.Row {
		t.cursor.Row--
	}
	if t.cursor.Row >= len(t.rows) {
		t.cursor = Position{Row: len(t.rows) - 1, Col: 0}
	}
	return nil
}

// PruneTrailing drops a stray open row: the cursor is at column 0 of a blank
// trailing row and the row before it is blank as well. Reports whether a row
// was removed.
func (t *Table) PruneTrailing() bool {
	last := len(t.rows) - 1
	if last < 1 || t.cursor.Row != last || t.cursor.Col != 0 {
		return false
	}
	if !isBlank(t.rows[last]) || !isBlank(t.rows[last-1]) {
		return false
	}
	t.rows = t.rows[:last]
	t.cursor.Row--
	t.pruned++
	return true
}

// canRegrow reports whether n rows are available counting pruned ones.
func (t *Table) canRegrow(n int) bool {
	return n <= len(t.rows)+t.pruned
}

// regrow appends previously pruned blank rows until the table has n rows.
// Pruning only ever removes blank trailing rows, so this restores the shape
// the older records were taken against.
func (t *Table) regrow(n int) {
	for len(t.rows) < n && t.pruned > 0 {
		t.rows = append(t.rows, t.blankRow())
		t.pruned--
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (t *Table) blankRow() []string {
	row := make([]string, len(t.headers))
	for i := range row {
		row[i] = Placeholder
	}
	return row
}

func (t *Table) insertAt(row int, cells []string) {
	t.rows = slices.Insert(t.rows, row, cells)
	if row <= t.cursor.Row {
		t.cursor.Row++
	}
}

func (t *Table) checkCell(row, col int) error {
	if row < 0 || row >= len(t.rows) {
		return &RangeError{Axis: "row", Index: row, Limit: len(t.rows)}
	}
	if col < 0 || col >= len(t.headers) {
		return &RangeError{Axis: "column", Index: col, Limit: len(t.headers)}
	}
	return nil
}

// isBlank reports whether every cell of row is the placeholder.
func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != Placeholder {
			return false
		}
	}
	return true
}
