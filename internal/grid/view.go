// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package grid

import "slices"

// =============================================================================
// READ-ONLY PROJECTIONS
// =============================================================================

// View is what the renderer needs to draw a table.
type View struct {
	Name    string
	Headers []string
	Rows    [][]string
	Cursor  Position

	// CursorColumn is the header under the cursor, empty when the row is full.
	CursorColumn string
}

// Render returns the display projection of the table.
func (t *Table) Render() View {
	v := View{
		Name:    t.name,
		Headers: slices.Clone(t.headers),
		Rows:    t.visibleRows(),
		Cursor:  t.cursor,
	}
	if !t.RowFull() {
		v.CursorColumn = t.headers[t.cursor.Col]
	}
	return v
}

// Export returns the header row followed by the data rows, using the same
// trailing-row rule as Render.
func (t *Table) Export() [][]string {
	rows := t.visibleRows()
	records := make([][]string, 0, len(rows)+1)
	records = append(records, slices.Clone(t.headers))
	return append(records, rows...)
}

// visibleRows applies the trailing-row rule: the open row is hidden while
// nothing has been typed into it and the cursor waits at its first column,
// and no more than one blank row is ever left at the end.
func (t *Table) visibleRows() [][]string {
	n := len(t.rows)
	if t.cursor.Row == n-1 && t.cursor.Col == 0 && isBlank(t.rows[n-1]) {
		n--
	}
	for n >= 2 && isBlank(t.rows[n-1]) && isBlank(t.rows[n-2]) {
		n--
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		out[i] = slices.Clone(t.rows[i])
	}
	return out
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// State is a deep, exported copy of everything a Table holds. It is used to
// compare tables and to persist drafts.
type State struct {
	Name     string     `json:"name"`
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"rows"`
	Cursor   Position   `json:"cursor"`
	Previous *Position  `json:"previous,omitempty"`
}

// State returns a deep copy of the table state.
func (t *Table) State() State {
	s := State{
		Name:    t.name,
		Headers: slices.Clone(t.headers),
		Rows:    make([][]string, len(t.rows)),
		Cursor:  t.cursor,
	}
	for i, row := range t.rows {
		s.Rows[i] = slices.Clone(row)
	}
	if t.previous != nil {
		prev := *t.previous
		s.Previous = &prev
	}
	return s
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	s := t.State()
	return &Table{
		name:     s.Name,
		headers:  s.Headers,
		rows:     s.Rows,
		cursor:   s.Cursor,
		previous: s.Previous,
		pruned:   t.pruned,
	}
}
